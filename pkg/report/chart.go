package report

import (
	"bytes"
	"fmt"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/opencity/insight/pkg/artifact"
)

// chartSize is the rendered dimension of every embedded chart image.
const chartSize = 4 * vg.Inch

// renderChart picks a chart kind from the artifact's shape (bar for a
// single numeric column, line for a time-ordered series, scatter
// otherwise) and renders it to PNG bytes.
func renderChart(title string, art artifact.Artifact) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title

	switch chartKindFor(art) {
	case kindBar:
		if err := addBarChart(p, art); err != nil {
			return nil, err
		}
	case kindLine:
		if err := addLineChart(p, art); err != nil {
			return nil, err
		}
	default:
		if err := addScatterChart(p, art); err != nil {
			return nil, err
		}
	}

	writer, err := p.WriterTo(chartSize, chartSize, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart for %s: %w", title, err)
	}

	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart for %s: %w", title, err)
	}
	return buf.Bytes(), nil
}

type chartKind int

const (
	kindScatter chartKind = iota
	kindBar
	kindLine
)

// chartKindFor chooses a chart shape from the artifact's column count and
// the first column's apparent type: a non-numeric first column paired with
// one numeric column plots as a line when the first column's values are
// in non-decreasing order (e.g. a date axis) and as a bar chart otherwise
// (e.g. a category axis); anything else falls back to a scatter of the
// first two numeric columns.
func chartKindFor(art artifact.Artifact) chartKind {
	if len(art.Columns) == 2 {
		if !columnIsNumeric(art, 0) && columnIsNumeric(art, 1) {
			if looksSequential(art, 0) {
				return kindLine
			}
			return kindBar
		}
	}
	return kindScatter
}

func addBarChart(p *plot.Plot, art artifact.Artifact) error {
	values := numericColumn(art, 1)
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	p.Add(bars)
	return nil
}

func addLineChart(p *plot.Plot, art artifact.Artifact) error {
	values := numericColumn(art, 1)
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	return nil
}

func addScatterChart(p *plot.Plot, art artifact.Artifact) error {
	xCol, yCol := firstTwoNumericColumns(art)
	xs := numericColumn(art, xCol)
	ys := numericColumn(art, yCol)

	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	p.Add(scatter)
	return nil
}

func columnIsNumeric(art artifact.Artifact, col int) bool {
	if col >= len(art.Columns) || len(art.Rows) == 0 {
		return false
	}
	for _, row := range art.Rows {
		if col >= len(row) {
			return false
		}
		if _, err := strconv.ParseFloat(row[col], 64); err != nil {
			return false
		}
	}
	return true
}

// looksSequential reports whether column col's values increase
// monotonically, the hallmark of a time or index axis.
func looksSequential(art artifact.Artifact, col int) bool {
	prev := ""
	for _, row := range art.Rows {
		if col >= len(row) {
			return false
		}
		if row[col] < prev {
			return false
		}
		prev = row[col]
	}
	return true
}

func numericColumn(art artifact.Artifact, col int) plotter.Values {
	values := make(plotter.Values, 0, len(art.Rows))
	for _, row := range art.Rows {
		if col >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

func firstTwoNumericColumns(art artifact.Artifact) (int, int) {
	numeric := make([]int, 0, len(art.Columns))
	for i := range art.Columns {
		if columnIsNumeric(art, i) {
			numeric = append(numeric, i)
		}
	}
	if len(numeric) >= 2 {
		return numeric[0], numeric[1]
	}
	if len(numeric) == 1 {
		return numeric[0], numeric[0]
	}
	return 0, 0
}
