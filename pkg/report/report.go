// Package report implements the Report Builder: it renders a structured
// analysis result, plus chart images derived from the underlying
// artifact CSVs, into a single PDF byte stream.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/opencity/insight/pkg/artifact"
	"github.com/opencity/insight/pkg/catalog"
)

// maxCharts bounds how many chart images are embedded per report, one
// per fetched product up to this limit.
const maxCharts = 3

// Request carries everything the Report Builder needs to render one PDF.
type Request struct {
	ParentID   string
	ChildID    string
	Discussion string
	Answer     string
	Rationale  []string
	KeyMetrics []string
	// ProductIDs names the products whose artifacts back the supporting
	// charts, in the order they should appear.
	ProductIDs []string
}

// Builder renders Requests into PDFs.
type Builder struct {
	store   *artifact.Store
	catalog *catalog.Catalog
}

// New builds a Builder backed by store and catalog for chart data.
func New(store *artifact.Store, catalog *catalog.Catalog) *Builder {
	return &Builder{store: store, catalog: catalog}
}

// Build renders req into a PDF document and returns its bytes.
func (b *Builder) Build(req Request) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	b.renderHeader(pdf, req)
	b.renderBody(pdf, req)
	if err := b.renderCharts(pdf, req); err != nil {
		return nil, fmt.Errorf("report builder: chart rendering failed: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report builder: pdf output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) renderHeader(pdf *gofpdf.Fpdf, req Request) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Cluster Report: %s / %s", req.ParentID, req.ChildID), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, time.Now().Format(time.RFC3339), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (b *Builder) renderBody(pdf *gofpdf.Fpdf, req Request) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Answer", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, req.Answer, "", "L", false)
	pdf.Ln(2)

	if req.Discussion != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Discussion", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, req.Discussion, "", "L", false)
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Rationale", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, bullet := range req.Rationale {
		pdf.MultiCell(0, 6, "- "+bullet, "", "L", false)
	}
	pdf.Ln(2)

	if len(req.KeyMetrics) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Key Metrics", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for _, m := range req.KeyMetrics {
			pdf.CellFormat(0, 6, m, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}
}

func (b *Builder) renderCharts(pdf *gofpdf.Fpdf, req Request) error {
	ids := req.ProductIDs
	if len(ids) > maxCharts {
		ids = ids[:maxCharts]
	}

	for _, id := range ids {
		product, err := b.catalog.Get(id)
		if err != nil {
			continue // skip products that no longer resolve rather than fail the whole report
		}
		art, err := b.store.LoadArtifact(product)
		if err != nil {
			continue
		}

		png, err := renderChart(product.ID, art)
		if err != nil {
			return err
		}

		pdf.AddPage()
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, product.ID, "", 1, "L", false, 0, "")

		name := product.ID + "-chart"
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		pdf.ImageOptions(name, 10, pdf.GetY()+4, 180, 0, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
	return nil
}
