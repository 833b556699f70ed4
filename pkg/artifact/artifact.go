// Package artifact provides read-only access to pre-computed tabular
// artifacts and their textual summaries, keyed by product id. Both
// Artifacts and Summaries are immutable for the process lifetime once
// loaded: the Store caches each successful load and never refreshes it
// (concurrent first loads of the same product may each write the same
// content).
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/catalog"
)

// Artifact holds the concrete rows backing a Product.
type Artifact struct {
	ProductID string
	Columns   []string
	Rows      [][]string
}

// Summary is a truncated textual rendering of an Artifact for LLM input.
type Summary struct {
	ProductID          string
	GeneratedAt        time.Time
	DescriptionHeader  string
	PreviewRows        int
	Shape              [2]int // [rows, columns]
	Columns            []string
	Dtypes             []string
	Text               string // the fully rendered body sent to the Analyzer
}

// Store loads Artifacts and Summaries from a known directory layout:
// CSV artifact files under the configured artifact directory keyed by
// source_file, and precomputed text summaries under its "summaries/"
// sibling directory keyed by "<product_id>.txt".
type Store struct {
	dir         string
	previewRows int

	cache *writeOnceCache
}

// New builds a Store rooted at dir, previewing at most previewRows rows
// when a Summary must be generated on the fly.
func New(dir string, previewRows int) *Store {
	return &Store{
		dir:         dir,
		previewRows: previewRows,
		cache:       newWriteOnceCache(),
	}
}

// LoadSummary returns the Summary for productID, preferring a precomputed
// summary file and falling back to generating one from the Artifact. The
// result is cached for the process lifetime; concurrent first-readers may
// each pay the I/O cost once (the cache tolerates duplicate idempotent
// loads rather than serializing on a lock).
func (s *Store) LoadSummary(p catalog.Product) (Summary, error) {
	if v, ok := s.cache.getSummary(p.ID); ok {
		return v, nil
	}

	summary, err := s.loadPrecomputedSummary(p)
	if err != nil {
		if !os.IsNotExist(err) {
			return Summary{}, apperror.ArtifactUnavailable(p.ID, err)
		}
		art, aerr := s.LoadArtifact(p)
		if aerr != nil {
			return Summary{}, aerr
		}
		summary = summarize(art, p, s.previewRows)
	}

	s.cache.setSummary(p.ID, summary)
	return summary, nil
}

// LoadArtifact returns the full rows backing product p, applying its
// configured filter. Used by the Report Builder and by LoadSummary when no
// precomputed summary exists.
func (s *Store) LoadArtifact(p catalog.Product) (Artifact, error) {
	if v, ok := s.cache.getArtifact(p.ID); ok {
		return v, nil
	}

	path := filepath.Join(s.dir, p.SourceFile)
	art, err := readCSV(p.ID, path)
	if err != nil {
		return Artifact{}, apperror.ArtifactUnavailable(p.ID, err)
	}

	if p.Filter != "" {
		art = applyFilter(art, p.Filter)
	}

	s.cache.setArtifact(p.ID, art)
	return art, nil
}

func (s *Store) loadPrecomputedSummary(p catalog.Product) (Summary, error) {
	path := filepath.Join(s.dir, "summaries", p.ID+".txt")
	raw, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		ProductID:   p.ID,
		GeneratedAt: info.ModTime(),
		Text:        string(raw),
	}, nil
}

func summarize(a Artifact, p catalog.Product, previewRows int) Summary {
	total := len(a.Rows)
	preview := a.Rows
	truncated := false
	if previewRows > 0 && total > previewRows {
		preview = a.Rows[:previewRows]
		truncated = true
	}

	dtypes := inferDtypes(a.Columns, a.Rows)

	header := fmt.Sprintf("Summary for %s: %s", p.ID, p.Description)
	text := renderPreview(header, a.Columns, preview, total, truncated)

	return Summary{
		ProductID:         p.ID,
		GeneratedAt:       time.Now(),
		DescriptionHeader: header,
		PreviewRows:       len(preview),
		Shape:             [2]int{total, len(a.Columns)},
		Columns:           a.Columns,
		Dtypes:            dtypes,
		Text:              text,
	}
}

func renderPreview(header string, columns []string, rows [][]string, total int, truncated bool) string {
	out := header + "\n"
	for i, col := range columns {
		if i > 0 {
			out += ","
		}
		out += col
	}
	out += "\n"
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				out += ","
			}
			out += v
		}
		out += "\n"
	}
	if truncated {
		out += fmt.Sprintf("... (of %d total)\n", total)
	}
	return out
}

func inferDtypes(columns []string, rows [][]string) []string {
	dtypes := make([]string, len(columns))
	for i := range columns {
		dtypes[i] = "string"
		if isNumericColumn(rows, i) {
			dtypes[i] = "number"
		}
	}
	return dtypes
}

func isNumericColumn(rows [][]string, col int) bool {
	if len(rows) == 0 {
		return false
	}
	for _, row := range rows {
		if col >= len(row) {
			return false
		}
		if !looksNumeric(row[col]) {
			return false
		}
	}
	return true
}

func looksNumeric(v string) bool {
	if v == "" {
		return false
	}
	seenDot := false
	for i, r := range v {
		switch {
		case r == '-' && i == 0:
			continue
		case r == '.' && !seenDot:
			seenDot = true
		case r >= '0' && r <= '9':
			continue
		default:
			return false
		}
	}
	return true
}
