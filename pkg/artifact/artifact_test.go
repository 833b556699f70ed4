package artifact

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifactDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top10.csv"),
		[]byte("category,volume\nbilling,120\nnetwork,95\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "summaries"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summaries", "with_summary.csv.txt"),
		[]byte("precomputed summary text"), 0o644))
	return dir
}

func testCatalog() (catalog.Product, catalog.Product) {
	withSummary := catalog.Product{ID: "with_summary.csv", Description: "has precomputed summary", SourceFile: "top10.csv"}
	noSummary := catalog.Product{ID: "top10", Description: "no precomputed summary", SourceFile: "top10.csv"}
	return withSummary, noSummary
}

func TestLoadSummaryPrefersPrecomputedFile(t *testing.T) {
	dir := writeArtifactDir(t)
	s := New(dir, 50)

	withSummary, _ := testCatalog()
	summary, err := s.LoadSummary(withSummary)
	require.NoError(t, err)
	assert.Equal(t, "precomputed summary text", summary.Text)
}

func TestLoadSummaryGeneratesFromArtifactWhenAbsent(t *testing.T) {
	dir := writeArtifactDir(t)
	s := New(dir, 50)

	_, noSummary := testCatalog()
	summary, err := s.LoadSummary(noSummary)
	require.NoError(t, err)
	assert.Contains(t, summary.Text, "billing")
	assert.Contains(t, summary.Text, "network")
	assert.Equal(t, [2]int{2, 2}, summary.Shape)
}

func TestLoadSummaryTruncatesOverBudget(t *testing.T) {
	dir := t.TempDir()
	var rows string
	for i := 0; i < 10; i++ {
		rows += "row\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.csv"), []byte("col\n"+rows), 0o644))

	s := New(dir, 3)
	p := catalog.Product{ID: "big", Description: "big", SourceFile: "big.csv"}

	summary, err := s.LoadSummary(p)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.PreviewRows)
	assert.Contains(t, summary.Text, "(of 10 total)")
}

func TestLoadSummaryCalledTwiceReturnsByteIdentical(t *testing.T) {
	dir := writeArtifactDir(t)
	s := New(dir, 50)
	_, noSummary := testCatalog()

	first, err := s.LoadSummary(noSummary)
	require.NoError(t, err)
	second, err := s.LoadSummary(noSummary)
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
}

func TestLoadSummaryArtifactUnavailable(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 50)
	p := catalog.Product{ID: "missing", Description: "missing", SourceFile: "does_not_exist.csv"}

	_, err := s.LoadSummary(p)
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindArtifactUnavailable, appErr.Kind)
	assert.Contains(t, appErr.Message, "missing")
}

func TestConcurrentFirstReadersObserveSameSummary(t *testing.T) {
	dir := writeArtifactDir(t)
	s := New(dir, 50)
	_, noSummary := testCatalog()

	const n = 3
	results := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			summary, err := s.LoadSummary(noSummary)
			require.NoError(t, err)
			results[idx] = summary.Text
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, results[0], results[i])
	}
}

func TestLoadArtifactAppliesFilter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"),
		[]byte("region,count\nus,5\neu,7\nus,9\n"), 0o644))

	s := New(dir, 50)
	p := catalog.Product{ID: "data", SourceFile: "data.csv", Filter: "region=us"}

	art, err := s.LoadArtifact(p)
	require.NoError(t, err)
	assert.Len(t, art.Rows, 2)
}
