package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalogFile(t *testing.T) {
	path := writeCatalogFile(t, `
products:
  - id: top10_volume_30d
    description: Top 10 service categories by volume over 30 days
    use_cases:
      - trend analysis
    key_metrics:
      - volume
    source_file: top10_volume_30d.csv
    route_hint: /dashboard/analytics/frequency
  - id: response_times
    description: Response time percentiles
    source_file: response_times.csv
`)

	defs, err := LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "top10_volume_30d", defs[0].ID)
	assert.Equal(t, "/dashboard/analytics/frequency", defs[0].RouteHint)
	assert.Equal(t, "response_times.csv", defs[1].SourceFile)
}

func TestLoadCatalogFileNotFound(t *testing.T) {
	_, err := LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrCatalogFileNotFound)
}

func TestLoadCatalogFileDuplicateID(t *testing.T) {
	path := writeCatalogFile(t, `
products:
  - id: dup
    description: first
    source_file: a.csv
  - id: dup
    description: second
    source_file: b.csv
`)

	_, err := LoadCatalogFile(path)
	assert.ErrorIs(t, err, ErrDuplicateProduct)
}

func TestLoadCatalogFileMissingRequiredFields(t *testing.T) {
	path := writeCatalogFile(t, `
products:
  - description: no id or source file
`)

	_, err := LoadCatalogFile(path)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestLoadCatalogFileExpandsEnv(t *testing.T) {
	t.Setenv("ARTIFACT_PREFIX", "prod")
	path := writeCatalogFile(t, `
products:
  - id: top10
    description: top10
    source_file: ${ARTIFACT_PREFIX}_top10.csv
`)

	defs, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, "prod_top10.csv", defs[0].SourceFile)
}
