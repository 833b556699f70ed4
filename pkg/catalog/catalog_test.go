package catalog

import (
	"testing"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefs() []config.ProductDefinition {
	return []config.ProductDefinition{
		{
			ID:          "top10_volume_30d",
			Description: "Top 10 service categories by volume over 30 days",
			UseCases:    []string{"trend analysis"},
			KeyMetrics:  []string{"volume"},
			SourceFile:  "top10_volume_30d.csv",
			RouteHint:   "/dashboard/analytics/frequency",
		},
		{
			ID:          "response_times",
			Description: "Response time percentiles",
			SourceFile:  "response_times.csv",
		},
	}
}

func TestCatalogGet(t *testing.T) {
	c, err := New(sampleDefs())
	require.NoError(t, err)

	p, err := c.Get("top10_volume_30d")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/analytics/frequency", p.RouteHint)
}

func TestCatalogGetUnknownProduct(t *testing.T) {
	c, err := New(sampleDefs())
	require.NoError(t, err)

	_, err = c.Get("does_not_exist")
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindUnknownProduct, appErr.Kind)
}

func TestCatalogGetIsCaseSensitive(t *testing.T) {
	c, err := New(sampleDefs())
	require.NoError(t, err)

	_, err = c.Get("TOP10_VOLUME_30D")
	assert.Error(t, err)
}

func TestCatalogDuplicateIDIsConfigError(t *testing.T) {
	defs := append(sampleDefs(), config.ProductDefinition{ID: "top10_volume_30d", SourceFile: "dup.csv"})

	_, err := New(defs)
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindConfigError, appErr.Kind)
}

func TestDescribeForPlannerIsDeterministic(t *testing.T) {
	c, err := New(sampleDefs())
	require.NoError(t, err)

	first := c.DescribeForPlanner()
	second := c.DescribeForPlanner()
	assert.Equal(t, first, second)
	assert.Contains(t, first, "top10_volume_30d")
	assert.Contains(t, first, "response_times")
}
