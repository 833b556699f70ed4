package embedding

import (
	"context"
	"testing"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIndex() *Index {
	level1 := []Centroid{
		{ID: "billing", Vector: []float64{1, 0, 0}},
		{ID: "network", Vector: []float64{0, 1, 0}},
	}
	level2 := []Centroid{
		{ID: "billing-late-payment", ParentID: "billing", Vector: []float64{1, 0.1, 0}},
		{ID: "billing-refund", ParentID: "billing", Vector: []float64{0.9, 0, 0}},
		{ID: "network-outage", ParentID: "network", Vector: []float64{0, 0.95, 0}},
		{ID: "orphan-child", ParentID: "does-not-exist", Vector: []float64{5, 5, 5}},
	}
	return NewIndex(3, level1, level2)
}

func TestPredictNearestParentAndChild(t *testing.T) {
	idx := sampleIndex()
	pred, err := idx.Predict(context.Background(), []float64{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, "billing", pred.ParentID)
	assert.Equal(t, "billing-refund", pred.ChildID)
	assert.Greater(t, pred.Confidence, 0.0)
}

func TestPredictTieBrokenBySmallerID(t *testing.T) {
	idx := NewIndex(2, []Centroid{
		{ID: "b", Vector: []float64{1, 0}},
		{ID: "a", Vector: []float64{1, 0}},
	}, nil)

	pred, err := idx.Predict(context.Background(), []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, "a", pred.ParentID)
}

func TestPredictDimensionMismatch(t *testing.T) {
	idx := sampleIndex()
	_, err := idx.Predict(context.Background(), []float64{1, 0})
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindDimensionError, appErr.Kind)
}

func TestOrphanLevel2CentroidsFilteredAtLoad(t *testing.T) {
	idx := sampleIndex()
	pred, err := idx.Predict(context.Background(), []float64{5, 5, 5})
	require.NoError(t, err)
	assert.NotEqual(t, "orphan-child", pred.ChildID)
}

func TestPredictWithNoChildrenReturnsEmptyChildID(t *testing.T) {
	idx := NewIndex(2, []Centroid{{ID: "solo", Vector: []float64{0, 0}}}, nil)
	pred, err := idx.Predict(context.Background(), []float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "solo", pred.ParentID)
	assert.Empty(t, pred.ChildID)
}
