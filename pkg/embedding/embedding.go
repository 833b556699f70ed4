// Package embedding provides nearest-centroid lookup over a two-level
// hierarchy of precomputed cluster centroids in a fixed-dimensional vector
// space. Level-1 centroids are top-level clusters; level-2 centroids are
// children of exactly one level-1 parent.
package embedding

import (
	"context"
	"sort"

	"github.com/opencity/insight/pkg/apperror"
	"gonum.org/v1/gonum/floats"
)

// Centroid is one precomputed cluster center.
type Centroid struct {
	ID       string
	ParentID string // empty for level-1 centroids
	Vector   []float64
}

// Prediction is the result of a nearest-centroid lookup.
type Prediction struct {
	ParentID   string
	ChildID    string
	Confidence float64
}

// Index holds the loaded centroid hierarchy. It is built once at startup
// and memoized: queries never mutate it.
type Index struct {
	dim      int
	level1   []Centroid
	level2   []Centroid
	children map[string][]Centroid // parent id -> its level-2 centroids
}

// NewIndex builds an Index from level-1 and level-2 centroids. Level-2
// centroids whose parent does not appear in level1 are orphans and are
// filtered at load time.
func NewIndex(dim int, level1, level2 []Centroid) *Index {
	parents := make(map[string]struct{}, len(level1))
	for _, c := range level1 {
		parents[c.ID] = struct{}{}
	}

	children := make(map[string][]Centroid)
	for _, c := range level2 {
		if c.ParentID == "" {
			continue
		}
		if _, ok := parents[c.ParentID]; !ok {
			continue // orphan, filtered
		}
		children[c.ParentID] = append(children[c.ParentID], c)
	}

	return &Index{
		dim:      dim,
		level1:   level1,
		level2:   level2,
		children: children,
	}
}

// Dim returns the fixed centroid dimensionality the Index was built with.
func (idx *Index) Dim() int { return idx.dim }

// Predict returns the nearest level-1 centroid and, among its children,
// the nearest level-2 centroid. Ties are broken by smaller id for stable,
// testable output.
func (idx *Index) Predict(_ context.Context, embedding []float64) (Prediction, error) {
	if len(embedding) != idx.dim {
		return Prediction{}, apperror.DimensionError(len(embedding), idx.dim)
	}

	parent, parentDist := nearest(embedding, idx.level1)
	if parent == nil {
		return Prediction{}, apperror.New(apperror.KindDimensionError, "embedding index has no level-1 centroids")
	}

	var child *Centroid
	var childDist float64
	if kids := idx.children[parent.ID]; len(kids) > 0 {
		child, childDist = nearest(embedding, kids)
	}

	confidence := confidenceFromDistance(parentDist)
	if child != nil {
		confidence = confidenceFromDistance(childDist)
	}

	pred := Prediction{ParentID: parent.ID, Confidence: confidence}
	if child != nil {
		pred.ChildID = child.ID
	}
	return pred, nil
}

// nearest returns the centroid with the smallest Euclidean distance to
// query, breaking ties by smaller id.
func nearest(query []float64, centroids []Centroid) (*Centroid, float64) {
	if len(centroids) == 0 {
		return nil, 0
	}

	sorted := make([]Centroid, len(centroids))
	copy(sorted, centroids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	best := sorted[0]
	bestDist := euclidean(query, best.Vector)
	for _, c := range sorted[1:] {
		d := euclidean(query, c.Vector)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return &best, bestDist
}

func euclidean(a, b []float64) float64 {
	diff := make([]float64, len(a))
	copy(diff, a)
	floats.Sub(diff, b)
	return floats.Norm(diff, 2)
}

// confidenceFromDistance maps a Euclidean distance to a (0,1] confidence
// score: closer centroids yield higher confidence. Calibrated so a
// zero-distance exact match reports 1.0 and confidence decays smoothly.
func confidenceFromDistance(dist float64) float64 {
	return 1.0 / (1.0 + dist)
}
