package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencity/insight/pkg/embedding"
)

type fakeLLM struct {
	keywords    string
	keywordsErr error
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "a short discussion", nil
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, schema []byte, out any) error {
	return nil
}

func (f *fakeLLM) GenerateSearchKeywords(ctx context.Context, question string) (string, error) {
	return f.keywords, f.keywordsErr
}

type fakeEmbedder struct {
	vectors map[string][]float64
	dim     int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return nil, errors.New("no fixture for text: " + text)
}

func (f *fakeEmbedder) Dim() int { return f.dim }

func newTestIndex() *embedding.Index {
	return embedding.NewIndex(2, []embedding.Centroid{
		{ID: "billing", Vector: []float64{0, 0}},
		{ID: "access", Vector: []float64{10, 10}},
	}, []embedding.Centroid{
		{ID: "billing-late-payment", ParentID: "billing", Vector: []float64{0, 1}},
	})
}

func TestPredictor_UsesExtractedKeywords(t *testing.T) {
	llm := &fakeLLM{keywords: "billing late payment"}
	embedder := &fakeEmbedder{dim: 2, vectors: map[string][]float64{
		"billing late payment": {0, 0.5},
	}}
	p := New(llm, embedder, newTestIndex())

	pred, err := p.Predict(context.Background(), "why is my invoice late")
	require.NoError(t, err)
	assert.Equal(t, "billing", pred.ParentID)
	assert.Equal(t, "billing-late-payment", pred.ChildID)
}

func TestPredictor_FallsBackToRawQuestionOnLLMFailure(t *testing.T) {
	llm := &fakeLLM{keywordsErr: errors.New("rate limited")}
	embedder := &fakeEmbedder{dim: 2, vectors: map[string][]float64{
		"why is my invoice late": {0, 0.2},
	}}
	p := New(llm, embedder, newTestIndex())

	pred, err := p.Predict(context.Background(), "why is my invoice late")
	require.NoError(t, err)
	assert.Equal(t, "billing", pred.ParentID)
}

func TestPredictor_PropagatesEmbedderError(t *testing.T) {
	llm := &fakeLLM{keywords: "x"}
	embedder := &fakeEmbedder{dim: 2}
	p := New(llm, embedder, newTestIndex())

	_, err := p.Predict(context.Background(), "anything")
	assert.Error(t, err)
}
