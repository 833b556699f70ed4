// Package cluster implements the Cluster Predictor: it distills a
// question into search keywords via the LLM Client, embeds them, and
// looks up the nearest two-level cluster in the Embedding Index.
package cluster

import (
	"context"
	"log/slog"

	"github.com/opencity/insight/pkg/embedding"
	"github.com/opencity/insight/pkg/llmclient"
)

// Predictor implements the question -> (parent, child, confidence) pipeline.
type Predictor struct {
	llm      llmclient.Client
	embedder embedding.Embedder
	index    *embedding.Index
}

// New builds a Predictor. It does not compare the embedder's and the
// index's dimensions: a mismatch surfaces as a DimensionError the first
// time Predict runs.
func New(llm llmclient.Client, embedder embedding.Embedder, index *embedding.Index) *Predictor {
	return &Predictor{llm: llm, embedder: embedder, index: index}
}

// Predict runs the full pipeline for question. If keyword extraction via
// the LLM Client fails, it falls back to embedding the raw question
// rather than failing the request outright.
func (p *Predictor) Predict(ctx context.Context, question string) (embedding.Prediction, error) {
	text := question
	if keywords, err := p.llm.GenerateSearchKeywords(ctx, question); err != nil {
		slog.Warn("cluster predictor: keyword extraction failed, falling back to raw question", "error", err)
	} else if keywords != "" {
		text = keywords
	}

	vec, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return embedding.Prediction{}, err
	}

	return p.index.Predict(ctx, vec)
}
