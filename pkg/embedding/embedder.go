package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/opencity/insight/pkg/apperror"
)

// Embedder converts text to a fixed-dimension vector for nearest-centroid
// lookup. Separate from the llmclient.Client used for generation: the
// embedding model and dimension must match what the EI was built with, a
// config concern orthogonal to which vendor backs text generation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dim() int
}

// OpenAIEmbedder backs Embedder with OpenAI's embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAIEmbedder builds an OpenAIEmbedder. dim must match the Index's
// centroid dimensionality. The model's output length is not checked
// against dim here; Embed returns a DimensionError for each response
// whose vector length differs from dim.
func NewOpenAIEmbedder(apiKey, baseURL, model string, dim int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, apperror.New(apperror.KindConfigError, "embedding API key is required")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dim:    dim,
	}, nil
}

func (e *OpenAIEmbedder) Dim() int { return e.dim }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding request returned no data")
	}

	vec := resp.Data[0].Embedding
	if len(vec) != e.dim {
		return nil, apperror.DimensionError(len(vec), e.dim)
	}

	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out, nil
}
