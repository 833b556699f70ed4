package llmclient

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/opencity/insight/pkg/config"
)

// anthropicClient backs Client with the Anthropic Messages API. Unlike a
// conversational agent it never streams and never calls tools: every call
// is a single-turn completion.
type anthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func newAnthropicClient(cfg config.LLMProviderConfig) *anthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &anthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

func (a *anthropicClient) complete(ctx context.Context, system, prompt string) (string, error) {
	return withTransientRetry(ctx, func() (string, error) {
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: a.maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		}
		if system != "" {
			params.System = []anthropic.TextBlockParam{{Text: system}}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()

		message, err := a.client.Messages.New(attemptCtx, params)
		if err != nil {
			return "", fmt.Errorf("anthropic: %w", err)
		}

		var text string
		for _, block := range message.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}
		return text, nil
	})
}

func (a *anthropicClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return a.complete(ctx, "", prompt)
}

func (a *anthropicClient) GenerateJSON(ctx context.Context, prompt string, schema []byte, out any) error {
	return generateJSONWithRepair(ctx, a.complete, prompt, schema, out)
}

func (a *anthropicClient) GenerateSearchKeywords(ctx context.Context, question string) (string, error) {
	return a.complete(ctx, "", fmt.Sprintf(keywordPromptTemplate, question))
}
