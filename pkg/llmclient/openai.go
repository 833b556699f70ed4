package llmclient

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/opencity/insight/pkg/config"
)

// openaiClient backs Client with the OpenAI Chat Completions API, for
// deployments that route through an OpenAI-compatible gateway instead of
// Anthropic.
type openaiClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func newOpenAIClient(cfg config.LLMProviderConfig) *openaiClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &openaiClient{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

func (o *openaiClient) complete(ctx context.Context, system, prompt string) (string, error) {
	return withTransientRetry(ctx, func() (string, error) {
		messages := make([]openai.ChatCompletionMessage, 0, 2)
		if system != "" {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			})
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		})

		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()

		resp, err := o.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model:     o.model,
			Messages:  messages,
			MaxTokens: o.maxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("openai: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("openai: empty choices in response")
		}
		return resp.Choices[0].Message.Content, nil
	})
}

func (o *openaiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return o.complete(ctx, "", prompt)
}

func (o *openaiClient) GenerateJSON(ctx context.Context, prompt string, schema []byte, out any) error {
	return generateJSONWithRepair(ctx, o.complete, prompt, schema, out)
}

func (o *openaiClient) GenerateSearchKeywords(ctx context.Context, question string) (string, error) {
	return o.complete(ctx, "", fmt.Sprintf(keywordPromptTemplate, question))
}
