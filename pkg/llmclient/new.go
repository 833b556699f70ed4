package llmclient

import (
	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/config"
)

// New builds the Client backend selected by cfg.Backend.
func New(cfg config.LLMProviderConfig) (Client, error) {
	switch cfg.Backend {
	case config.LLMBackendAnthropic:
		return newAnthropicClient(cfg), nil
	case config.LLMBackendOpenAI:
		return newOpenAIClient(cfg), nil
	default:
		return nil, apperror.New(apperror.KindConfigError, "unknown LLM backend: "+string(cfg.Backend))
	}
}
