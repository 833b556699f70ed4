package llmclient

import (
	"testing"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DispatchesOnBackend(t *testing.T) {
	anthropicC, err := New(config.LLMProviderConfig{Backend: config.LLMBackendAnthropic, APIKey: "sk-test", Model: "claude-3-5-sonnet"})
	require.NoError(t, err)
	assert.IsType(t, &anthropicClient{}, anthropicC)

	openaiC, err := New(config.LLMProviderConfig{Backend: config.LLMBackendOpenAI, APIKey: "sk-test", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.IsType(t, &openaiClient{}, openaiC)
}

func TestNew_UnknownBackendIsConfigError(t *testing.T) {
	_, err := New(config.LLMProviderConfig{Backend: "mystery-vendor"})
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindConfigError, appErr.Kind)
}

func TestGenerateSearchKeywordsPromptTemplate(t *testing.T) {
	assert.Contains(t, keywordPromptTemplate, "%s")
	assert.Contains(t, keywordPromptTemplate, "comma-separated")
}
