// Package config loads process-startup configuration: environment-derived
// credentials and tunables, plus the static product catalog definition.
// Config.Initialize/Stats follow the same shape as the rest of this
// codebase's subsystem constructors, adapted to this domain's much
// smaller configuration surface (no agent/chain/MCP registries — just
// products and providers).
package config

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LLMBackend identifies which vendor SDK backs the LLM Client for a given
// provider configuration: the client is polymorphic over the vendor, and
// swapping backends is a config change, not a code change.
type LLMBackend string

const (
	LLMBackendAnthropic LLMBackend = "anthropic"
	LLMBackendOpenAI    LLMBackend = "openai"
)

// LLMProviderConfig configures one LLM vendor backend.
type LLMProviderConfig struct {
	Backend   LLMBackend
	Model     string
	APIKey    string
	BaseURL   string // optional override, e.g. for a compatible gateway
	MaxTokens int
}

// VoiceProviderConfig configures the Voice Client. Empty APIKey means
// voice is disabled: voice HTTP endpoints respond 503.
type VoiceProviderConfig struct {
	APIKey      string
	STTEndpoint string
	TTSEndpoint string
}

// EmbeddingProviderConfig configures the text embedder backing the
// Cluster Predictor. Falls back to the LLM provider's API key when the
// LLM backend is OpenAI, since both calls hit the same vendor account.
type EmbeddingProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// RetentionConfig controls how long the session audit trail is kept.
type RetentionConfig struct {
	SessionEventTTL time.Duration
	CleanupInterval time.Duration
}

// Config is the umbrella object returned by Initialize and threaded through
// the rest of the process.
type Config struct {
	configDir string

	ArtifactDir    string
	FrontendOrigin string

	LLM       LLMProviderConfig
	Voice     VoiceProviderConfig
	Embedding EmbeddingProviderConfig

	Catalog []ProductDefinition

	// SummaryPreviewRows bounds how many rows a generated Summary previews
	// before truncating with an "(of N total)" marker.
	SummaryPreviewRows int

	// LLMInputBudget bounds the combined character count of Summaries sent
	// to the Analyzer.
	LLMInputBudget int

	// EmbeddingDim is the fixed centroid dimensionality the Embedding
	// Index was built with.
	EmbeddingDim int

	Retention RetentionConfig

	HTTPPort string
	LogLevel string
}

// Stats summarizes the loaded configuration for the health endpoint.
type Stats struct {
	Products     int
	LLMBackend   LLMBackend
	VoiceEnabled bool
	EmbeddingDim int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() Stats {
	return Stats{
		Products:     len(c.Catalog),
		LLMBackend:   c.LLM.Backend,
		VoiceEnabled: c.Voice.APIKey != "",
		EmbeddingDim: c.EmbeddingDim,
	}
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string { return c.configDir }

// Initialize loads configuration from environment variables (optionally
// seeded by a .env file in configDir, done by the caller via godotenv) and
// the catalog definition file under configDir. A missing LLM_API_KEY or an
// invalid catalog is a fatal ConfigError-class condition: the caller should
// exit(1).
func Initialize(_ context.Context, configDir string) (*Config, error) {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return nil, &LoadError{File: "LLM_API_KEY", Err: ErrMissingRequiredEnv}
	}

	backend := LLMBackend(getEnvOrDefault("LLM_BACKEND", string(LLMBackendAnthropic)))
	model := getEnvOrDefault("LLM_MODEL", defaultModelFor(backend))
	maxTokens, err := strconv.Atoi(getEnvOrDefault("LLM_MAX_TOKENS", "4096"))
	if err != nil {
		return nil, &LoadError{File: "LLM_MAX_TOKENS", Err: err}
	}

	artifactDir := getEnvOrDefault("ARTIFACT_DIR", "./data/artifacts")

	catalogPath := filepath.Join(configDir, "catalog.yaml")
	entries, err := LoadCatalogFile(catalogPath)
	if err != nil {
		return nil, &LoadError{File: catalogPath, Err: err}
	}

	embeddingDim, err := strconv.Atoi(getEnvOrDefault("EMBEDDING_DIM", "384"))
	if err != nil {
		return nil, &LoadError{File: "EMBEDDING_DIM", Err: err}
	}

	previewRows, err := strconv.Atoi(getEnvOrDefault("SUMMARY_PREVIEW_ROWS", "50"))
	if err != nil {
		return nil, &LoadError{File: "SUMMARY_PREVIEW_ROWS", Err: err}
	}

	llmBudget, err := strconv.Atoi(getEnvOrDefault("LLM_INPUT_BUDGET_CHARS", "24000"))
	if err != nil {
		return nil, &LoadError{File: "LLM_INPUT_BUDGET_CHARS", Err: err}
	}

	embeddingAPIKey := os.Getenv("EMBEDDING_API_KEY")
	if embeddingAPIKey == "" && backend == LLMBackendOpenAI {
		embeddingAPIKey = apiKey
	}

	eventTTL, err := time.ParseDuration(getEnvOrDefault("SESSION_EVENT_TTL", "168h"))
	if err != nil {
		return nil, &LoadError{File: "SESSION_EVENT_TTL", Err: err}
	}
	cleanupInterval, err := time.ParseDuration(getEnvOrDefault("CLEANUP_INTERVAL", "1h"))
	if err != nil {
		return nil, &LoadError{File: "CLEANUP_INTERVAL", Err: err}
	}

	return &Config{
		configDir:      configDir,
		ArtifactDir:    artifactDir,
		FrontendOrigin: getEnvOrDefault("FRONTEND_ORIGIN", "*"),
		LLM: LLMProviderConfig{
			Backend:   backend,
			Model:     model,
			APIKey:    apiKey,
			BaseURL:   os.Getenv("LLM_BASE_URL"),
			MaxTokens: maxTokens,
		},
		Voice: VoiceProviderConfig{
			APIKey:      os.Getenv("VOICE_API_KEY"),
			STTEndpoint: getEnvOrDefault("VOICE_STT_ENDPOINT", ""),
			TTSEndpoint: getEnvOrDefault("VOICE_TTS_ENDPOINT", ""),
		},
		Embedding: EmbeddingProviderConfig{
			APIKey:  embeddingAPIKey,
			BaseURL: os.Getenv("EMBEDDING_BASE_URL"),
			Model:   getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Catalog:            entries,
		SummaryPreviewRows: previewRows,
		LLMInputBudget:     llmBudget,
		EmbeddingDim:       embeddingDim,
		Retention: RetentionConfig{
			SessionEventTTL: eventTTL,
			CleanupInterval: cleanupInterval,
		},
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

func defaultModelFor(backend LLMBackend) string {
	switch backend {
	case LLMBackendOpenAI:
		return "gpt-4o-mini"
	default:
		return "claude-3-5-haiku-20241022"
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
