// Package llmclient provides a model-agnostic interface for text and
// structured generation, backed by either Anthropic or OpenAI depending on
// the configured backend. Callers never see the vendor SDK directly.
package llmclient

import (
	"context"
)

// Client is the uniform interface every component (Planner, Analyzer,
// Cluster Predictor, chat mode) calls through. Implementations must be
// safe for concurrent use: the underlying vendor client manages its own
// connection pool.
type Client interface {
	// GenerateText produces a free-form text completion for prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateJSON produces a response that validates against schema (a
	// JSON Schema document) and unmarshals it into out. On a first parse
	// or validation failure it retries once with a repair hint; a second
	// failure yields apperror.LLMParseError.
	GenerateJSON(ctx context.Context, prompt string, schema []byte, out any) error

	// GenerateSearchKeywords distills question into a compact
	// comma-separated keyword string for the Cluster Predictor.
	GenerateSearchKeywords(ctx context.Context, question string) (string, error)
}

// repairHint is appended to the prompt on the single retry attempt after a
// malformed-JSON response.
const repairHint = "\n\nYour previous response was not valid JSON matching the required shape. Return valid JSON only, with no surrounding prose."

const keywordPromptTemplate = `Extract 3-8 short search keywords (comma-separated, no punctuation) that capture the analytic intent of this question. Respond with only the comma-separated keywords, nothing else.

Question: %s`
