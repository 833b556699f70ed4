// Package analyzer implements the Analyzer: it turns a question plus the
// Summaries of every product the Planner selected into a structured
// AnalysisResult, grounded strictly in the provided data.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/artifact"
	"github.com/opencity/insight/pkg/llmclient"
)

// AccessEntry records one product actually fetched during a session's
// load loop: which product and what shape its artifact had.
// UsedPrecomputed reports whether the Analyzer saw a precomputed summary
// rather than an on-the-fly one; the Session Orchestrator does not set
// it, so it is false in every entry it builds, and Rows/Columns are zero
// when the summary came from a precomputed file.
type AccessEntry struct {
	ProductID       string
	Rows            int
	Columns         int
	UsedPrecomputed bool
}

// AccessLog is the ordered record of products fetched for one session,
// passed to the Analyzer alongside the question so its rationale can be
// checked against what was actually loaded.
type AccessLog []AccessEntry

// Result is the Analyzer's structured output.
type Result struct {
	Answer     string   `json:"answer"`
	Rationale  []string `json:"rationale"`
	KeyMetrics []string `json:"key_metrics"`
}

const resultSchema = `{
  "type": "object",
  "properties": {
    "answer": {"type": "string"},
    "rationale": {"type": "array", "items": {"type": "string"}},
    "key_metrics": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["answer", "rationale", "key_metrics"]
}`

const promptTemplate = `You are analyzing data to answer a question. Ground every claim strictly in the summaries below; never invent a product or a number that is not present in them.

Question: %s

Products fetched: %s

%s

Respond with JSON exactly: {"answer": "one concise sentence", "rationale": ["3 to 7 bullets citing numbers from the summaries"], "key_metrics": ["short strings"]}`

// Analyzer produces a structured AnalysisResult from a question and the
// Summaries of the products the Planner selected.
type Analyzer struct {
	llm llmclient.Client
	// inputBudget bounds the combined character count of the rendered
	// Summaries sent to the LLM. Zero or negative disables the bound.
	inputBudget int
}

// New builds an Analyzer. inputBudget is the LLM_INPUT_BUDGET_CHARS
// configuration value: the concatenated Summaries are truncated to fit
// it before being sent to the model.
func New(llm llmclient.Client, inputBudget int) *Analyzer {
	return &Analyzer{llm: llm, inputBudget: inputBudget}
}

// Analyze runs the Analyzer over question, log, and summaries. The
// Summaries are concatenated with clear section markers so the model can
// attribute each claim to its source product, then truncated to the
// configured input budget.
func (a *Analyzer) Analyze(ctx context.Context, question string, log AccessLog, summaries []artifact.Summary) (Result, error) {
	prompt := fmt.Sprintf(promptTemplate, question, productList(log), renderSections(summaries, a.inputBudget))

	var result Result
	if err := a.llm.GenerateJSON(ctx, prompt, []byte(resultSchema), &result); err != nil {
		return Result{}, err
	}

	if strings.TrimSpace(result.Answer) == "" {
		return Result{}, apperror.New(apperror.KindLLMParseError, "analyzer returned an empty answer")
	}
	if len(result.Rationale) == 0 {
		return Result{}, apperror.New(apperror.KindLLMParseError, "analyzer returned no rationale bullets")
	}

	return result, nil
}

func productList(log AccessLog) string {
	ids := make([]string, 0, len(log))
	for _, e := range log {
		ids = append(ids, e.ProductID)
	}
	return strings.Join(ids, ", ")
}

// renderSections concatenates every Summary's text under a section
// marker, then truncates the result to budget characters if budget is
// positive and the concatenation exceeds it; the truncation marker counts
// toward the budget (and is dropped if the budget is too small to hold
// it). Truncation is applied to
// the whole rendering rather than per-summary: earlier products in Plan
// order keep their full text before later ones are cut.
func renderSections(summaries []artifact.Summary, budget int) string {
	var b strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&b, "=== %s ===\n%s\n", s.ProductID, s.Text)
	}
	out := b.String()
	if budget > 0 && len(out) > budget {
		marker := fmt.Sprintf("\n... (truncated to fit %d-character LLM input budget)\n", budget)
		if keep := budget - len(marker); keep >= 0 {
			out = out[:keep] + marker
		} else {
			out = out[:budget]
		}
	}
	return out
}
