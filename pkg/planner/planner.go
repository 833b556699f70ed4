// Package planner implements the Planner: it asks the LLM Client which
// catalog products are relevant to a question, then drops anything the
// model hallucinated.
package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/catalog"
	"github.com/opencity/insight/pkg/llmclient"
)

// maxPlanEntries bounds how many products a single Plan may reference;
// anything beyond this is truncated in submission order.
const maxPlanEntries = 3

// Entry is one product the Planner chose, with its one-sentence reason.
type Entry struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// Plan is the Planner's output: an ordered, non-empty list of Entry.
type Plan struct {
	Entries []Entry `json:"entries"`
}

const planSchema = `{
  "type": "object",
  "properties": {
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "product_id": {"type": "string"},
          "reason": {"type": "string"}
        },
        "required": ["product_id", "reason"]
      }
    }
  },
  "required": ["entries"]
}`

const promptTemplate = `You are planning which data products to load to answer an analytics question. You must select only product ids from the catalog below; never invent an id. Give a one-sentence reason for each choice.

Catalog:
%s

Sample data context (for grounding, not for selection):
%s

Question: %s

Respond with JSON: {"entries": [{"product_id": "...", "reason": "..."}]}`

// repairPromptTemplate re-prompts once after every entry's product_id
// turned out unknown, naming the offending ids explicitly so the model
// can correct itself instead of repeating the same hallucination.
const repairPromptTemplate = `Your previous answer referenced product id(s) that do not exist in the catalog: %s. Choose only from the catalog below and respond again with the same JSON shape.

Catalog:
%s

Question: %s

Respond with JSON: {"entries": [{"product_id": "...", "reason": "..."}]}`

// Planner selects which catalog products are relevant to a question.
type Planner struct {
	llm     llmclient.Client
	catalog *catalog.Catalog
	// sampleContext is a short preview of a canonical artifact, included
	// in every prompt to ground the model in the data's actual shape.
	sampleContext string
}

// New builds a Planner. sampleContext is a fixed preview blob shared by
// every invocation (not question-specific).
func New(llm llmclient.Client, cat *catalog.Catalog, sampleContext string) *Planner {
	return &Planner{llm: llm, catalog: cat, sampleContext: sampleContext}
}

// Plan asks the LLM Client to choose relevant products for question,
// drops any entry whose product_id is not registered in the catalog, and
// truncates the survivors to maxPlanEntries. If every entry is dropped,
// the Planner is re-prompted once, naming the offending ids explicitly,
// before falling through to PlanningFailed: there is no fallback to a
// generic product.
func (p *Planner) Plan(ctx context.Context, question string) (Plan, error) {
	prompt := fmt.Sprintf(promptTemplate, p.catalog.DescribeForPlanner(), p.sampleContext, question)

	var raw Plan
	if err := p.llm.GenerateJSON(ctx, prompt, []byte(planSchema), &raw); err != nil {
		return Plan{}, err
	}

	valid, unknown := p.filterEntries(raw.Entries)

	if len(valid) == 0 && len(unknown) > 0 {
		repairPrompt := fmt.Sprintf(repairPromptTemplate, strings.Join(unknown, ", "), p.catalog.DescribeForPlanner(), question)

		var repaired Plan
		if err := p.llm.GenerateJSON(ctx, repairPrompt, []byte(planSchema), &repaired); err != nil {
			return Plan{}, err
		}
		valid, _ = p.filterEntries(repaired.Entries)
	}

	if len(valid) == 0 {
		return Plan{}, apperror.PlanningFailed("no planned product ids resolved in the catalog")
	}

	if len(valid) > maxPlanEntries {
		valid = valid[:maxPlanEntries]
	}

	return Plan{Entries: valid}, nil
}

// filterEntries splits entries into those whose product_id resolves in
// the catalog and the ids of those that don't.
func (p *Planner) filterEntries(entries []Entry) (valid []Entry, unknown []string) {
	valid = make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, err := p.catalog.Get(e.ProductID); err != nil {
			unknown = append(unknown, e.ProductID)
			continue
		}
		valid = append(valid, e)
	}
	return valid, unknown
}
