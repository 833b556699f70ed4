package planner

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/catalog"
	"github.com/opencity/insight/pkg/config"
)

// fakeLLM returns responses in sequence: responses[0] for the first
// GenerateJSON call, responses[1] for a repair re-prompt, and so on. A
// single-response fake (planJSON set) behaves identically on every call,
// matching a model that keeps repeating the same hallucination.
type fakeLLM struct {
	planJSON  string
	responses []string
	calls     int
	prompts   []string
	err       error
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string) (string, error) { return "", nil }

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, schema []byte, out any) error {
	if f.err != nil {
		return f.err
	}
	f.prompts = append(f.prompts, prompt)
	idx := f.calls
	f.calls++

	if len(f.responses) > 0 {
		if idx >= len(f.responses) {
			idx = len(f.responses) - 1
		}
		return json.Unmarshal([]byte(f.responses[idx]), out)
	}
	return json.Unmarshal([]byte(f.planJSON), out)
}

func (f *fakeLLM) GenerateSearchKeywords(ctx context.Context, question string) (string, error) {
	return "", nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	cat, err := catalog.New([]config.ProductDefinition{
		{ID: "top10_volume_30d", Description: "top 10 products by volume"},
		{ID: "response_times", Description: "response time percentiles"},
	})
	require.NoError(t, err)
	return cat
}

func TestPlanner_DropsUnknownProductIDs(t *testing.T) {
	llm := &fakeLLM{planJSON: `{"entries": [
		{"product_id": "top10_volume_30d", "reason": "matches volume question"},
		{"product_id": "not_a_real_product", "reason": "hallucinated"}
	]}`}
	p := New(llm, testCatalog(t), "sample")

	plan, err := p.Plan(context.Background(), "what are the top products")
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "top10_volume_30d", plan.Entries[0].ProductID)
}

func TestPlanner_TruncatesToThreeEntries(t *testing.T) {
	llm := &fakeLLM{planJSON: `{"entries": [
		{"product_id": "top10_volume_30d", "reason": "a"},
		{"product_id": "response_times", "reason": "b"},
		{"product_id": "top10_volume_30d", "reason": "c"},
		{"product_id": "response_times", "reason": "d"}
	]}`}
	p := New(llm, testCatalog(t), "sample")

	plan, err := p.Plan(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, plan.Entries, 3)
}

func TestPlanner_EmptyAfterFilteringIsPlanningFailed(t *testing.T) {
	llm := &fakeLLM{planJSON: `{"entries": [{"product_id": "nope", "reason": "x"}]}`}
	p := New(llm, testCatalog(t), "sample")

	_, err := p.Plan(context.Background(), "q")
	require.Error(t, err)
	var aerr *apperror.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, apperror.KindPlanningFailed, aerr.Kind)
	assert.Equal(t, 2, llm.calls, "expected one repair re-prompt after the initial failure")
}

func TestPlanner_RepairRePromptRecoversFromUnknownID(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"entries": [{"product_id": "not_a_real_product", "reason": "hallucinated"}]}`,
		`{"entries": [{"product_id": "top10_volume_30d", "reason": "corrected"}]}`,
	}}
	p := New(llm, testCatalog(t), "sample")

	plan, err := p.Plan(context.Background(), "what are the top products")
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "top10_volume_30d", plan.Entries[0].ProductID)
	assert.Equal(t, 2, llm.calls)
	assert.Contains(t, llm.prompts[1], "not_a_real_product")
}

func TestPlanner_NoRepairWhenSomeEntriesAlreadyValid(t *testing.T) {
	llm := &fakeLLM{planJSON: `{"entries": [
		{"product_id": "top10_volume_30d", "reason": "matches volume question"},
		{"product_id": "not_a_real_product", "reason": "hallucinated"}
	]}`}
	p := New(llm, testCatalog(t), "sample")

	plan, err := p.Plan(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, 1, llm.calls, "a partially valid plan should not trigger a repair re-prompt")
}
