package llmclient

import (
	"context"
	"errors"
	"testing"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `{
	"type": "object",
	"properties": {"name": {"type": "string"}},
	"required": ["name"]
}`

type jsonRecorder struct {
	responses []string
	calls     int
	prompts   []string
}

func (r *jsonRecorder) complete(_ context.Context, _ string, prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	idx := r.calls
	r.calls++
	if idx >= len(r.responses) {
		return "", errors.New("no more canned responses")
	}
	return r.responses[idx], nil
}

func TestGenerateJSONWithRepair_SucceedsFirstTry(t *testing.T) {
	rec := &jsonRecorder{responses: []string{`{"name": "top10_volume_30d"}`}}
	var out struct {
		Name string `json:"name"`
	}
	err := generateJSONWithRepair(context.Background(), rec.complete, "plan this", []byte(sampleSchema), &out)
	require.NoError(t, err)
	assert.Equal(t, "top10_volume_30d", out.Name)
	assert.Equal(t, 1, rec.calls)
}

func TestGenerateJSONWithRepair_RecoversOnSecondTry(t *testing.T) {
	rec := &jsonRecorder{responses: []string{
		"sorry, here's your answer: not json at all",
		`{"name": "response_times"}`,
	}}
	var out struct {
		Name string `json:"name"`
	}
	err := generateJSONWithRepair(context.Background(), rec.complete, "plan this", []byte(sampleSchema), &out)
	require.NoError(t, err)
	assert.Equal(t, "response_times", out.Name)
	assert.Equal(t, 2, rec.calls)
	assert.Contains(t, rec.prompts[1], repairHint)
}

func TestGenerateJSONWithRepair_FailsAfterTwoAttempts(t *testing.T) {
	rec := &jsonRecorder{responses: []string{"nope", "still nope"}}
	var out struct {
		Name string `json:"name"`
	}
	err := generateJSONWithRepair(context.Background(), rec.complete, "plan this", []byte(sampleSchema), &out)
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindLLMParseError, appErr.Kind)
	assert.Equal(t, 2, rec.calls)
}

func TestGenerateJSONWithRepair_RejectsSchemaMismatch(t *testing.T) {
	rec := &jsonRecorder{responses: []string{`{"wrong_field": 1}`, `{"wrong_field": 2}`}}
	var out struct {
		Name string `json:"name"`
	}
	err := generateJSONWithRepair(context.Background(), rec.complete, "plan this", []byte(sampleSchema), &out)
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindLLMParseError, appErr.Kind)
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"wrapped in prose", "here you go: {\"a\":1} thanks!", `{"a":1}`},
		{"nested braces", `{"a":{"b":1}}`, `{"a":{"b":1}}`},
		{"array", `prefix [1,2,3] suffix`, `[1,2,3]`},
		{"no brackets", "no json here", "no json here"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractJSONObject(tc.in))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("received 429 rate limit exceeded")))
	assert.True(t, isTransient(errors.New("upstream returned 503")))
	assert.True(t, isTransient(context.DeadlineExceeded))
	assert.False(t, isTransient(errors.New("invalid api key")))
	assert.False(t, isTransient(nil))
}
