package llmclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opencity/insight/pkg/apperror"
)

// completeFunc is the shape both vendor backends expose for a single-turn
// completion: a system prompt (may be empty) plus the user prompt.
type completeFunc func(ctx context.Context, system, prompt string) (string, error)

// generateJSONWithRepair drives GenerateJSON for any backend: one attempt
// at the original prompt, and on a parse or schema-validation failure, one
// retry with repairHint appended. A second failure surfaces as
// apperror.LLMParseError.
func generateJSONWithRepair(ctx context.Context, complete completeFunc, prompt string, schema []byte, out any) error {
	raw, err := complete(ctx, "", prompt)
	if err != nil {
		return err
	}
	if parseErr := parseAndValidate(raw, schema, out); parseErr == nil {
		return nil
	}

	raw, err = complete(ctx, "", prompt+repairHint)
	if err != nil {
		return err
	}
	if parseErr := parseAndValidate(raw, schema, out); parseErr != nil {
		return apperror.LLMParseError("LLM response did not match the required JSON shape after one repair attempt", parseErr)
	}
	return nil
}

func parseAndValidate(raw string, schema []byte, out any) error {
	candidate := []byte(extractJSONObject(raw))

	if err := validateAgainstSchema(candidate, schema); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if err := json.Unmarshal(candidate, out); err != nil {
		return fmt.Errorf("json unmarshal failed: %w", err)
	}
	return nil
}
