package llmclient

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// validateAgainstSchema compiles schemaBytes as a JSON Schema document and
// validates payload against it. An empty schema is treated as "anything
// goes".
func validateAgainstSchema(payload []byte, schemaBytes []byte) error {
	if len(schemaBytes) == 0 {
		return nil
	}

	var schemaDoc any
	if err := json.Unmarshal(schemaBytes, &schemaDoc); err != nil {
		return fmt.Errorf("unmarshal schema: %w", err)
	}

	var payloadDoc any
	if err := json.Unmarshal(payload, &payloadDoc); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	if err := schema.Validate(payloadDoc); err != nil {
		return err
	}
	return nil
}

// extractJSONObject strips leading/trailing prose a model sometimes wraps
// around a JSON object or array, returning the outermost balanced span
// that starts at the first '{' or '['. Only that bracket kind is counted,
// and brackets inside JSON strings are not skipped. Returns raw unchanged
// if no bracket is found, and the rest of raw from the first bracket if
// the span never balances.
func extractJSONObject(raw string) string {
	start := -1
	for i, r := range raw {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start == -1 {
		return raw
	}
	open, close := raw[start], byte(0)
	if open == '{' {
		close = '}'
	} else {
		close = ']'
	}
	depth := 0
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return raw[start:]
}
