package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSONResponse decodes an LLM reply into v. Replies that wrap the
// object in prose or code fences are trimmed to the outermost braces first.
func DecodeJSONResponse(responseText string, v any) error {
	err := json.Unmarshal([]byte(responseText), v)
	if err == nil {
		return nil
	}

	start := strings.IndexByte(responseText, '{')
	end := strings.LastIndexByte(responseText, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("failed to extract JSON from LLM response: %w", err)
	}

	if err := json.Unmarshal([]byte(responseText[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return nil
}
