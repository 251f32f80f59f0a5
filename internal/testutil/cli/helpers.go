package cli

import (
	"encoding/json"
	"testing"
)

// ParseJSON parses JSON output from CLI commands
func ParseJSON(t *testing.T, output string) map[string]any {
	t.Helper()

	var result map[string]any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nOutput: %s", err, output)
	}

	return result
}

// DecodeData unmarshals the "data" field of a --json success envelope
func DecodeData[T any](t *testing.T, output string) T {
	t.Helper()

	var envelope struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	if err := json.Unmarshal([]byte(output), &envelope); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if !envelope.Success {
		t.Fatalf("Expected success envelope, got: %s", output)
	}
	return envelope.Data
}
