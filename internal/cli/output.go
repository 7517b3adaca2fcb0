package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output is the JSON envelope every command prints in --json mode.
type Output struct {
	Status  string                 `json:"status"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Message string                 `json:"message,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// writeJSON encodes out as indented JSON.
func writeJSON(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	return nil
}

// writeSuccess prints data as a success envelope.
func writeSuccess(w io.Writer, message string, data map[string]interface{}) error {
	return writeJSON(w, Output{Status: "success", Message: message, Data: data})
}

// outputError reports err in the active output mode and returns it, so the
// command still exits non-zero.
func outputError(w io.Writer, jsonMode bool, err error) error {
	if jsonMode {
		_ = writeJSON(w, Output{Status: "error", Error: err.Error()})
	}
	return err
}

// parseDuration accepts Go durations ("90s", "5m") and bare seconds ("300").
func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("duration must be >= 0, got %s", s)
		}
		return d, nil
	}

	var seconds int64
	if _, err := fmt.Sscanf(s, "%d", &seconds); err != nil || fmt.Sprint(seconds) != s {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("duration must be >= 0, got %s", s)
	}
	return time.Duration(seconds) * time.Second, nil
}
