package output

import (
	"encoding/json"
	"fmt"
	"io"
)

func newEncoder(w io.Writer, indent bool) *json.Encoder {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	// Task names and descriptions are shown as typed, including <, > and &.
	enc.SetEscapeHTML(false)
	return enc
}

// JSON writes data as indented JSON to the given writer.
func JSON(w io.Writer, data any) error {
	if err := newEncoder(w, true).Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// JSONLine writes data as a single line of JSON, for streams such as
// tgm watch --json.
func JSONLine(w io.Writer, data any) error {
	if err := newEncoder(w, false).Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes a structured error to the given writer as JSON. Write
// failures are ignored since the process is about to exit.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	_ = JSON(w, ErrorResponse{Error: msg, Code: code, Details: details})
}
