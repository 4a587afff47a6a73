package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// PrintJSON writes the provided value as indented JSON. HTML is not escaped so
// markup inside section custom code stays readable.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// MarshalJSON renders v the way PrintJSON does, without the trailing newline.
func MarshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// StructuredResult provides a consistent payload for JSON responses.
func StructuredResult(success bool, message string, data interface{}) map[string]interface{} {
	payload := map[string]interface{}{
		"success": success,
	}
	if message != "" {
		payload["message"] = message
	}
	if data != nil {
		payload["data"] = data
	}
	return payload
}

// PrintLines prints each string on a new line.
func PrintLines(w io.Writer, lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
