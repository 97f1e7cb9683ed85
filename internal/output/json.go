package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// PrintJSON writes v to stdout as indented JSON.
func PrintJSON(v any) {
	if err := WriteJSON(os.Stdout, v); err != nil {
		fmt.Fprintf(os.Stderr, "JSON encoding error: %v\n", err)
	}
}

// WriteJSON encodes v with two-space indentation. '<', '>' and '&' are left
// literal so deep links and markup stay readable.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
