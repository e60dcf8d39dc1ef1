package main

import (
	"encoding/json"
	"io"
)

// writeJSON encodes v as indented JSON without HTML escaping so URLs stay
// readable.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
