package seeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Load reads seed URLs from a JSON file holding an array of objects with a
// "website" field: [{"website": "https://example.com"}, ...].
//
// Entries without a string website (missing field, null, wrong type, or a
// non-object element) yield an empty URL so the caller still sees one seed per
// entry and can report the failure in order.
func Load(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("seed file path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes the seed array from raw JSON.
func Parse(data []byte) ([]string, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode seeds: %w", err)
	}
	out := make([]string, 0, len(rows))
	for _, raw := range rows {
		var row map[string]any
		if err := json.Unmarshal(raw, &row); err != nil {
			out = append(out, "")
			continue
		}
		s, _ := row["website"].(string)
		out = append(out, s)
	}
	return out, nil
}
