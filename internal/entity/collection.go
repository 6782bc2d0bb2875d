package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Collection maps boss IDs to their entries. It is persisted as one document.
type Collection map[string]Entry

// Clone returns a shallow copy of the map. Entries are replaced wholesale,
// never mutated in place, so sharing their slices is safe.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// MarshalDocument encodes the collection in its persisted form. The output is
// deterministic: keys are sorted and indentation is fixed.
func (c Collection) MarshalDocument() ([]byte, error) {
	doc := make(map[string]Entry, len(c))
	for k, v := range c {
		doc[k] = v.Normalize()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes a persisted collection. Empty input is an empty
// collection.
func UnmarshalDocument(data []byte) (Collection, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Collection{}, nil
	}
	var raw map[string]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	out := make(Collection, len(raw))
	for k, v := range raw {
		out[k] = v.Normalize()
	}
	return out, nil
}
