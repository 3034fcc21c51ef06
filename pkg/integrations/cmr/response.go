package cmr

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/simplecmr/pkg/errors"
	"github.com/matzehuels/simplecmr/pkg/metadata"
)

// Response is a decoded UMM-JSON search response.
type Response struct {
	Hits  int    `json:"hits"`
	Took  int    `json:"took"`
	Items []Item `json:"items"`
}

// Item is one search result: the named top-level sections ("meta", "umm",
// ...) in the order the server sent them.
type Item struct {
	Sections []Section
}

// Section is one named top-level object of an Item.
type Section struct {
	Name string
	Body map[string]any
}

// UnmarshalJSON decodes an item object, keeping its section order.
func (it *Item) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		it.Sections = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("cmr: item is %v, want object", tok)
	}

	it.Sections = it.Sections[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var body map[string]any
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("cmr: section %q: %w", name, err)
		}
		it.Sections = append(it.Sections, Section{Name: name, Body: body})
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the item with its sections in their original order.
func (it Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range it.Sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(s.Body)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Merge combines the sections into one mapping. Sections are applied in
// order, so a field present in several sections takes its value from the
// last one. The section bodies are not modified.
func (it Item) Merge() map[string]any {
	out := make(map[string]any)
	for _, s := range it.Sections {
		for k, v := range s.Body {
			out[k] = v
		}
	}
	return out
}

// Map returns the item as a mapping of section name to section body.
func (it Item) Map() map[string]any {
	out := make(map[string]any, len(it.Sections))
	for _, s := range it.Sections {
		out[s.Name] = s.Body
	}
	return out
}

// Len returns the number of items in the response.
func (r *Response) Len() int { return len(r.Items) }

// Flatten flattens every item completely, sections and nested objects
// alike, for tabular output. Returns an EMPTY_RESULT error when the
// response has no items.
func (r *Response) Flatten() ([]metadata.Record, error) {
	if len(r.Items) == 0 {
		return nil, errEmpty()
	}
	out := make([]metadata.Record, len(r.Items))
	for i, it := range r.Items {
		out[i] = metadata.Flatten(it.Map())
	}
	return out, nil
}

func errEmpty() error {
	return errors.New(errors.ErrCodeEmptyResult, "query returned no data, please check query parameters")
}
