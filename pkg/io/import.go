package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadRecords decodes a JSON array of objects from r, the shape written
// when projected records are exported.
//
// ReadRecords does not close r.
func ReadRecords(r io.Reader) ([]map[string]any, error) {
	var recs []map[string]any
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return recs, nil
}

// ImportJSON reads records from the JSON file at path.
func ImportJSON(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	recs, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
