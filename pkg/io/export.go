package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

// WriteJSON encodes v as indented JSON and writes it to w.
func WriteJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes v to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(v any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(v, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Table is a set of rows with a fixed column order.
type Table struct {
	Columns []string
	Rows    []map[string]any
}

// NewTable builds a table over rows. Columns in preferred that appear in
// at least one row come first, in that order; every other column follows
// in sorted order.
func NewTable(rows []map[string]any, preferred []string) *Table {
	seen := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			seen[k] = true
		}
	}

	cols := make([]string, 0, len(seen))
	for _, c := range preferred {
		if seen[c] {
			cols = append(cols, c)
			delete(seen, c)
		}
	}
	cols = append(cols, slices.Sorted(maps.Keys(seen))...)
	return &Table{Columns: cols, Rows: rows}
}

// WriteCSV writes the header and one line per row to w.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	line := make([]string, len(t.Columns))
	for i, r := range t.Rows {
		for j, c := range t.Columns {
			cell, err := formatCell(r[c])
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", i, c, err)
			}
			line[j] = cell
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the table to a CSV file at path.
func (t *Table) ExportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatCell(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case json.Number:
		return v.String(), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ResultFileName returns query_result_<unix seconds>.<ext> for t.
func ResultFileName(ext string, t time.Time) string {
	return fmt.Sprintf("query_result_%d.%s", t.Unix(), ext)
}

// SaveJSON writes v to a query_result_<unix>.json file in dir and returns
// its path.
func SaveJSON(dir string, v any, now time.Time) (string, error) {
	path := filepath.Join(dir, ResultFileName("json", now))
	return path, ExportJSON(v, path)
}

// SaveCSV writes t to a query_result_<unix>.csv file in dir and returns its
// path.
func SaveCSV(dir string, t *Table, now time.Time) (string, error) {
	path := filepath.Join(dir, ResultFileName("csv", now))
	return path, t.ExportCSV(path)
}
