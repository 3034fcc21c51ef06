package io

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/simplecmr/pkg/metadata"
)

func TestNewTableColumns(t *testing.T) {
	rows := []map[string]any{
		{"zeta": 1, "concept-id": "G1"},
		{"alpha": true, "GranuleUR": "g2"},
	}
	tbl := NewTable(rows, []string{"concept-id", "RelatedUrls", "GranuleUR"})
	want := []string{"concept-id", "GranuleUR", "alpha", "zeta"}
	if strings.Join(tbl.Columns, ",") != strings.Join(want, ",") {
		t.Errorf("Columns = %v, want %v", tbl.Columns, want)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []map[string]any{
		{"id": "G1", "size": 12.5, "urls": metadata.NewSet("a", "b"), "tags": []any{float64(1), float64(2)}},
		{"id": "G2, quoted", "ok": false},
	}
	var buf bytes.Buffer
	if err := NewTable(rows, []string{"id"}).WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	lines, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	want := [][]string{
		{"id", "ok", "size", "tags", "urls"},
		{"G1", "", "12.5", "[1,2]", `["a","b"]`},
		{"G2, quoted", "false", "", "", ""},
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v", lines)
	}
	for i := range want {
		if strings.Join(lines[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	now := time.Unix(1700000000, 0)
	recs := []map[string]any{{"concept-id": "G1", "RelatedUrls": []any{map[string]any{"Type": "GET DATA", "URL": "https://x/a.nc"}}}}

	path, err := SaveJSON(dir, recs, now)
	if err != nil {
		t.Fatalf("SaveJSON() error: %v", err)
	}
	if filepath.Base(path) != "query_result_1700000000.json" {
		t.Errorf("path = %q", path)
	}

	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if len(got) != 1 || got[0]["concept-id"] != "G1" {
		t.Errorf("ImportJSON() = %v", got)
	}
}

func TestSaveCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveCSV(dir, NewTable([]map[string]any{{"a": "1"}}, nil), time.Unix(42, 0))
	if err != nil {
		t.Fatalf("SaveCSV() error: %v", err)
	}
	if filepath.Base(path) != "query_result_42.csv" {
		t.Errorf("path = %q", path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a\n1\n" {
		t.Errorf("content = %q", data)
	}
}

func TestImportJSONErrors(t *testing.T) {
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportJSON(missing) should fail")
	}
	if _, err := ReadRecords(strings.NewReader(`{"items":[]}`)); err == nil {
		t.Error("ReadRecords(object) should fail")
	}
}
