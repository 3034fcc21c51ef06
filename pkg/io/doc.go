// Package io provides JSON and CSV export and import for search results.
//
// # Overview
//
// Search results leave the program in one of two shapes:
//
//   - JSON: the raw response or the projected records, indented, with
//     field order preserved by the value's own MarshalJSON
//   - CSV: a [Table] of flat rows, one column per field
//
// # Tables
//
// [NewTable] builds the column list from the rows themselves. Columns named
// in the preferred order come first (when any row has them); the remaining
// columns follow in sorted order:
//
//	t := io.NewTable(rows, cmr.GranuleFields)
//	err := t.WriteCSV(os.Stdout)
//
// Cells holding lists, objects or aggregated sets are written as compact
// JSON. Missing cells are empty.
//
// # Saved Results
//
// [SaveJSON] and [SaveCSV] write to query_result_<unix seconds>.json/.csv
// in a directory, the names used by earlier versions of the tool:
//
//	path, err := io.SaveJSON(".", resp, time.Now())
//
// [ImportJSON] reads saved records back, e.g. to fetch granules found by an
// earlier search.
package io
