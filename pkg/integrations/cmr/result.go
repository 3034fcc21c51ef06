package cmr

import (
	"bytes"
	"encoding/json"
)

// CollectionFields are the fields kept from collection items, in output
// order.
var CollectionFields = []string{
	"native-id",
	"concept-id",
	"provider-id",
	"ShortName",
	"EntryTitle",
	"ProcessingLevel",
	"SpatialExtent",
	"ScienceKeywords",
	"TemporalExtents",
	"Abstract",
	"RelatedUrls",
	"revision-date",
	"Version",
}

// GranuleFields are the fields kept from granule items, in output order.
var GranuleFields = []string{
	"concept-id",
	"RelatedUrls",
	"SpatialExtent",
	"TemporalExtent",
	"GranuleUR",
	"revision-date",
}

// Field is one named value of a Record.
type Field struct {
	Name  string
	Value any
}

// Record is an item projected onto an allow-list. Fields appear in
// allow-list order; fields missing from the item are omitted.
type Record struct {
	Fields []Field
}

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Map returns the fields as an unordered mapping.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON encodes the record as an object with fields in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Records is an ordered list of projected records.
type Records []Record

// Len returns the number of records.
func (rs Records) Len() int { return len(rs) }

// Project merges each item's sections and keeps only the fields named in
// fields, in that order. Output order matches item order. Returns an
// EMPTY_RESULT error when resp has no items; use the Response directly for
// raw access to empty results.
func Project(resp *Response, fields []string) (Records, error) {
	if resp == nil || len(resp.Items) == 0 {
		return nil, errEmpty()
	}
	out := make(Records, len(resp.Items))
	for i, it := range resp.Items {
		out[i] = project(it.Merge(), fields)
	}
	return out, nil
}

func project(md map[string]any, fields []string) Record {
	rec := Record{Fields: make([]Field, 0, len(fields))}
	for _, name := range fields {
		if v, ok := md[name]; ok {
			rec.Fields = append(rec.Fields, Field{Name: name, Value: v})
		}
	}
	return rec
}

// FromMaps projects already-merged records, such as records read back from
// an exported file, onto fields.
func FromMaps(ms []map[string]any, fields []string) Records {
	out := make(Records, len(ms))
	for i, m := range ms {
		out[i] = project(m, fields)
	}
	return out
}
