package metadata

import (
	"maps"
	"slices"
)

// Record is a flat view of one metadata item. Values are JSON scalars,
// scalar lists ([]any) kept verbatim, or *Set for keys aggregated across
// the elements of a list of objects.
type Record map[string]any

// Flatten merges the nested objects of m into a single flat Record.
//
// For each key of m:
//   - an object value is flattened and its entries merged into the result;
//     same-named keys are overwritten (last write wins)
//   - an array whose first element is an object is treated as a list of
//     sub-records: each object element is flattened and its entries are
//     unioned into a *Set per key
//   - any other array is stored verbatim under its own key
//   - a scalar is stored directly, overwriting any previous value
//
// Keys are visited in sorted order, so collisions between sibling objects
// resolve the same way on every run. Empty arrays contribute nothing.
// Flattening a record that is already flat returns an equal record. m is
// not modified.
func Flatten(m map[string]any) Record {
	out := make(Record, len(m))
	flattenInto(out, m)
	return out
}

func flattenInto(out Record, m map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		switch v := m[k].(type) {
		case map[string]any:
			out.merge(Flatten(v))
		case []any:
			if len(v) == 0 {
				continue
			}
			if _, ok := v[0].(map[string]any); !ok {
				out[k] = v
				continue
			}
			for _, elem := range v {
				if sub, ok := elem.(map[string]any); ok {
					out.union(Flatten(sub))
				}
			}
		case *Set:
			out[k] = NewSet(v)
		default:
			out[k] = v
		}
	}
}

// merge copies every entry of src over r.
func (r Record) merge(src Record) {
	for k, v := range src {
		r[k] = v
	}
}

// union folds every entry of src into r as set members. An existing value
// that is not a set is promoted into one before the new value is added.
func (r Record) union(src Record) {
	for k, v := range src {
		set, ok := r[k].(*Set)
		if !ok {
			set = &Set{}
			if prev, exists := r[k]; exists {
				set.Add(prev)
			}
			r[k] = set
		}
		set.Add(v)
	}
}
