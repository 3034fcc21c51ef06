// Package metadata flattens nested UMM-JSON metadata into flat records.
//
// CMR returns each search item as a tree of objects and arrays. [Flatten]
// collapses that tree into a single [Record] keyed by leaf field name, which
// is the shape used for tabular output (CSV export, the --flat view).
//
// # Aggregation
//
// Arrays of objects (RelatedUrls, SpatialExtent.HorizontalSpatialDomain,
// ScienceKeywords, ...) repeat the same field names once per element. Those
// fields are aggregated into a [Set] rather than overwritten:
//
//	rec := metadata.Flatten(map[string]any{
//	    "RelatedUrls": []any{
//	        map[string]any{"Type": "GET DATA", "URL": "https://a"},
//	        map[string]any{"Type": "VIEW RELATED INFORMATION", "URL": "https://b"},
//	    },
//	})
//	rec["URL"].(*metadata.Set).Values() // ["https://a", "https://b"]
//
// Arrays of scalars are kept verbatim under their own key.
package metadata
