// Package pkg provides the simplecmr libraries for searching NASA's Common
// Metadata Repository (CMR) and downloading granule data.
//
// # Overview
//
// The pkg directory is organized by concern:
//
//  1. [integrations/cmr] - CMR search client, query building, result
//     projection and granule downloads
//  2. [integrations] - Shared HTTP client with response caching
//  3. [metadata] - Flattening of nested UMM-JSON metadata into records
//  4. [cache] - Response cache backends (file, memory, Redis)
//  5. [io] - JSON and CSV export and import of results
//  6. [errors] - Coded errors and validation helpers
//  7. [observability] - Search, cache and fetch hooks with a Prometheus
//     implementation
//
// # Data Flow
//
//	Filter (bbox, dates, levels, keywords, ids)
//	         ↓
//	    [integrations/cmr] Filter.Build → Query
//	         ↓
//	    [integrations/cmr] Client.Search → Response (cached)
//	         ↓
//	    Project → Records      or      Response.Flatten → [metadata] records
//	         ↓                                   ↓
//	    Fetcher.Fetch → files           [io] JSON / CSV export
//
// # Quick Start
//
// Search granules of a collection inside a bounding box:
//
//	q, err := cmr.Filter{
//	    ConceptID:   "C1234-PODAAC",
//	    BoundingBox: []string{"-180", "-10", "180", "10"},
//	    MaxResults:  5,
//	}.Build()
//	if err != nil {
//	    return err
//	}
//
//	client := cmr.NewClient(cache.NewMemoryCache(512, time.Hour), time.Hour)
//	granules, err := client.Granules(ctx, q, false)
//	if err != nil {
//	    return err
//	}
//
//	report, err := cmr.NewFetcher().Fetch(ctx, granules,
//	    cmr.Credentials{Username: user, Password: pass},
//	    cmr.DefaultFetchOptions())
package pkg
