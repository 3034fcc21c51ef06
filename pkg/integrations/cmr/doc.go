// Package cmr provides a client for NASA's Common Metadata Repository
// (CMR) search API.
//
// # Overview
//
// A search runs in three steps:
//
//  1. Build a validated [Query] from a [Filter]. All validation happens
//     here, before any network call.
//  2. Send it with [Client.Search], which returns the raw [Response].
//  3. Project the items onto a fixed allow-list with [Project], or flatten
//     them completely with [Response.Flatten].
//
// [Client.Collections] and [Client.Granules] combine steps 2 and 3:
//
//	q, err := cmr.Filter{ShortName: "MOD09GA", MaxResults: 5}.Build()
//	if err != nil {
//	    return err // validation error, see errors.IsValidation
//	}
//	granules, err := client.Granules(ctx, q, false)
//
// # Downloads
//
// [Fetcher] downloads the data files referenced by granule records. Each
// record's first "GET DATA" related URL is requested through an
// authenticated session that follows the Earthdata Login redirect, and the
// body is written under the destination directory using the URL's final
// path segment. Downloads run on a small fixed worker pool and report one
// [FetchResult] per record, in input order.
package cmr
