// Package integrations provides the shared HTTP client used by the CMR
// search client.
//
// # Overview
//
// The [Client] type wraps an [http.Client] with:
//   - Query-string construction from [url.Values]
//   - Status mapping to [errors.RequestError] (code HTTP_REQUEST)
//   - Response caching through any [cache.Cache] backend, keyed by the
//     full request URL
//
// Requests are never retried. A failed request surfaces to the caller with
// the request URL and status attached.
//
// The [cmr] subpackage builds on this client:
//
//	client := cmr.NewClient(backend, time.Hour)
//	resp, err := client.Search(ctx, cmr.Granules, query, false)
//
// # Errors
//
// Failures wrap one of the sentinels so callers can branch with
// [errors.Is]:
//   - [ErrNotFound]: the endpoint returned 404
//   - [ErrNetwork]: connection failure, timeout or 5xx response
//
// [cmr]: github.com/matzehuels/simplecmr/pkg/integrations/cmr
package integrations
