package cmr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// granuleItem builds a UMM-JSON granule item whose data URL points at
// dataURL.
func granuleItem(i int, dataURL string) map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"concept-id":    fmt.Sprintf("G%d-TEST", i),
			"revision-date": "2021-01-01T00:00:00Z",
			"provider-id":   "TEST",
		},
		"umm": map[string]any{
			"GranuleUR": fmt.Sprintf("granule-%d", i),
			"RelatedUrls": []any{
				map[string]any{"Type": "VIEW RELATED INFORMATION", "URL": "https://example.gov/doc.html"},
				map[string]any{"Type": "GET DATA", "URL": dataURL},
			},
			"TemporalExtent": map[string]any{
				"RangeDateTime": map[string]any{"BeginningDateTime": "2020-01-01T00:00:00Z"},
			},
			"DataGranule": map[string]any{"DayNightFlag": "Day"},
		},
	}
}

func itemsBody(t *testing.T, items []map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{"hits": len(items), "took": 12, "items": items})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func decodeResponse(t *testing.T, body string) *Response {
	t.Helper()
	var r Response
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &r
}

// newSearchServer serves body for every request and records the last
// request's URL.
func newSearchServer(t *testing.T, status int, body []byte) (*httptest.Server, *Client, *[]*http.Request) {
	t.Helper()
	var reqs []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r)
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(nil, time.Hour, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	return srv, c, &reqs
}

func newCountingServer(t *testing.T, calls *int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}
