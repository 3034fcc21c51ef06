package cmr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/simplecmr/pkg/cache"
	cmrerrors "github.com/matzehuels/simplecmr/pkg/errors"
	"github.com/matzehuels/simplecmr/pkg/integrations"
)

func TestParseResource(t *testing.T) {
	for _, s := range []string{"collections", "granules"} {
		if r, err := ParseResource(s); err != nil || string(r) != s {
			t.Errorf("ParseResource(%q) = %q, %v", s, r, err)
		}
	}
	if _, err := ParseResource("variables"); !cmrerrors.Is(err, cmrerrors.ErrCodeInvalidInput) {
		t.Errorf("ParseResource(variables) error = %v, want INVALID_INPUT", err)
	}
}

func TestEndpoint(t *testing.T) {
	c := NewClient(nil, time.Hour)
	if got := c.Endpoint(ResourceGranules); got != "https://cmr.earthdata.nasa.gov/search/granules.umm_json_v1_4" {
		t.Errorf("Endpoint() = %q", got)
	}
	c = NewClient(nil, time.Hour, WithBaseURL(UATBaseURL))
	if got := c.Endpoint(ResourceCollections); got != UATBaseURL+"/collections.umm_json_v1_4" {
		t.Errorf("Endpoint() = %q", got)
	}
}

func TestGranulesEndToEnd(t *testing.T) {
	items := make([]map[string]any, 5)
	for i := range items {
		items[i] = granuleItem(i, fmt.Sprintf("https://data.example.gov/g%d.nc", i))
	}
	_, client, reqs := newSearchServer(t, http.StatusOK, itemsBody(t, items))

	q, err := Filter{BoundingBox: []string{"-180", "-10", "180", "10"}, MaxResults: 5}.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := q.Params.Get(ParamBoundingBox); got != "-180,-10,180,10" {
		t.Errorf("bounding_box = %q", got)
	}
	if got := q.Params.Get(ParamPageSize); got != "5" {
		t.Errorf("page_size = %q", got)
	}

	recs, err := client.Granules(context.Background(), q, false)
	if err != nil {
		t.Fatalf("Granules() error: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("records = %d, want 5", len(recs))
	}
	for i, rec := range recs {
		if id, _ := rec.Get("concept-id"); id != fmt.Sprintf("G%d-TEST", i) {
			t.Errorf("record %d concept-id = %v", i, id)
		}
		if _, ok := rec.Get("provider-id"); ok {
			t.Errorf("record %d kept provider-id", i)
		}
	}

	if len(*reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(*reqs))
	}
	r := (*reqs)[0]
	if r.URL.Path != "/granules.umm_json_v1_4" {
		t.Errorf("path = %q", r.URL.Path)
	}
	if got := r.URL.Query().Get("bounding_box"); got != "-180,-10,180,10" {
		t.Errorf("sent bounding_box = %q", got)
	}
}

func TestCollections(t *testing.T) {
	body := `{"hits":1,"took":2,"items":[{"meta":{"concept-id":"C1","provider-id":"LPDAAC"},"umm":{"ShortName":"MOD09GA","Version":"061","DOI":{"DOI":"x"}}}]}`
	_, client, reqs := newSearchServer(t, http.StatusOK, []byte(body))

	q, _ := Filter{ShortName: "MOD09GA", MaxResults: 1}.Build()
	recs, err := client.Collections(context.Background(), q, false)
	if err != nil {
		t.Fatalf("Collections() error: %v", err)
	}
	want := []string{"concept-id", "provider-id", "ShortName", "Version"}
	got := recs[0].Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("fields = %v, want %v", got, want)
	}
	if p := (*reqs)[0].URL.Path; p != "/collections.umm_json_v1_4" {
		t.Errorf("path = %q", p)
	}
}

func TestSearchEmpty(t *testing.T) {
	_, client, _ := newSearchServer(t, http.StatusOK, []byte(`{"hits":0,"took":1,"items":[]}`))
	q, _ := Filter{MaxResults: 10}.Build()

	resp, err := client.Search(context.Background(), ResourceGranules, q, false)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if resp.Hits != 0 || len(resp.Items) != 0 {
		t.Errorf("Search() = %+v, want empty", resp)
	}

	_, err = client.Granules(context.Background(), q, false)
	if !cmrerrors.Is(err, cmrerrors.ErrCodeEmptyResult) {
		t.Errorf("Granules() error = %v, want EMPTY_RESULT", err)
	}
}

func TestSearchHTTPError(t *testing.T) {
	_, client, reqs := newSearchServer(t, http.StatusBadRequest, []byte(`{"errors":["bad"]}`))
	q, _ := Filter{MaxResults: 10, ShortName: "X"}.Build()

	_, err := client.Search(context.Background(), ResourceCollections, q, false)
	var reqErr *cmrerrors.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Search() error = %v, want *RequestError", err)
	}
	if reqErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", reqErr.StatusCode)
	}
	if !strings.Contains(reqErr.URL, "short_name=X") {
		t.Errorf("URL = %q, want query string", reqErr.URL)
	}
	if len(*reqs) != 1 {
		t.Errorf("requests = %d, want 1 (no retry)", len(*reqs))
	}
}

func TestSearchServerError(t *testing.T) {
	_, client, _ := newSearchServer(t, http.StatusBadGateway, nil)
	q, _ := Filter{MaxResults: 10}.Build()
	_, err := client.Search(context.Background(), ResourceGranules, q, false)
	if !errors.Is(err, integrations.ErrNetwork) {
		t.Errorf("Search() error = %v, want ErrNetwork", err)
	}
}

func TestSearchUnknownResource(t *testing.T) {
	_, client, reqs := newSearchServer(t, http.StatusOK, []byte(`{}`))
	_, err := client.Search(context.Background(), Resource("tools"), nil, false)
	if !cmrerrors.Is(err, cmrerrors.ErrCodeInvalidInput) {
		t.Errorf("Search() error = %v, want INVALID_INPUT", err)
	}
	if len(*reqs) != 0 {
		t.Error("request sent for unknown resource")
	}
}

func TestSearchCached(t *testing.T) {
	calls := 0
	srv := newCountingServer(t, &calls, `{"hits":1,"items":[{"meta":{"concept-id":"G1"}}]}`)
	client := NewClient(cache.NewMemoryCache(8, time.Hour), time.Hour, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	q, _ := Filter{MaxResults: 1}.Build()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := client.Search(ctx, ResourceGranules, q, false); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if _, err := client.Search(ctx, ResourceGranules, q, true); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls after refresh = %d, want 2", calls)
	}
}
