package cmr

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/simplecmr/pkg/errors"
	"github.com/matzehuels/simplecmr/pkg/metadata"
)

func TestItemKeepsSectionOrder(t *testing.T) {
	r := decodeResponse(t, `{"hits":1,"took":3,"items":[{"umm":{"a":1},"meta":{"b":2},"extra":{"c":3}}]}`)
	if len(r.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(r.Items))
	}
	var names []string
	for _, s := range r.Items[0].Sections {
		names = append(names, s.Name)
	}
	want := []string{"umm", "meta", "extra"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sections = %v, want %v", names, want)
		}
	}

	out, err := json.Marshal(r.Items[0])
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != `{"umm":{"a":1},"meta":{"b":2},"extra":{"c":3}}` {
		t.Errorf("MarshalJSON() = %s", got)
	}
}

func TestItemMergeLastSectionWins(t *testing.T) {
	r := decodeResponse(t, `{"items":[{"meta":{"id":"meta","x":1},"umm":{"id":"umm","y":2}}]}`)
	m := r.Items[0].Merge()
	if m["id"] != "umm" {
		t.Errorf("id = %v, want umm", m["id"])
	}
	if m["x"] != float64(1) || m["y"] != float64(2) {
		t.Errorf("Merge() = %v", m)
	}
	if meta := r.Items[0].Sections[0]; meta.Name != "meta" || meta.Body["id"] != "meta" {
		t.Error("Merge() modified a section body")
	}
}

func TestItemUnmarshalErrors(t *testing.T) {
	for _, body := range []string{`{"items":[[1,2]]}`, `{"items":[{"meta":"oops"}]}`} {
		var r Response
		if err := json.Unmarshal([]byte(body), &r); err == nil {
			t.Errorf("Unmarshal(%s) should fail", body)
		}
	}
}

func TestResponseFlatten(t *testing.T) {
	r := decodeResponse(t, `{"items":[{"meta":{"concept-id":"G1"},"umm":{"RelatedUrls":[{"URL":"a"},{"URL":"b"}],"Tags":[1,2,3]}}]}`)
	recs, err := r.Flatten()
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	rec := recs[0]
	if rec["concept-id"] != "G1" {
		t.Errorf("concept-id = %v", rec["concept-id"])
	}
	set, ok := rec["URL"].(*metadata.Set)
	if !ok || set.Len() != 2 {
		t.Errorf("URL = %#v, want set of 2", rec["URL"])
	}
	if tags, ok := rec["Tags"].([]any); !ok || len(tags) != 3 {
		t.Errorf("Tags = %#v", rec["Tags"])
	}
}

func TestResponseFlattenEmpty(t *testing.T) {
	r := decodeResponse(t, `{"hits":0,"took":1,"items":[]}`)
	if _, err := r.Flatten(); !errors.Is(err, errors.ErrCodeEmptyResult) {
		t.Errorf("Flatten() error = %v, want EMPTY_RESULT", err)
	}
}
