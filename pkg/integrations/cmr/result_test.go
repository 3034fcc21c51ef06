package cmr

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/simplecmr/pkg/errors"
)

func TestProjectSelectsAllowListInOrder(t *testing.T) {
	r := decodeResponse(t, `{"items":[{
		"meta":{"revision-date":"2021","concept-id":"C1","native-id":"n1","not-listed":true},
		"umm":{"Version":"6","ShortName":"MOD09GA","Abstract":"text","Platforms":[{"ShortName":"Terra"}]}
	}]}`)

	recs, err := Project(r, CollectionFields)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	got := recs[0].Names()
	want := []string{"native-id", "concept-id", "ShortName", "Abstract", "revision-date", "Version"}
	if len(got) != len(want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fields = %v, want %v", got, want)
		}
	}
	if _, ok := recs[0].Get("not-listed"); ok {
		t.Error("non-listed field kept")
	}
	if _, ok := recs[0].Get("Platforms"); ok {
		t.Error("non-listed field kept")
	}

	out, _ := json.Marshal(recs[0])
	wantJSON := `{"native-id":"n1","concept-id":"C1","ShortName":"MOD09GA","Abstract":"text","revision-date":"2021","Version":"6"}`
	if string(out) != wantJSON {
		t.Errorf("MarshalJSON() = %s, want %s", out, wantJSON)
	}
}

func TestProjectGranuleFields(t *testing.T) {
	r := decodeResponse(t, `{"items":[{"meta":{"concept-id":"G1"},"umm":{"GranuleUR":"g","DataGranule":{}}}]}`)
	recs, err := Project(r, GranuleFields)
	if err != nil {
		t.Fatal(err)
	}
	if names := recs[0].Names(); len(names) != 2 || names[0] != "concept-id" || names[1] != "GranuleUR" {
		t.Errorf("fields = %v", names)
	}
}

func TestProjectEmpty(t *testing.T) {
	r := decodeResponse(t, `{"hits":0,"items":[]}`)
	if _, err := Project(r, GranuleFields); !errors.Is(err, errors.ErrCodeEmptyResult) {
		t.Errorf("Project() error = %v, want EMPTY_RESULT", err)
	}
	if _, err := Project(nil, GranuleFields); !errors.Is(err, errors.ErrCodeEmptyResult) {
		t.Errorf("Project(nil) error = %v, want EMPTY_RESULT", err)
	}
}

func TestRecordsLen(t *testing.T) {
	r := decodeResponse(t, `{"items":[{"meta":{}},{"meta":{}},{"meta":{}}]}`)
	recs, _ := Project(r, GranuleFields)
	if recs.Len() != 3 {
		t.Errorf("Len() = %d, want 3", recs.Len())
	}
}

func TestFromMaps(t *testing.T) {
	recs := FromMaps([]map[string]any{
		{"GranuleUR": "g", "concept-id": "G1", "extra": 1},
	}, GranuleFields)
	if names := recs[0].Names(); len(names) != 2 || names[0] != "concept-id" {
		t.Errorf("fields = %v", names)
	}
}
