package cmr

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/simplecmr/pkg/errors"
)

const (
	MinResults        = 1    // Smallest accepted page size
	MaxResults        = 2000 // Largest page size CMR accepts
	DefaultMaxResults = 10   // Page size used when none is given on the command line
)

// Request parameter names.
const (
	ParamPageSize        = "page_size"
	ParamProcessingLevel = "processing_level_id"
	ParamTemporal        = "temporal"
	ParamBoundingBox     = "bounding_box"
	ParamConceptID       = "concept_id"
	ParamShortName       = "short_name"
	ParamTopic           = "science_keywords[0][topic]"
	ParamTerm            = "science_keywords[0][term]"
	ParamVariable        = "science_keywords[0][variable_level_1]"
)

// ProcessingLevels lists the accepted processing level ids.
var ProcessingLevels = []string{"1A", "1B", "2", "3", "4"}

// Filter holds the user-facing search criteria. Zero-valued fields are
// omitted from the query, except MaxResults which must be set.
type Filter struct {
	BoundingBox      []string // West, south, east, north; empty for no spatial filter
	StartTime        string   // Date token, see DecodeDate
	EndTime          string   // Date token, see DecodeDate
	ProcessingLevels []string // Subset of ProcessingLevels
	ConceptID        string   // Takes precedence over ShortName
	ShortName        string
	Topic            string // Science keyword topic
	Term             string // Science keyword term
	Variable         string // Science keyword variable (level 1)
	MaxResults       int    // Page size, 1 to 2000 inclusive
}

// Query is a validated set of search request parameters.
type Query struct {
	Params   url.Values
	Warnings []string // Non-fatal diagnostics produced while building
}

// Build validates f and translates it into request parameters. Building
// is deterministic and makes no network calls.
//
// Returns a validation error (see errors.IsValidation) when MaxResults is
// out of range, a processing level is unknown, a date token cannot be
// decoded, or the bounding box is malformed. Setting both ConceptID and
// ShortName is not an error: ConceptID is used and a warning is recorded.
func (f Filter) Build() (*Query, error) {
	q := &Query{Params: url.Values{}}

	if f.MaxResults < MinResults || f.MaxResults > MaxResults {
		return nil, errors.New(errors.ErrCodeOutOfRange,
			"max results %d must be between %d and %d", f.MaxResults, MinResults, MaxResults)
	}
	q.Params.Set(ParamPageSize, strconv.Itoa(f.MaxResults))

	for _, lvl := range f.ProcessingLevels {
		if !slices.Contains(ProcessingLevels, lvl) {
			return nil, errors.New(errors.ErrCodeInvalidProcessingLevel,
				"invalid processing level %q, valid options are %s", lvl, strings.Join(ProcessingLevels, ", "))
		}
		q.Params.Add(ParamProcessingLevel, lvl)
	}

	if f.StartTime != "" || f.EndTime != "" {
		temporal, err := temporalRange(f.StartTime, f.EndTime)
		if err != nil {
			return nil, err
		}
		q.Params.Set(ParamTemporal, temporal)
	}

	if len(f.BoundingBox) > 0 {
		bbox, err := boundingBox(f.BoundingBox)
		if err != nil {
			return nil, err
		}
		q.Params.Set(ParamBoundingBox, bbox)
	}

	setIf(q.Params, ParamTopic, f.Topic)
	setIf(q.Params, ParamTerm, f.Term)
	setIf(q.Params, ParamVariable, f.Variable)

	switch {
	case f.ConceptID != "":
		q.Params.Set(ParamConceptID, f.ConceptID)
		if f.ShortName != "" {
			q.Warnings = append(q.Warnings,
				"concept id and short name are mutually exclusive, using concept id for search")
		}
	case f.ShortName != "":
		q.Params.Set(ParamShortName, f.ShortName)
	}

	return q, nil
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func temporalRange(start, end string) (string, error) {
	var parts [2]string
	for i, tok := range []string{start, end} {
		if tok == "" {
			continue
		}
		t, err := DecodeDate(tok)
		if err != nil {
			return "", err
		}
		parts[i] = t.Format(TemporalLayout)
	}
	return parts[0] + "," + parts[1], nil
}

func boundingBox(coords []string) (string, error) {
	if len(coords) != 4 {
		return "", errors.New(errors.ErrCodeInvalidSpatialExtent,
			"bounding box needs 4 coordinates (west, south, east, north), got %d", len(coords))
	}
	out := make([]string, len(coords))
	for i, c := range coords {
		s := strings.TrimSpace(c)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidSpatialExtent, err,
				"error parsing bounding box coordinate %q", c)
		}
		out[i] = s
	}
	return strings.Join(out, ","), nil
}

// SplitBoundingBox splits a comma-separated "west,south,east,north" string
// into its coordinates. An empty string yields nil.
func SplitBoundingBox(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Encode returns the URL-encoded query string.
func (q *Query) Encode() string {
	return q.Params.Encode()
}

// String renders the parameters as indented JSON. Single-valued parameters
// are shown as strings, repeated ones as lists.
func (q *Query) String() string {
	m := make(map[string]any, len(q.Params))
	for k, vs := range q.Params {
		if len(vs) == 1 {
			m[k] = vs[0]
		} else {
			m[k] = vs
		}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", q.Params)
	}
	return string(data)
}
