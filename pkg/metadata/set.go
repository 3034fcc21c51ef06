package metadata

import (
	"encoding/json"
	"fmt"
)

// Set accumulates the values seen for one key across the sub-records of a
// list. Members keep first-insertion order and duplicates are collapsed.
//
// Members may be any JSON value, including objects and arrays; identity is
// the canonical JSON encoding of the member (encoding/json sorts object
// keys), so {"a":1,"b":2} and {"b":2,"a":1} are the same member.
//
// The zero value is an empty set ready to use. A Set is not safe for
// concurrent mutation.
type Set struct {
	keys   map[string]int
	values []any
}

// NewSet returns a set holding vals.
func NewSet(vals ...any) *Set {
	s := &Set{}
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

// Add inserts v if it is not already a member. Adding a *Set adds each of
// its members instead of nesting the set.
func (s *Set) Add(v any) {
	if other, ok := v.(*Set); ok {
		if other == s {
			return
		}
		for _, m := range other.values {
			s.Add(m)
		}
		return
	}
	k := memberKey(v)
	if s.keys == nil {
		s.keys = make(map[string]int)
	}
	if _, ok := s.keys[k]; ok {
		return
	}
	s.keys[k] = len(s.values)
	s.values = append(s.values, v)
}

// Union adds every member of other to s.
func (s *Set) Union(other *Set) {
	if other != nil {
		s.Add(other)
	}
}

// Contains reports whether v is a member.
func (s *Set) Contains(v any) bool {
	if s == nil || s.keys == nil {
		return false
	}
	_, ok := s.keys[memberKey(v)]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Values returns the members in insertion order. The slice is a copy.
func (s *Set) Values() []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s.values))
	copy(out, s.values)
	return out
}

// MarshalJSON encodes the set as a JSON array in insertion order.
func (s *Set) MarshalJSON() ([]byte, error) {
	if s == nil || len(s.values) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(s.values)
}

// String formats the members like a Go slice.
func (s *Set) String() string {
	return fmt.Sprint(s.Values())
}

func memberKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Values decoded from JSON always marshal; anything else is keyed by
		// its Go representation.
		return fmt.Sprintf("%T:%#v", v, v)
	}
	return string(b)
}
