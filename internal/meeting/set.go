package meeting

import (
	"encoding/json"
	"sort"
)

// Set is a set of attendee identifiers.
type Set map[string]struct{}

// NewSet returns a set holding the given names. Duplicates collapse.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports whether name is in s.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names.
func (s Set) Len() int { return len(s) }

// Intersects reports whether s and o share at least one name.
func (s Set) Intersects(o Set) bool {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	for n := range small {
		if large.Contains(n) {
			return true
		}
	}
	return false
}

// Union returns a new set with the names of both s and o.
func (s Set) Union(o Set) Set {
	u := make(Set, len(s)+len(o))
	for n := range s {
		u[n] = struct{}{}
	}
	for n := range o {
		u[n] = struct{}{}
	}
	return u
}

// Sorted returns the names in ascending order.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON encodes the set as a sorted array of names.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON reads an array of names; duplicates collapse.
func (s *Set) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSet(names...)
	return nil
}
