package model

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ErrInvalidSet is returned when a stored or decoded set cannot be read.
var ErrInvalidSet = errors.New("invalid string set")

// StringSet is a set of strings that remembers first-seen order.
//
// Profile attributes such as classes and interests arrive as a missing value,
// a single scalar, or a list. StringSet is the one place where that shape is
// normalized: missing becomes empty, a scalar becomes a one-element set, a
// list is used as-is with duplicates collapsed. Blank members, including JSON
// nulls inside a list, are dropped so they never count as shared items.
type StringSet struct {
	order []string
	index map[string]struct{}
}

// NewStringSet builds a set from values, dropping duplicates and blanks.
func NewStringSet(values ...string) StringSet {
	var s StringSet
	for _, v := range values {
		s.add(v)
	}
	return s
}

func (s *StringSet) add(v string) {
	if strings.TrimSpace(v) == "" {
		return
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = struct{}{}
	s.order = append(s.order, v)
}

// Len returns the number of distinct elements.
func (s StringSet) Len() int { return len(s.order) }

// Contains reports whether v is in the set.
func (s StringSet) Contains(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Values returns a copy of the distinct elements in first-seen order.
func (s StringSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Intersect returns the number of distinct elements present in both sets.
func (s StringSet) Intersect(other StringSet) int {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	n := 0
	for _, v := range small.order {
		if large.Contains(v) {
			n++
		}
	}
	return n
}

// MarshalJSON always encodes the set as an array.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON accepts null, a string, or an array of strings.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	*s = StringSet{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSet, err)
		}
		*s = NewStringSet(v)
		return nil
	}
	var vs []string
	if err := json.Unmarshal(data, &vs); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSet, err)
	}
	*s = NewStringSet(vs...)
	return nil
}

// Value stores the set as JSON text.
func (s StringSet) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a set stored as JSON text. NULL scans to an empty set.
func (s *StringSet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StringSet{}
		return nil
	case string:
		return s.UnmarshalJSON([]byte(v))
	case []byte:
		return s.UnmarshalJSON(v)
	default:
		return fmt.Errorf("%w: unsupported column type %T", ErrInvalidSet, src)
	}
}
