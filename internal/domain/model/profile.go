// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"strings"
)

// ErrInvalidProfile marks a profile that cannot be stored.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile is a user's study profile as held by the profile store.
// Empty Department or CurrentYear means the attribute is absent.
type Profile struct {
	ID          string    `json:"_id"`
	FirstName   string    `json:"firstname"`
	LastName    string    `json:"lastname"`
	Email       string    `json:"email,omitempty"`
	Department  string    `json:"dept"`
	CurrentYear string    `json:"current_year"`
	Classes     StringSet `json:"classes"`
	Interests   StringSet `json:"interests"`
	Mentor      bool      `json:"mentor"`
}

// Clone returns a deep copy so callers cannot share set storage.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Classes = NewStringSet(p.Classes.Values()...)
	c.Interests = NewStringSet(p.Interests.Values()...)
	return &c
}

// Validate checks the fields a store requires.
func (p *Profile) Validate() error {
	if p == nil {
		return errors.New("profile is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return errors.Join(ErrInvalidProfile, errors.New("missing id"))
	}
	return nil
}
