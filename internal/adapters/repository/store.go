// Package repository stores study profiles and hands them to the matcher.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/studybuddy/internal/domain/model"
)

// Store driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Store provides read/write access to profiles.
type Store interface {
	// Get returns the profile with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Profile, error)

	// Create inserts a new profile. Returns ErrExists if the id is taken.
	Create(ctx context.Context, p *model.Profile) error

	// Put inserts or replaces a profile.
	Put(ctx context.Context, p *model.Profile) error

	// Delete removes a profile. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// ListExcept returns every profile other than id in insertion order.
	ListExcept(ctx context.Context, id string) ([]*model.Profile, error)

	// Count returns the number of stored profiles.
	Count(ctx context.Context) int

	// Close releases resources held by the store.
	Close() error
}

// Open creates a Store for the named driver. path is used by the sqlite driver.
func Open(ctx context.Context, driver, path string, opts ...Option) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverSQLite:
		return NewSQLiteStore(ctx, path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, driver)
	}
}
