package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/pkg/metrics"
)

// MemoryStore is an in-memory Store. Profiles are copied on the way in and
// out so callers never share set storage with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*model.Profile
	order  []string
	closed bool
	opts   options
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{
		byID:  make(map[string]*model.Profile, o.capacity),
		order: make([]string, 0, o.capacity),
		opts:  o,
	}
}

// Get returns the profile with id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Profile, error) {
	defer s.observe("get", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// Create inserts p unless its id is already stored.
func (s *MemoryStore) Create(ctx context.Context, p *model.Profile) error {
	defer s.observe("create", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.byID[p.ID]; ok {
		return ErrExists
	}
	s.order = append(s.order, p.ID)
	s.byID[p.ID] = p.Clone()
	s.reportCount()
	return nil
}

// Put inserts or replaces a profile. Replacing keeps the original position.
func (s *MemoryStore) Put(ctx context.Context, p *model.Profile) error {
	defer s.observe("put", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.byID[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.byID[p.ID] = p.Clone()
	s.reportCount()
	return nil
}

// Delete removes a profile.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	defer s.observe("delete", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.reportCount()
	return nil
}

// ListExcept returns all profiles other than id in insertion order.
func (s *MemoryStore) ListExcept(ctx context.Context, id string) ([]*model.Profile, error) {
	defer s.observe("list", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]*model.Profile, 0, len(s.order))
	for _, pid := range s.order {
		if pid == id {
			continue
		}
		out = append(out, s.byID[pid].Clone())
	}
	return out, nil
}

// Count returns the number of stored profiles.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Close marks the store closed. Subsequent calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// reportCount must be called with the write lock held.
func (s *MemoryStore) reportCount() {
	if s.opts.metrics {
		metrics.UpdateProfilesTotal(len(s.byID))
	}
}

func (s *MemoryStore) observe(op string, start time.Time) {
	if s.opts.metrics {
		metrics.RecordStoreQueryLatency(DriverMemory, op, float64(time.Since(start).Microseconds())/1000)
	}
}
