// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
//
// The service resolves the requester and candidate profiles from the store,
// hands them to the matcher and shapes the reply. The matcher itself never
// touches storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	repository "github.com/okian/studybuddy/internal/adapters/repository"
	"github.com/okian/studybuddy/internal/domain/matching"
	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/types"
	"github.com/okian/studybuddy/pkg/logger"
	"github.com/okian/studybuddy/pkg/metrics"
)

// NoCandidatesMessage is returned when nobody else is available to match.
const NoCandidatesMessage = "No available study buddies at the moment."

// Default service configuration constants.
const (
	defaultMaxLimit = 50
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrInvalidUserID = errors.New("invalid user id")
	ErrProfileExists = errors.New("profile already exists")
)

// Service implements the API dependencies for the recommendation system.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	matcher *matching.Matcher

	// Configuration
	storeDriver      string
	sqlitePath       string
	storeMetrics     bool
	defaultLimit     int
	maxLimit         int
	batchConcurrency int

	// State
	ownsStore bool
	started   bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects a profile store. The caller keeps ownership of it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStoreDriver selects the store Start opens when none was injected.
func WithStoreDriver(driver, path string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
			s.sqlitePath = path
		}
	}
}

// WithStoreMetrics toggles metrics on the store Start opens.
func WithStoreMetrics(enabled bool) Option {
	return func(s *Service) {
		s.storeMetrics = enabled
	}
}

// WithMatcher sets the matcher used for ranking.
func WithMatcher(m *matching.Matcher) Option {
	return func(s *Service) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithDefaultLimit sets the limit used when a request passes 0.
func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithMaxLimit caps the limit a request may use.
func WithMaxLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithBatchConcurrency bounds the number of requesters ranked in parallel.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		matcher:          matching.NewMatcher(matching.WithExcludeRequester(true)),
		storeDriver:      repository.DriverMemory,
		storeMetrics:     true,
		defaultLimit:     matching.DefaultLimit,
		maxLimit:         defaultMaxLimit,
		batchConcurrency: runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}

	return s
}

// Start opens the profile store if one was not injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recommendation service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.storeDriver, s.sqlitePath, repository.WithMetrics(s.storeMetrics))
		if err != nil {
			return fmt.Errorf("open profile store: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}

	metrics.UpdateProfilesTotal(s.store.Count(ctx))

	s.started = true
	w := s.matcher.Weights()
	s.logger.Info(ctx, "recommendation service started",
		logger.String("storeDriver", s.storeDriver),
		logger.Int("defaultLimit", s.defaultLimit),
		logger.Int("maxLimit", s.maxLimit),
		logger.Int("batchConcurrency", s.batchConcurrency),
		logger.Any("weights", w),
	)

	return nil
}

// Stop releases the store when the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping recommendation service...")

	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing profile store failed", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(ctx, "recommendation service stopped")
}

func (s *Service) activeStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// resolveLimit maps a request limit onto the configured bounds.
func (s *Service) resolveLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	case limit == 0:
		return s.defaultLimit, nil
	case limit > s.maxLimit:
		return s.maxLimit, nil
	default:
		return limit, nil
	}
}

// RecommendFor ranks every other profile against userID's profile.
// limit 0 selects the default limit; larger values are capped at the maximum.
func (s *Service) RecommendFor(ctx context.Context, userID string, limit int) (types.RecommendationResult, error) {
	start := time.Now()
	result, err := s.recommendFor(ctx, userID, limit)
	metrics.RecordRecommendationLatency(float64(time.Since(start).Microseconds()) / 1000)

	switch {
	case err == nil && result.Message != "":
		metrics.RecordRecommendationRequest("empty")
	case err == nil:
		metrics.RecordRecommendationRequest("ok")
	case errors.Is(err, repository.ErrNotFound):
		metrics.RecordRecommendationRequest("not_found")
	default:
		metrics.RecordRecommendationRequest("error")
	}
	return result, err
}

func (s *Service) recommendFor(ctx context.Context, userID string, limit int) (types.RecommendationResult, error) {
	store, err := s.activeStore()
	if err != nil {
		return types.RecommendationResult{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return types.RecommendationResult{}, ErrInvalidUserID
	}
	n, err := s.resolveLimit(limit)
	if err != nil {
		return types.RecommendationResult{}, err
	}

	requester, err := store.Get(ctx, userID)
	if err != nil {
		return types.RecommendationResult{}, fmt.Errorf("resolve requester %q: %w", userID, err)
	}

	candidates, err := store.ListExcept(ctx, userID)
	if err != nil {
		return types.RecommendationResult{}, fmt.Errorf("list candidates: %w", err)
	}
	metrics.RecordCandidatesScored(len(candidates))

	if len(candidates) == 0 {
		metrics.RecordEmptyRecommendation()
		s.logger.Debug(ctx, "no candidates available", logger.String("requester", userID))
		return types.RecommendationResult{Message: NoCandidatesMessage}, nil
	}

	recs, err := s.matcher.Recommend(requester, candidates, n)
	if err != nil {
		return types.RecommendationResult{}, err
	}

	s.logger.Debug(ctx, "ranked candidates",
		logger.String("requester", userID),
		logger.Int("candidates", len(candidates)),
		logger.Int("returned", len(recs)),
	)
	return types.RecommendationResult{Recommendations: recs}, nil
}

// RecommendBatch ranks candidates for each user id with bounded parallelism.
// Per-user failures are reported in the entry; the call fails only when ctx ends.
func (s *Service) RecommendBatch(ctx context.Context, userIDs []string, limit int) ([]types.BatchEntry, error) {
	if _, err := s.activeStore(); err != nil {
		return nil, err
	}
	if _, err := s.resolveLimit(limit); err != nil {
		return nil, err
	}
	metrics.RecordBatchSize(len(userIDs))

	out := make([]types.BatchEntry, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)

	for i, id := range userIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.RecommendFor(gctx, id, limit)
			entry := types.BatchEntry{UserID: id, RecommendationResult: res}
			if err != nil {
				entry.Error = err.Error()
			}
			out[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProfile stores a new profile, generating an id when none is given.
func (s *Service) CreateProfile(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	store, err := s.activeStore()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.ErrInvalidProfile
	}
	created := p.Clone()
	if strings.TrimSpace(created.ID) == "" {
		created.ID = uuid.NewString()
	}
	if err := store.Create(ctx, created); err != nil {
		if errors.Is(err, repository.ErrExists) {
			return nil, fmt.Errorf("%w: %s", ErrProfileExists, created.ID)
		}
		return nil, err
	}
	s.logger.Info(ctx, "profile created", logger.String("id", created.ID))
	return created, nil
}

// GetProfile returns the stored profile for id.
func (s *Service) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	store, err := s.activeStore()
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, id)
}

// UpdateProfile replaces an existing profile.
func (s *Service) UpdateProfile(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	store, err := s.activeStore()
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := store.Get(ctx, p.ID); err != nil {
		return nil, err
	}
	if err := store.Put(ctx, p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// DeleteProfile removes the profile for id.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	store, err := s.activeStore()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "profile deleted", logger.String("id", id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := s.matcher.Weights()
	stats := map[string]interface{}{
		"started":          s.started,
		"storeDriver":      s.storeDriver,
		"defaultLimit":     s.defaultLimit,
		"maxLimit":         s.maxLimit,
		"batchConcurrency": s.batchConcurrency,
		"weights": map[string]float64{
			"department":      w.Department,
			"year":            w.Year,
			"shared_class":    w.SharedClass,
			"shared_interest": w.SharedInterest,
			"mentor":          w.Mentor,
		},
	}

	if s.started {
		count := s.store.Count(context.Background())
		stats["totalProfiles"] = count
		metrics.UpdateProfilesTotal(count)
	}

	return stats
}
