// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	repository "github.com/okian/studybuddy/internal/adapters/repository"
	service "github.com/okian/studybuddy/internal/app"
	"github.com/okian/studybuddy/internal/domain/matching"
	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/pkg/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecommendationDependencies
	ProfileDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recommendHandler *RecommendHandler
	profilesHandler  *ProfilesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		recommendHandler: NewRecommendHandler(deps),
		profilesHandler:  NewProfilesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/users/recommend-buddies", MetricsMiddleware(s.recommendHandler.HandleRecommend, "recommend"))
	mux.HandleFunc("POST /api/users/recommend-buddies/batch", MetricsMiddleware(s.recommendHandler.HandleBatch, "recommend_batch"))

	mux.HandleFunc("POST /api/profiles", MetricsMiddleware(s.profilesHandler.HandleCreate, "profiles_create"))
	mux.HandleFunc("GET /api/profiles/{id}", MetricsMiddleware(s.profilesHandler.HandleGet, "profiles_get"))
	mux.HandleFunc("PUT /api/profiles/{id}", MetricsMiddleware(s.profilesHandler.HandleUpdate, "profiles_update"))
	mux.HandleFunc("DELETE /api/profiles/{id}", MetricsMiddleware(s.profilesHandler.HandleDelete, "profiles_delete"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validateStruct runs struct tag validation on v.
func validateStruct(v any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate.Struct(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBadRequest),
		errors.As(err, &verrs),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, model.ErrInvalidProfile),
		errors.Is(err, model.ErrInvalidSet),
		errors.Is(err, matching.ErrInvalidRequester):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		logger.Named("api").Error(context.Background(), "request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
