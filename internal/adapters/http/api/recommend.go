package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/studybuddy/internal/domain/types"
)

// RecommendationDependencies defines the interface for recommendation operations.
type RecommendationDependencies interface {
	RecommendFor(ctx context.Context, userID string, limit int) (types.RecommendationResult, error)
	RecommendBatch(ctx context.Context, userIDs []string, limit int) ([]types.BatchEntry, error)
}

// RecommendHandler handles study buddy recommendation requests.
type RecommendHandler struct {
	deps RecommendationDependencies
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(deps RecommendationDependencies) *RecommendHandler {
	return &RecommendHandler{deps: deps}
}

type recommendQuery struct {
	UserID string `validate:"required"`
	Limit  int    `validate:"min=0"`
}

// batchRequest accepts at most 100 requesters.
type batchRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,max=100,dive,required"`
	Limit   int      `json:"limit" validate:"min=0"`
}

type batchResponse struct {
	Results []types.BatchEntry `json:"results"`
}

// HandleRecommend handles GET /api/users/recommend-buddies?user_id=ID&limit=N.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend"
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	q := recommendQuery{
		UserID: strings.TrimSpace(r.URL.Query().Get("user_id")),
		Limit:  limit,
	}
	if err := validateStruct(q); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.RecommendFor(r.Context(), q.UserID, q.Limit)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleBatch handles POST /api/users/recommend-buddies/batch.
func (h *RecommendHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend_batch"
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	entries, err := h.deps.RecommendBatch(r.Context(), req.UserIDs, req.Limit)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: entries})
}
