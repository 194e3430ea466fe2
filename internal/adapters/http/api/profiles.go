package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/studybuddy/internal/app"
	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/types"
)

// ProfileDependencies defines the interface for profile operations.
type ProfileDependencies interface {
	CreateProfile(ctx context.Context, p *model.Profile) (*model.Profile, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, p *model.Profile) (*model.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// ProfilesHandler handles profile CRUD requests.
type ProfilesHandler struct {
	deps ProfileDependencies
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(deps ProfileDependencies) *ProfilesHandler {
	return &ProfilesHandler{deps: deps}
}

// profileRequest mirrors the JSON body for profile writes.
type profileRequest struct {
	ID          string          `json:"_id" validate:"omitempty,max=128"`
	FirstName   string          `json:"firstname" validate:"max=100"`
	LastName    string          `json:"lastname" validate:"max=100"`
	Email       string          `json:"email" validate:"omitempty,email"`
	Department  string          `json:"dept" validate:"max=100"`
	CurrentYear string          `json:"current_year" validate:"max=50"`
	Classes     model.StringSet `json:"classes"`
	Interests   model.StringSet `json:"interests"`
	Mentor      bool            `json:"mentor"`
}

func (p profileRequest) toModel() *model.Profile {
	return &model.Profile{
		ID:          strings.TrimSpace(p.ID),
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Department:  p.Department,
		CurrentYear: p.CurrentYear,
		Classes:     p.Classes,
		Interests:   p.Interests,
		Mentor:      p.Mentor,
	}
}

// publicProfile drops private fields such as email.
func publicProfile(p *model.Profile) types.PublicProfile {
	return types.PublicProfile{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Department:  p.Department,
		CurrentYear: p.CurrentYear,
		Classes:     p.Classes.Values(),
		Interests:   p.Interests.Values(),
		Mentor:      p.Mentor,
	}
}

func (h *ProfilesHandler) decode(w http.ResponseWriter, r *http.Request, op string) (*model.Profile, error) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	if err := validateStruct(req); err != nil {
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	return req.toModel(), nil
}

// HandleCreate handles POST /api/profiles.
func (h *ProfilesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_profile"
	p, err := h.decode(w, r, op)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	created, err := h.deps.CreateProfile(r.Context(), p)
	if errors.Is(err, service.ErrProfileExists) {
		writeServiceError(w, WrapKind(op, ErrConflict, err))
		return
	}
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/api/profiles/"+created.ID)
	writeJSON(w, http.StatusCreated, publicProfile(created))
}

// HandleGet handles GET /api/profiles/{id}.
func (h *ProfilesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	p, err := h.deps.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, publicProfile(p))
}

// HandleUpdate handles PUT /api/profiles/{id}. A body id must match the path.
func (h *ProfilesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_profile"
	id := r.PathValue("id")
	p, err := h.decode(w, r, op)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if p.ID != "" && p.ID != id {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("body id does not match path")))
		return
	}
	p.ID = id
	updated, err := h.deps.UpdateProfile(r.Context(), p)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, publicProfile(updated))
}

// HandleDelete handles DELETE /api/profiles/{id}.
func (h *ProfilesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_profile"
	if err := h.deps.DeleteProfile(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
