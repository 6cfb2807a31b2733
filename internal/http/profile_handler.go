package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/attendance-tracker/internal/application"
)

type profileService interface {
	CreateProfile(ctx context.Context, params application.CreateProfileParams) (application.Profile, error)
	UpdateProfile(ctx context.Context, params application.UpdateProfileParams) (application.Profile, error)
	DeleteProfile(ctx context.Context, principal application.Principal, profileID string) error
	GetProfile(ctx context.Context, principal application.Principal, profileID string) (application.Profile, error)
	ListProfiles(ctx context.Context, principal application.Principal, activeOnly bool) ([]application.Profile, error)
}

// ProfileHandler serves /profiles.
type ProfileHandler struct {
	service   profileService
	responder responder
	logger    *slog.Logger
}

func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	base := defaultLogger(logger)
	return &ProfileHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProfileHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ProfileHandler", operation, attrs...)
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	profile, err := h.service.CreateProfile(r.Context(), application.CreateProfileParams{Principal: principal, Input: req.toInput()})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Create", "principal_id", principal.UserID).InfoContext(r.Context(), "profile created", "profile_id", profile.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, profileResponse{Profile: toProfileDTO(profile)})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := pathID(r, "id")
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), application.UpdateProfileParams{Principal: principal, ProfileID: id, Input: req.toInput()})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, profileResponse{Profile: toProfileDTO(profile)})
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := pathID(r, "id")
	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteProfile(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Delete", "principal_id", principal.UserID).InfoContext(r.Context(), "profile deleted", "profile_id", id)
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	profile, err := h.service.GetProfile(r.Context(), principal, pathID(r, "id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, profileResponse{Profile: toProfileDTO(profile)})
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	profiles, err := h.service.ListProfiles(r.Context(), principal, queryBool(r, "active"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]profileDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileDTO(p))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listProfilesResponse{Profiles: out})
}

type profileRequest struct {
	Email      string  `json:"email"`
	FullName   string  `json:"full_name"`
	Role       string  `json:"role"`
	Department *string `json:"department"`
	Active     *bool   `json:"active"`
	Password   string  `json:"password"`
}

func (r profileRequest) toInput() application.ProfileInput {
	return application.ProfileInput{
		Email:      r.Email,
		FullName:   r.FullName,
		Role:       application.Role(strings.ToLower(strings.TrimSpace(r.Role))),
		Department: r.Department,
		Active:     r.Active,
		Password:   r.Password,
	}
}

type profileResponse struct {
	Profile profileDTO `json:"profile"`
}

type listProfilesResponse struct {
	Profiles []profileDTO `json:"profiles"`
}

type profileDTO struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	FullName   string  `json:"full_name"`
	Role       string  `json:"role"`
	Department *string `json:"department,omitempty"`
	Active     bool    `json:"active"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toProfileDTO(p application.Profile) profileDTO {
	return profileDTO{
		ID:         p.ID,
		Email:      p.Email,
		FullName:   p.FullName,
		Role:       string(p.Role),
		Department: p.Department,
		Active:     p.Active,
		CreatedAt:  formatTime(p.CreatedAt),
		UpdatedAt:  formatTime(p.UpdatedAt),
	}
}
