package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/attendance-tracker/internal/application"
)

type locationService interface {
	CreateLocation(ctx context.Context, params application.CreateLocationParams) (application.WorkLocation, error)
	UpdateLocation(ctx context.Context, params application.UpdateLocationParams) (application.WorkLocation, error)
	DeleteLocation(ctx context.Context, principal application.Principal, locationID string) error
	GetLocation(ctx context.Context, principal application.Principal, locationID string) (application.WorkLocation, error)
	ListLocations(ctx context.Context, principal application.Principal, includeInactive bool) ([]application.WorkLocation, error)
	CreateArea(ctx context.Context, params application.CreateAreaParams) (application.OfficeArea, error)
	UpdateArea(ctx context.Context, params application.UpdateAreaParams) (application.OfficeArea, error)
	DeleteArea(ctx context.Context, principal application.Principal, areaID string) error
	ListAreas(ctx context.Context, principal application.Principal, locationID string, includeInactive bool) ([]application.OfficeArea, error)
}

// LocationHandler serves /locations and /areas.
type LocationHandler struct {
	service   locationService
	responder responder
	logger    *slog.Logger
}

func NewLocationHandler(service locationService, logger *slog.Logger) *LocationHandler {
	base := defaultLogger(logger)
	return &LocationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *LocationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "LocationHandler", operation, attrs...)
}

func (h *LocationHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	location, err := h.service.CreateLocation(r.Context(), application.CreateLocationParams{Principal: principal, Input: req.toInput()})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.log(r.Context(), "CreateLocation").InfoContext(r.Context(), "location created", "location_id", location.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, locationResponse{Location: toLocationDTO(location)})
}

func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id := pathID(r, "id")
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	location, err := h.service.UpdateLocation(r.Context(), application.UpdateLocationParams{Principal: principal, LocationID: id, Input: req.toInput()})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, locationResponse{Location: toLocationDTO(location)})
}

func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteLocation(r.Context(), principal, pathID(r, "id")); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	location, err := h.service.GetLocation(r.Context(), principal, pathID(r, "id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, locationResponse{Location: toLocationDTO(location)})
}

func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	locations, err := h.service.ListLocations(r.Context(), principal, queryBool(r, "include_inactive"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]locationDTO, 0, len(locations))
	for _, l := range locations {
		out = append(out, toLocationDTO(l))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listLocationsResponse{Locations: out})
}

func (h *LocationHandler) CreateArea(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req areaRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input := req.toInput()
	if input.LocationID == "" {
		input.LocationID = pathID(r, "id")
	}

	area, err := h.service.CreateArea(r.Context(), application.CreateAreaParams{Principal: principal, Input: input})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.log(r.Context(), "CreateArea").InfoContext(r.Context(), "office area created", "area_id", area.ID, "location_id", area.LocationID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, areaResponse{Area: toAreaDTO(area)})
}

func (h *LocationHandler) UpdateArea(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id := pathID(r, "id")
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req areaRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	area, err := h.service.UpdateArea(r.Context(), application.UpdateAreaParams{Principal: principal, AreaID: id, Input: req.toInput()})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, areaResponse{Area: toAreaDTO(area)})
}

func (h *LocationHandler) DeleteArea(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteArea(r.Context(), principal, pathID(r, "id")); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListAreas handles GET /locations/{id}/areas.
func (h *LocationHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	areas, err := h.service.ListAreas(r.Context(), principal, pathID(r, "id"), queryBool(r, "include_inactive"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]areaDTO, 0, len(areas))
	for _, a := range areas {
		out = append(out, toAreaDTO(a))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAreasResponse{Areas: out})
}

type locationRequest struct {
	Name         string  `json:"name"`
	Address      *string `json:"address"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	Active       *bool   `json:"active"`
}

func (r locationRequest) toInput() application.WorkLocationInput {
	return application.WorkLocationInput{
		Name:         r.Name,
		Address:      r.Address,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		RadiusMeters: r.RadiusMeters,
		Active:       r.Active,
	}
}

type locationDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Address      *string `json:"address,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toLocationDTO(l application.WorkLocation) locationDTO {
	return locationDTO{
		ID:           l.ID,
		Name:         l.Name,
		Address:      l.Address,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		RadiusMeters: l.RadiusMeters,
		Active:       l.Active,
		CreatedAt:    formatTime(l.CreatedAt),
		UpdatedAt:    formatTime(l.UpdatedAt),
	}
}

type locationResponse struct {
	Location locationDTO `json:"location"`
}

type listLocationsResponse struct {
	Locations []locationDTO `json:"locations"`
}

type areaRequest struct {
	LocationID       string  `json:"location_id"`
	Name             string  `json:"name"`
	Description      *string `json:"description"`
	GuidelineMinutes *int    `json:"guideline_minutes"`
	Active           *bool   `json:"active"`
}

func (r areaRequest) toInput() application.OfficeAreaInput {
	return application.OfficeAreaInput{
		LocationID:       r.LocationID,
		Name:             r.Name,
		Description:      r.Description,
		GuidelineMinutes: r.GuidelineMinutes,
		Active:           r.Active,
	}
}

type areaDTO struct {
	ID               string  `json:"id"`
	LocationID       string  `json:"location_id"`
	Name             string  `json:"name"`
	Description      *string `json:"description,omitempty"`
	GuidelineMinutes *int    `json:"guideline_minutes,omitempty"`
	Active           bool    `json:"active"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func toAreaDTO(a application.OfficeArea) areaDTO {
	return areaDTO{
		ID:               a.ID,
		LocationID:       a.LocationID,
		Name:             a.Name,
		Description:      a.Description,
		GuidelineMinutes: a.GuidelineMinutes,
		Active:           a.Active,
		CreatedAt:        formatTime(a.CreatedAt),
		UpdatedAt:        formatTime(a.UpdatedAt),
	}
}

type areaResponse struct {
	Area areaDTO `json:"area"`
}

type listAreasResponse struct {
	Areas []areaDTO `json:"areas"`
}
