package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/example/attendance-tracker/internal/geofence"
)

// LocationRepository captures persistence operations for work locations and office areas.
type LocationRepository interface {
	CreateLocation(ctx context.Context, location WorkLocation) (WorkLocation, error)
	GetLocation(ctx context.Context, id string) (WorkLocation, error)
	UpdateLocation(ctx context.Context, location WorkLocation) (WorkLocation, error)
	DeleteLocation(ctx context.Context, id string) error
	ListLocations(ctx context.Context, activeOnly bool) ([]WorkLocation, error)

	CreateArea(ctx context.Context, area OfficeArea) (OfficeArea, error)
	GetArea(ctx context.Context, id string) (OfficeArea, error)
	UpdateArea(ctx context.Context, area OfficeArea) (OfficeArea, error)
	DeleteArea(ctx context.Context, id string) error
	ListAreas(ctx context.Context, locationID string, activeOnly bool) ([]OfficeArea, error)
}

// LocationService manages work locations, their office areas, and the cached
// geofence set used by check-in and check-out.
type LocationService struct {
	locations   LocationRepository
	cache       *locationCache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewLocationService constructs a LocationService. A non-positive cacheTTL uses the default.
func NewLocationService(locations LocationRepository, idGenerator func() string, now func() time.Time, cacheTTL time.Duration) *LocationService {
	return NewLocationServiceWithLogger(locations, idGenerator, now, cacheTTL, nil)
}

// NewLocationServiceWithLogger constructs a LocationService with a logger.
func NewLocationServiceWithLogger(locations LocationRepository, idGenerator func() string, now func() time.Time, cacheTTL time.Duration, logger *slog.Logger) *LocationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &LocationService{
		locations:   locations,
		cache:       newLocationCache(cacheTTL, 0, now),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *LocationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "LocationService", operation, attrs...)
}

// CreateLocation validates and persists a new work location.
func (s *LocationService) CreateLocation(ctx context.Context, params CreateLocationParams) (location WorkLocation, err error) {
	if s == nil {
		return WorkLocation{}, fmt.Errorf("LocationService is nil")
	}
	logger := s.loggerWith(ctx, "CreateLocation", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "location creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "location created", "location_id", location.ID)
	}()

	if !params.Principal.IsAdmin() {
		return WorkLocation{}, ErrUnauthorized
	}

	input := normalizeLocationInput(params.Input)
	if err = validateLocationInput(input).orNil(); err != nil {
		return WorkLocation{}, err
	}

	location = WorkLocation{
		ID:           s.idGenerator(),
		Name:         input.Name,
		Address:      input.Address,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		RadiusMeters: input.RadiusMeters,
		Active:       boolOr(input.Active, true),
		CreatedAt:    s.now(),
	}
	location.UpdatedAt = location.CreatedAt

	if s.locations == nil {
		return location, nil
	}
	created, err := s.locations.CreateLocation(ctx, location)
	if err != nil {
		return WorkLocation{}, mapRepoError(err, "")
	}
	s.cache.Invalidate()
	return created, nil
}

// UpdateLocation replaces the attributes of an existing work location.
func (s *LocationService) UpdateLocation(ctx context.Context, params UpdateLocationParams) (location WorkLocation, err error) {
	if s == nil {
		return WorkLocation{}, fmt.Errorf("LocationService is nil")
	}
	logger := s.loggerWith(ctx, "UpdateLocation", "principal_id", params.Principal.UserID, "location_id", params.LocationID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "location update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "location updated")
	}()

	if !params.Principal.IsAdmin() {
		return WorkLocation{}, ErrUnauthorized
	}
	if s.locations == nil {
		return WorkLocation{}, fmt.Errorf("location repository not configured")
	}

	existing, err := s.locations.GetLocation(ctx, params.LocationID)
	if err != nil {
		return WorkLocation{}, mapRepoError(err, "")
	}

	input := normalizeLocationInput(params.Input)
	if err = validateLocationInput(input).orNil(); err != nil {
		return WorkLocation{}, err
	}

	updated := existing
	updated.Name = input.Name
	updated.Address = input.Address
	updated.Latitude = input.Latitude
	updated.Longitude = input.Longitude
	updated.RadiusMeters = input.RadiusMeters
	updated.Active = boolOr(input.Active, existing.Active)
	updated.UpdatedAt = s.now()

	location, err = s.locations.UpdateLocation(ctx, updated)
	if err != nil {
		return WorkLocation{}, mapRepoError(err, "")
	}
	s.cache.Invalidate()
	return location, nil
}

// DeleteLocation removes a work location and, through the schema, its office areas.
func (s *LocationService) DeleteLocation(ctx context.Context, principal Principal, locationID string) (err error) {
	if s == nil {
		return fmt.Errorf("LocationService is nil")
	}
	logger := s.loggerWith(ctx, "DeleteLocation", "principal_id", principal.UserID, "location_id", locationID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "location deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "location deleted")
	}()

	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.locations == nil {
		return fmt.Errorf("location repository not configured")
	}
	if err = s.locations.DeleteLocation(ctx, locationID); err != nil {
		return mapRepoError(err, "id")
	}
	s.cache.Invalidate()
	return nil
}

// GetLocation returns one work location to any authenticated principal.
func (s *LocationService) GetLocation(ctx context.Context, principal Principal, locationID string) (WorkLocation, error) {
	if s == nil {
		return WorkLocation{}, fmt.Errorf("LocationService is nil")
	}
	if !principal.Authenticated() {
		return WorkLocation{}, ErrUnauthorized
	}
	if s.locations == nil {
		return WorkLocation{}, fmt.Errorf("location repository not configured")
	}
	location, err := s.locations.GetLocation(ctx, locationID)
	if err != nil {
		return WorkLocation{}, mapRepoError(err, "")
	}
	if !location.Active && !principal.CanManage() {
		return WorkLocation{}, ErrNotFound
	}
	return location, nil
}

// ListLocations returns locations ordered by name. Only managers and
// administrators see inactive locations.
func (s *LocationService) ListLocations(ctx context.Context, principal Principal, includeInactive bool) ([]WorkLocation, error) {
	if s == nil {
		return nil, fmt.Errorf("LocationService is nil")
	}
	if !principal.Authenticated() {
		return nil, ErrUnauthorized
	}
	activeOnly := !includeInactive || !principal.CanManage()

	locations, err := s.listLocations(ctx, activeOnly)
	if err != nil {
		s.loggerWith(ctx, "ListLocations").ErrorContext(ctx, "location listing failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	sort.Slice(locations, func(i, j int) bool {
		if strings.EqualFold(locations[i].Name, locations[j].Name) {
			return locations[i].ID < locations[j].ID
		}
		return strings.ToLower(locations[i].Name) < strings.ToLower(locations[j].Name)
	})
	return locations, nil
}

// ActiveZones returns the geofence zones of every active location. Results
// are served from a TTL cache that location mutations invalidate.
func (s *LocationService) ActiveZones(ctx context.Context) ([]geofence.Zone, error) {
	if s == nil {
		return nil, fmt.Errorf("LocationService is nil")
	}
	locations, err := s.listLocations(ctx, true)
	if err != nil {
		return nil, err
	}
	zones := make([]geofence.Zone, 0, len(locations))
	for _, location := range locations {
		zones = append(zones, geofence.Zone{
			ID:           location.ID,
			Center:       geofence.Point{Latitude: location.Latitude, Longitude: location.Longitude},
			RadiusMeters: location.RadiusMeters,
		})
	}
	return zones, nil
}

func (s *LocationService) listLocations(ctx context.Context, activeOnly bool) ([]WorkLocation, error) {
	key := locationCacheKey(activeOnly)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	if s.locations == nil {
		return nil, nil
	}
	locations, err := s.locations.ListLocations(ctx, activeOnly)
	if err != nil {
		return nil, mapRepoError(err, "")
	}
	s.cache.Store(key, locations)
	return cloneLocations(locations), nil
}

// CreateArea validates and persists a new office area under an existing location.
func (s *LocationService) CreateArea(ctx context.Context, params CreateAreaParams) (area OfficeArea, err error) {
	if s == nil {
		return OfficeArea{}, fmt.Errorf("LocationService is nil")
	}
	logger := s.loggerWith(ctx, "CreateArea", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "area creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "area created", "area_id", area.ID, "location_id", area.LocationID)
	}()

	if !params.Principal.IsAdmin() {
		return OfficeArea{}, ErrUnauthorized
	}

	input := normalizeAreaInput(params.Input)
	if err = validateAreaInput(input).orNil(); err != nil {
		return OfficeArea{}, err
	}

	area = OfficeArea{
		ID:               s.idGenerator(),
		LocationID:       input.LocationID,
		Name:             input.Name,
		Description:      input.Description,
		GuidelineMinutes: input.GuidelineMinutes,
		Active:           boolOr(input.Active, true),
		CreatedAt:        s.now(),
	}
	area.UpdatedAt = area.CreatedAt

	if s.locations == nil {
		return area, nil
	}
	created, err := s.locations.CreateArea(ctx, area)
	if err != nil {
		return OfficeArea{}, mapRepoError(err, "location_id")
	}
	return created, nil
}

// UpdateArea replaces the attributes of an existing office area.
func (s *LocationService) UpdateArea(ctx context.Context, params UpdateAreaParams) (area OfficeArea, err error) {
	if s == nil {
		return OfficeArea{}, fmt.Errorf("LocationService is nil")
	}
	logger := s.loggerWith(ctx, "UpdateArea", "principal_id", params.Principal.UserID, "area_id", params.AreaID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "area update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "area updated")
	}()

	if !params.Principal.IsAdmin() {
		return OfficeArea{}, ErrUnauthorized
	}
	if s.locations == nil {
		return OfficeArea{}, fmt.Errorf("location repository not configured")
	}

	existing, err := s.locations.GetArea(ctx, params.AreaID)
	if err != nil {
		return OfficeArea{}, mapRepoError(err, "")
	}

	input := normalizeAreaInput(params.Input)
	if err = validateAreaInput(input).orNil(); err != nil {
		return OfficeArea{}, err
	}

	updated := existing
	updated.LocationID = input.LocationID
	updated.Name = input.Name
	updated.Description = input.Description
	updated.GuidelineMinutes = input.GuidelineMinutes
	updated.Active = boolOr(input.Active, existing.Active)
	updated.UpdatedAt = s.now()

	area, err = s.locations.UpdateArea(ctx, updated)
	if err != nil {
		return OfficeArea{}, mapRepoError(err, "location_id")
	}
	return area, nil
}

// DeleteArea removes an office area.
func (s *LocationService) DeleteArea(ctx context.Context, principal Principal, areaID string) (err error) {
	if s == nil {
		return fmt.Errorf("LocationService is nil")
	}
	logger := s.loggerWith(ctx, "DeleteArea", "principal_id", principal.UserID, "area_id", areaID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "area deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "area deleted")
	}()

	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.locations == nil {
		return fmt.Errorf("location repository not configured")
	}
	return mapRepoError(s.locations.DeleteArea(ctx, areaID), "id")
}

// ListAreas returns the office areas of a location, or of every location when
// locationID is empty, ordered by name.
func (s *LocationService) ListAreas(ctx context.Context, principal Principal, locationID string, includeInactive bool) ([]OfficeArea, error) {
	if s == nil {
		return nil, fmt.Errorf("LocationService is nil")
	}
	if !principal.Authenticated() {
		return nil, ErrUnauthorized
	}
	if s.locations == nil {
		return nil, nil
	}
	activeOnly := !includeInactive || !principal.CanManage()

	areas, err := s.locations.ListAreas(ctx, strings.TrimSpace(locationID), activeOnly)
	if err != nil {
		err = mapRepoError(err, "")
		s.loggerWith(ctx, "ListAreas").ErrorContext(ctx, "area listing failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	out := make([]OfficeArea, len(areas))
	copy(out, areas)
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationID != out[j].LocationID {
			return out[i].LocationID < out[j].LocationID
		}
		if strings.EqualFold(out[i].Name, out[j].Name) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func normalizeLocationInput(input WorkLocationInput) WorkLocationInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = normalizeOptionalString(input.Address)
	return input
}

func validateLocationInput(input WorkLocationInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if math.IsNaN(input.Latitude) || input.Latitude < -90 || input.Latitude > 90 {
		vErr.add("latitude", "latitude must be between -90 and 90")
	}
	if math.IsNaN(input.Longitude) || input.Longitude < -180 || input.Longitude > 180 {
		vErr.add("longitude", "longitude must be between -180 and 180")
	}
	if math.IsNaN(input.RadiusMeters) || input.RadiusMeters <= 0 {
		vErr.add("radius_meters", "radius must be positive")
	}

	return vErr
}

func normalizeAreaInput(input OfficeAreaInput) OfficeAreaInput {
	input.LocationID = strings.TrimSpace(input.LocationID)
	input.Name = strings.TrimSpace(input.Name)
	input.Description = normalizeOptionalString(input.Description)
	return input
}

func validateAreaInput(input OfficeAreaInput) *ValidationError {
	vErr := &ValidationError{}

	if input.LocationID == "" {
		vErr.add("location_id", "location is required")
	}
	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.GuidelineMinutes != nil && *input.GuidelineMinutes < 0 {
		vErr.add("guideline_minutes", "guideline minutes must not be negative")
	}

	return vErr
}
