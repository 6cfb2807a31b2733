package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/attendance-tracker/internal/persistence"
)

type locationRepoStub struct {
	locations map[string]WorkLocation
	areas     map[string]OfficeArea

	listCalls int
	areaErr   error
}

func newLocationRepoStub(locations ...WorkLocation) *locationRepoStub {
	stub := &locationRepoStub{locations: make(map[string]WorkLocation), areas: make(map[string]OfficeArea)}
	for _, l := range locations {
		stub.locations[l.ID] = l
	}
	return stub
}

func (r *locationRepoStub) CreateLocation(ctx context.Context, location WorkLocation) (WorkLocation, error) {
	r.locations[location.ID] = location
	return location, nil
}

func (r *locationRepoStub) GetLocation(ctx context.Context, id string) (WorkLocation, error) {
	location, ok := r.locations[id]
	if !ok {
		return WorkLocation{}, persistence.ErrNotFound
	}
	return location, nil
}

func (r *locationRepoStub) UpdateLocation(ctx context.Context, location WorkLocation) (WorkLocation, error) {
	r.locations[location.ID] = location
	return location, nil
}

func (r *locationRepoStub) DeleteLocation(ctx context.Context, id string) error {
	if _, ok := r.locations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.locations, id)
	return nil
}

func (r *locationRepoStub) ListLocations(ctx context.Context, activeOnly bool) ([]WorkLocation, error) {
	r.listCalls++
	var out []WorkLocation
	for _, l := range r.locations {
		if activeOnly && !l.Active {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *locationRepoStub) CreateArea(ctx context.Context, area OfficeArea) (OfficeArea, error) {
	if r.areaErr != nil {
		return OfficeArea{}, r.areaErr
	}
	r.areas[area.ID] = area
	return area, nil
}

func (r *locationRepoStub) GetArea(ctx context.Context, id string) (OfficeArea, error) {
	area, ok := r.areas[id]
	if !ok {
		return OfficeArea{}, persistence.ErrNotFound
	}
	return area, nil
}

func (r *locationRepoStub) UpdateArea(ctx context.Context, area OfficeArea) (OfficeArea, error) {
	r.areas[area.ID] = area
	return area, nil
}

func (r *locationRepoStub) DeleteArea(ctx context.Context, id string) error {
	delete(r.areas, id)
	return nil
}

func (r *locationRepoStub) ListAreas(ctx context.Context, locationID string, activeOnly bool) ([]OfficeArea, error) {
	var out []OfficeArea
	for _, a := range r.areas {
		if locationID != "" && a.LocationID != locationID {
			continue
		}
		if activeOnly && !a.Active {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func TestLocationService_CreateLocation(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewLocationService(newLocationRepoStub(), nil, nil, time.Minute)
		_, err := svc.CreateLocation(context.Background(), CreateLocationParams{
			Principal: managerPrincipal,
			Input:     WorkLocationInput{Name: "HQ", RadiusMeters: 100},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates coordinates and radius", func(t *testing.T) {
		svc := NewLocationService(newLocationRepoStub(), nil, nil, time.Minute)
		_, err := svc.CreateLocation(context.Background(), CreateLocationParams{
			Principal: adminPrincipal,
			Input:     WorkLocationInput{Name: " ", Latitude: 91, Longitude: -181, RadiusMeters: 0},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"name", "latitude", "longitude", "radius_meters"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("invalidates the cached geofence set", func(t *testing.T) {
		repo := newLocationRepoStub(WorkLocation{ID: "loc-1", Name: "HQ", RadiusMeters: 100, Active: true})
		svc := NewLocationService(repo, sequentialIDs("loc-new"), fixedClock(), time.Minute)

		zones, err := svc.ActiveZones(context.Background())
		if err != nil || len(zones) != 1 {
			t.Fatalf("expected one zone, got %v (%v)", zones, err)
		}
		if _, err := svc.ActiveZones(context.Background()); err != nil {
			t.Fatalf("ActiveZones failed: %v", err)
		}
		if repo.listCalls != 1 {
			t.Fatalf("expected cached zones on second call, got %d repository calls", repo.listCalls)
		}

		_, err = svc.CreateLocation(context.Background(), CreateLocationParams{
			Principal: adminPrincipal,
			Input:     WorkLocationInput{Name: "Warehouse", Latitude: 1, Longitude: 2, RadiusMeters: 50},
		})
		if err != nil {
			t.Fatalf("CreateLocation failed: %v", err)
		}

		zones, err = svc.ActiveZones(context.Background())
		if err != nil || len(zones) != 2 {
			t.Fatalf("expected two zones after create, got %v (%v)", zones, err)
		}
		if repo.listCalls != 2 {
			t.Fatalf("expected cache invalidation to trigger a reload, got %d calls", repo.listCalls)
		}
	})
}

func TestLocationService_ListLocations(t *testing.T) {
	repo := newLocationRepoStub(
		WorkLocation{ID: "loc-2", Name: "beta", Active: true},
		WorkLocation{ID: "loc-1", Name: "Alpha", Active: true},
		WorkLocation{ID: "loc-3", Name: "closed", Active: false},
	)
	svc := NewLocationService(repo, nil, nil, time.Minute)

	got, err := svc.ListLocations(context.Background(), employeePrincipal, true)
	if err != nil {
		t.Fatalf("ListLocations failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "loc-1" || got[1].ID != "loc-2" {
		t.Fatalf("expected employees to see active locations in name order, got %+v", got)
	}

	got, err = svc.ListLocations(context.Background(), adminPrincipal, true)
	if err != nil {
		t.Fatalf("ListLocations failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected administrators to see inactive locations, got %+v", got)
	}

	if _, err := svc.ListLocations(context.Background(), Principal{}, false); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for anonymous principal, got %v", err)
	}
}

func TestLocationService_Areas(t *testing.T) {
	t.Run("validates guideline minutes", func(t *testing.T) {
		svc := NewLocationService(newLocationRepoStub(), nil, nil, time.Minute)
		_, err := svc.CreateArea(context.Background(), CreateAreaParams{
			Principal: adminPrincipal,
			Input:     OfficeAreaInput{LocationID: "loc-1", Name: "Lobby", GuidelineMinutes: intPtr(-5)},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["guideline_minutes"] == "" {
			t.Fatalf("expected guideline_minutes validation error, got %v", err)
		}
	})

	t.Run("maps unknown locations to a field error", func(t *testing.T) {
		repo := newLocationRepoStub()
		repo.areaErr = persistence.ErrForeignKeyViolation
		svc := NewLocationService(repo, sequentialIDs("area"), fixedClock(), time.Minute)

		_, err := svc.CreateArea(context.Background(), CreateAreaParams{
			Principal: adminPrincipal,
			Input:     OfficeAreaInput{LocationID: "missing", Name: "Lobby"},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["location_id"] == "" {
			t.Fatalf("expected location_id validation error, got %v", err)
		}
	})

	t.Run("lists areas for a location", func(t *testing.T) {
		repo := newLocationRepoStub()
		svc := NewLocationService(repo, sequentialIDs("area"), fixedClock(), time.Minute)

		for _, name := range []string{"Pantry", "lobby"} {
			if _, err := svc.CreateArea(context.Background(), CreateAreaParams{
				Principal: adminPrincipal,
				Input:     OfficeAreaInput{LocationID: "loc-1", Name: name, GuidelineMinutes: intPtr(30)},
			}); err != nil {
				t.Fatalf("CreateArea failed: %v", err)
			}
		}
		repo.areas["other"] = OfficeArea{ID: "other", LocationID: "loc-2", Name: "Dock", Active: true}

		got, err := svc.ListAreas(context.Background(), employeePrincipal, "loc-1", false)
		if err != nil {
			t.Fatalf("ListAreas failed: %v", err)
		}
		if len(got) != 2 || got[0].Name != "lobby" || got[1].Name != "Pantry" {
			t.Fatalf("unexpected areas %+v", got)
		}
	})
}
