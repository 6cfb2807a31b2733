package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/attendance-tracker/internal/persistence"
)

func seedTemplate(t *testing.T, storage *Storage, id, locationID string, assignee *string) persistence.JobTemplate {
	t.Helper()

	template := persistence.JobTemplate{
		ID:         id,
		Title:      "Clean " + id,
		LocationID: locationID,
		AssigneeID: assignee,
		Frequency:  "daily",
		IsActive:   true,
		CreatedAt:  baseTime,
		UpdatedAt:  baseTime,
	}
	if err := storage.Checklists.CreateTemplate(context.Background(), template); err != nil {
		t.Fatalf("CreateTemplate(%s) failed: %v", id, err)
	}
	return template
}

func newChecklist(id string, template persistence.JobTemplate, date string) persistence.JobChecklist {
	return persistence.JobChecklist{
		ID:            id,
		TemplateID:    template.ID,
		ChecklistDate: date,
		LocationID:    template.LocationID,
		AssigneeID:    template.AssigneeID,
		Title:         template.Title,
		IsActive:      true,
		CreatedAt:     baseTime,
		UpdatedAt:     baseTime,
	}
}

func TestChecklistRepository_Templates(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	repo := storage.Checklists
	seedLocation(t, storage, "loc-1")

	template := seedTemplate(t, storage, "tpl-1", "loc-1", nil)
	template.Frequency = "monthly"
	template.DayOfMonth = intRef(31)
	if err := repo.UpdateTemplate(ctx, template); err != nil {
		t.Fatalf("UpdateTemplate failed: %v", err)
	}

	fetched, err := repo.GetTemplate(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if fetched.Frequency != "monthly" || fetched.DayOfMonth == nil || *fetched.DayOfMonth != 31 {
		t.Fatalf("unexpected template %+v", fetched)
	}

	bad := template
	bad.ID = "tpl-2"
	bad.Frequency = "hourly"
	if err := repo.CreateTemplate(ctx, bad); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for unknown frequency, got %v", err)
	}

	templates, err := repo.ListTemplates(ctx, persistence.TemplateFilter{LocationID: "loc-1", ActiveOnly: true})
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(templates))
	}

	if err := repo.DeleteTemplate(ctx, "tpl-1"); err != nil {
		t.Fatalf("DeleteTemplate failed: %v", err)
	}
	if _, err := repo.GetTemplate(ctx, "tpl-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChecklistRepository_ActiveInstanceIsUnique(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	repo := storage.Checklists
	seedLocation(t, storage, "loc-1")
	template := seedTemplate(t, storage, "tpl-1", "loc-1", nil)

	if err := repo.CreateChecklist(ctx, newChecklist("chk-1", template, "2024-01-15")); err != nil {
		t.Fatalf("CreateChecklist failed: %v", err)
	}
	if err := repo.CreateChecklist(ctx, newChecklist("chk-2", template, "2024-01-15")); !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate active instance, got %v", err)
	}

	if err := repo.DeactivateChecklist(ctx, "chk-1", baseTime.Add(time.Hour)); err != nil {
		t.Fatalf("DeactivateChecklist failed: %v", err)
	}
	if _, err := repo.FindActiveChecklist(ctx, "tpl-1", "2024-01-15"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected no active instance, got %v", err)
	}
	if err := repo.CreateChecklist(ctx, newChecklist("chk-2", template, "2024-01-15")); err != nil {
		t.Fatalf("CreateChecklist replacement failed: %v", err)
	}

	active, err := repo.FindActiveChecklist(ctx, "tpl-1", "2024-01-15")
	if err != nil {
		t.Fatalf("FindActiveChecklist failed: %v", err)
	}
	if active.ID != "chk-2" {
		t.Fatalf("expected chk-2 active, got %s", active.ID)
	}

	started := baseTime.Add(2 * time.Hour)
	active.StartedAt = &started
	active.StartPhotoURL = strRef("https://photos.example.com/start.jpg")
	active.UpdatedAt = started
	if err := repo.UpdateChecklist(ctx, active); err != nil {
		t.Fatalf("UpdateChecklist failed: %v", err)
	}
	fetched, err := repo.GetChecklist(ctx, "chk-2")
	if err != nil {
		t.Fatalf("GetChecklist failed: %v", err)
	}
	if fetched.StartedAt == nil || !fetched.StartedAt.Equal(started) || fetched.StartPhotoURL == nil {
		t.Fatalf("expected start to round-trip, got %+v", fetched)
	}
}

func TestChecklistRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	repo := storage.Checklists
	seedProfile(t, storage, "user-1", "alice@example.com", "employee")
	seedProfile(t, storage, "user-2", "bob@example.com", "employee")
	seedLocation(t, storage, "loc-1")

	mine := seedTemplate(t, storage, "tpl-a", "loc-1", strRef("user-1"))
	theirs := seedTemplate(t, storage, "tpl-b", "loc-1", strRef("user-2"))
	shared := seedTemplate(t, storage, "tpl-c", "loc-1", nil)

	for i, checklist := range []persistence.JobChecklist{
		newChecklist("chk-1", mine, "2024-01-15"),
		newChecklist("chk-2", theirs, "2024-01-15"),
		newChecklist("chk-3", shared, "2024-01-15"),
		newChecklist("chk-4", mine, "2024-01-20"),
	} {
		if err := repo.CreateChecklist(ctx, checklist); err != nil {
			t.Fatalf("CreateChecklist #%d failed: %v", i, err)
		}
	}

	got, err := repo.ListChecklists(ctx, persistence.ChecklistFilter{
		FromDate:          "2024-01-15",
		ToDate:            "2024-01-15",
		AssigneeID:        "user-1",
		IncludeUnassigned: true,
		ActiveOnly:        true,
	})
	if err != nil {
		t.Fatalf("ListChecklists failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected own and unassigned items, got %+v", got)
	}
	for _, checklist := range got {
		if checklist.ID == "chk-2" {
			t.Fatal("did not expect another user's checklist")
		}
	}

	got, err = repo.ListChecklists(ctx, persistence.ChecklistFilter{TemplateID: "tpl-a"})
	if err != nil {
		t.Fatalf("ListChecklists(template) failed: %v", err)
	}
	if len(got) != 2 || got[0].ChecklistDate != "2024-01-15" || got[1].ChecklistDate != "2024-01-20" {
		t.Fatalf("expected template instances ordered by date, got %+v", got)
	}
}
