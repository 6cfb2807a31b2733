package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/attendance-tracker/internal/persistence"
	"github.com/example/attendance-tracker/internal/recurrence"
)

type checklistRepoStub struct {
	templates  map[string]JobTemplate
	checklists map[string]JobChecklist
	order      []string

	createErrOn map[string]error
	lastFilter  ChecklistFilter
}

func newChecklistRepoStub(templates ...JobTemplate) *checklistRepoStub {
	stub := &checklistRepoStub{
		templates:   make(map[string]JobTemplate),
		checklists:  make(map[string]JobChecklist),
		createErrOn: make(map[string]error),
	}
	for _, tmpl := range templates {
		stub.templates[tmpl.ID] = tmpl
	}
	return stub
}

func (r *checklistRepoStub) CreateTemplate(ctx context.Context, template JobTemplate) (JobTemplate, error) {
	r.templates[template.ID] = template
	return template, nil
}

func (r *checklistRepoStub) GetTemplate(ctx context.Context, id string) (JobTemplate, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return JobTemplate{}, persistence.ErrNotFound
	}
	return tmpl, nil
}

func (r *checklistRepoStub) UpdateTemplate(ctx context.Context, template JobTemplate) (JobTemplate, error) {
	r.templates[template.ID] = template
	return template, nil
}

func (r *checklistRepoStub) DeleteTemplate(ctx context.Context, id string) error {
	if _, ok := r.templates[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

func (r *checklistRepoStub) ListTemplates(ctx context.Context, filter JobTemplateFilter) ([]JobTemplate, error) {
	var out []JobTemplate
	for _, tmpl := range r.templates {
		if filter.ActiveOnly && !tmpl.Active {
			continue
		}
		if filter.LocationID != "" && tmpl.LocationID != filter.LocationID {
			continue
		}
		out = append(out, tmpl)
	}
	return out, nil
}

func (r *checklistRepoStub) CreateChecklist(ctx context.Context, checklist JobChecklist) (JobChecklist, error) {
	if err := r.createErrOn[checklist.ChecklistDate.Format("2006-01-02")]; err != nil {
		return JobChecklist{}, err
	}
	r.checklists[checklist.ID] = checklist
	r.order = append(r.order, checklist.ID)
	return checklist, nil
}

func (r *checklistRepoStub) GetChecklist(ctx context.Context, id string) (JobChecklist, error) {
	item, ok := r.checklists[id]
	if !ok {
		return JobChecklist{}, persistence.ErrNotFound
	}
	return item, nil
}

func (r *checklistRepoStub) UpdateChecklist(ctx context.Context, checklist JobChecklist) (JobChecklist, error) {
	r.checklists[checklist.ID] = checklist
	return checklist, nil
}

func (r *checklistRepoStub) FindActiveChecklist(ctx context.Context, templateID string, date time.Time) (JobChecklist, error) {
	for _, id := range r.order {
		item := r.checklists[id]
		if item.Active && item.TemplateID == templateID && item.ChecklistDate.Equal(date) {
			return item, nil
		}
	}
	return JobChecklist{}, persistence.ErrNotFound
}

func (r *checklistRepoStub) DeactivateChecklist(ctx context.Context, id string, at time.Time) error {
	item, ok := r.checklists[id]
	if !ok {
		return persistence.ErrNotFound
	}
	item.Active = false
	item.UpdatedAt = at
	r.checklists[id] = item
	return nil
}

func (r *checklistRepoStub) ListChecklists(ctx context.Context, filter ChecklistFilter) ([]JobChecklist, error) {
	r.lastFilter = filter
	var out []JobChecklist
	for _, id := range r.order {
		item := r.checklists[id]
		if filter.ActiveOnly && !item.Active {
			continue
		}
		if filter.AssigneeID != "" {
			assigned := item.AssigneeID != nil && *item.AssigneeID == filter.AssigneeID
			unassigned := item.AssigneeID == nil && filter.IncludeUnassigned
			if !assigned && !unassigned {
				continue
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *checklistRepoStub) activeCount() int {
	n := 0
	for _, item := range r.checklists {
		if item.Active {
			n++
		}
	}
	return n
}

func TestChecklistService_CreateTemplate(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewChecklistService(newChecklistRepoStub(), nil, nil)
		_, err := svc.CreateTemplate(context.Background(), CreateJobTemplateParams{Principal: managerPrincipal})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("requires the anchor day of the frequency", func(t *testing.T) {
		svc := NewChecklistService(newChecklistRepoStub(), nil, nil)
		_, err := svc.CreateTemplate(context.Background(), CreateJobTemplateParams{
			Principal: adminPrincipal,
			Input:     JobTemplateInput{Title: "Restock", LocationID: "loc-1", Frequency: "weekly", DayOfWeek: intPtr(7)},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["day_of_week"] == "" {
			t.Fatalf("expected day_of_week validation error, got %v", err)
		}

		_, err = svc.CreateTemplate(context.Background(), CreateJobTemplateParams{
			Principal: adminPrincipal,
			Input:     JobTemplateInput{Title: "Audit", LocationID: "loc-1", Frequency: "monthly"},
		})
		if !errors.As(err, &vErr) || vErr.FieldErrors["day_of_month"] == "" {
			t.Fatalf("expected day_of_month validation error, got %v", err)
		}

		_, err = svc.CreateTemplate(context.Background(), CreateJobTemplateParams{
			Principal: adminPrincipal,
			Input:     JobTemplateInput{Title: "", LocationID: "", Frequency: "hourly"},
		})
		if !errors.As(err, &vErr) || vErr.FieldErrors["frequency"] == "" || vErr.FieldErrors["title"] == "" {
			t.Fatalf("expected frequency and title validation errors, got %v", err)
		}
	})

	t.Run("persists a normalized weekly template", func(t *testing.T) {
		repo := newChecklistRepoStub()
		svc := NewChecklistService(repo, sequentialIDs("tmpl"), fixedClock())

		got, err := svc.CreateTemplate(context.Background(), CreateJobTemplateParams{
			Principal: adminPrincipal,
			Input: JobTemplateInput{
				Title:      " Restock pantry ",
				LocationID: "loc-1",
				AssigneeID: strPtr(" "),
				Frequency:  " Weekly ",
				DayOfWeek:  intPtr(1),
				DayOfMonth: intPtr(15),
			},
		})
		if err != nil {
			t.Fatalf("CreateTemplate failed: %v", err)
		}
		if got.ID != "tmpl-1" || got.Title != "Restock pantry" || got.Frequency != recurrence.FrequencyWeekly {
			t.Fatalf("unexpected template %+v", got)
		}
		if got.DayOfWeek == nil || *got.DayOfWeek != time.Monday || got.DayOfMonth != nil {
			t.Fatalf("expected only the weekly anchor to be kept, got %+v", got)
		}
		if got.AssigneeID != nil || !got.Active {
			t.Fatalf("expected unassigned active template, got %+v", got)
		}
	})
}

func TestChecklistService_Generate(t *testing.T) {
	monday := time.Monday
	daily := JobTemplate{ID: "t-daily", Title: "Open doors", LocationID: "loc-1", Frequency: recurrence.FrequencyDaily, Active: true}
	weekly := JobTemplate{ID: "t-weekly", Title: "Restock", LocationID: "loc-1", Frequency: recurrence.FrequencyWeekly, DayOfWeek: &monday, AssigneeID: strPtr("employee-1"), Active: true}
	inactive := JobTemplate{ID: "t-off", Title: "Retired", LocationID: "loc-1", Frequency: recurrence.FrequencyDaily, Active: false}
	elsewhere := JobTemplate{ID: "t-other", Title: "Dock sweep", LocationID: "loc-2", Frequency: recurrence.FrequencyDaily, Active: true}

	t.Run("is idempotent across runs", func(t *testing.T) {
		repo := newChecklistRepoStub(daily, weekly, inactive, elsewhere)
		svc := NewChecklistService(repo, sequentialIDs("cl"), fixedClock())
		params := GenerateChecklistsParams{Principal: adminPrincipal, From: "2024-03-04", To: "2024-03-10", LocationID: "loc-1"}

		first, err := svc.Generate(context.Background(), params)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if first != (GenerateResult{Created: 8}) {
			t.Fatalf("expected 7 daily and 1 weekly item, got %+v", first)
		}

		second, err := svc.Generate(context.Background(), params)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if second != (GenerateResult{Skipped: 8}) {
			t.Fatalf("expected every pair to be skipped, got %+v", second)
		}
		if repo.activeCount() != 8 {
			t.Fatalf("expected 8 active checklists, got %d", repo.activeCount())
		}
	})

	t.Run("replaces existing rows when overwriting", func(t *testing.T) {
		repo := newChecklistRepoStub(daily)
		svc := NewChecklistService(repo, sequentialIDs("cl"), fixedClock())
		params := GenerateChecklistsParams{Principal: adminPrincipal, From: "2024-03-04", To: "2024-03-05"}

		if _, err := svc.Generate(context.Background(), params); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		params.Overwrite = true
		got, err := svc.Generate(context.Background(), params)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if got != (GenerateResult{Replaced: 2}) {
			t.Fatalf("expected two replacements, got %+v", got)
		}
		if repo.activeCount() != 2 || len(repo.checklists) != 4 {
			t.Fatalf("expected 2 active of 4 rows, got %d of %d", repo.activeCount(), len(repo.checklists))
		}
	})

	t.Run("counts failures and continues", func(t *testing.T) {
		repo := newChecklistRepoStub(daily)
		repo.createErrOn["2024-03-05"] = errors.New("write failed")
		repo.createErrOn["2024-03-06"] = persistence.ErrConflict
		svc := NewChecklistService(repo, sequentialIDs("cl"), fixedClock())

		got, err := svc.Generate(context.Background(), GenerateChecklistsParams{Principal: adminPrincipal, From: "2024-03-04", To: "2024-03-07"})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if got != (GenerateResult{Created: 2, Skipped: 1, Failed: 1}) {
			t.Fatalf("unexpected result %+v", got)
		}
	})

	t.Run("validates the window", func(t *testing.T) {
		svc := NewChecklistService(newChecklistRepoStub(daily), sequentialIDs("cl"), fixedClock())
		cases := []GenerateChecklistsParams{
			{Principal: adminPrincipal, From: "2024-03-10", To: "2024-03-01"},
			{Principal: adminPrincipal, From: "2024-01-01", To: "2024-04-03"},
			{Principal: adminPrincipal, From: "", To: "2024-03-01"},
		}
		for _, params := range cases {
			_, err := svc.Generate(context.Background(), params)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError for %s..%s, got %v", params.From, params.To, err)
			}
		}

		if _, err := svc.Generate(context.Background(), GenerateChecklistsParams{Principal: adminPrincipal, From: "2024-01-01", To: "2024-04-02"}); err != nil {
			t.Fatalf("expected a 93 day window to be accepted, got %v", err)
		}
	})

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewChecklistService(newChecklistRepoStub(), nil, nil)
		if _, err := svc.Generate(context.Background(), GenerateChecklistsParams{Principal: managerPrincipal}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestChecklistService_ListChecklists(t *testing.T) {
	repo := newChecklistRepoStub()
	repo.checklists["mine"] = JobChecklist{ID: "mine", AssigneeID: strPtr("employee-1"), Active: true}
	repo.checklists["open"] = JobChecklist{ID: "open", Active: true}
	repo.checklists["theirs"] = JobChecklist{ID: "theirs", AssigneeID: strPtr("employee-2"), Active: true}
	repo.order = []string{"mine", "open", "theirs"}
	svc := NewChecklistService(repo, nil, fixedClock())

	got, err := svc.ListChecklists(context.Background(), ListChecklistsParams{Principal: employeePrincipal})
	if err != nil {
		t.Fatalf("ListChecklists failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "mine" || got[1].ID != "open" {
		t.Fatalf("expected own and unassigned items, got %+v", got)
	}

	if _, err := svc.ListChecklists(context.Background(), ListChecklistsParams{Principal: employeePrincipal, AssigneeID: "employee-2"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	got, err = svc.ListChecklists(context.Background(), ListChecklistsParams{Principal: managerPrincipal, From: "2024-03-01", To: "2024-03-31"})
	if err != nil {
		t.Fatalf("ListChecklists failed: %v", err)
	}
	if len(got) != 3 || repo.lastFilter.FromDate == nil || repo.lastFilter.IncludeUnassigned {
		t.Fatalf("expected unrestricted manager listing, got %+v (%+v)", got, repo.lastFilter)
	}
}

func TestChecklistService_StartAndComplete(t *testing.T) {
	newRepo := func() *checklistRepoStub {
		repo := newChecklistRepoStub()
		repo.checklists["cl-1"] = JobChecklist{ID: "cl-1", AssigneeID: strPtr("employee-1"), Active: true}
		repo.checklists["cl-other"] = JobChecklist{ID: "cl-other", AssigneeID: strPtr("employee-2"), Active: true}
		repo.checklists["cl-retired"] = JobChecklist{ID: "cl-retired", Active: false}
		return repo
	}

	t.Run("start then complete", func(t *testing.T) {
		svc := NewChecklistService(newRepo(), nil, fixedClock())

		started, err := svc.StartChecklist(context.Background(), StartChecklistParams{Principal: employeePrincipal, ChecklistID: "cl-1", PhotoURL: strPtr("https://cdn.example.com/start.jpg")})
		if err != nil {
			t.Fatalf("StartChecklist failed: %v", err)
		}
		if started.StartedAt == nil || started.StartPhotoURL == nil {
			t.Fatalf("expected start to be recorded, got %+v", started)
		}

		if _, err := svc.StartChecklist(context.Background(), StartChecklistParams{Principal: employeePrincipal, ChecklistID: "cl-1"}); err == nil {
			t.Fatalf("expected second start to fail")
		}

		done, err := svc.CompleteChecklist(context.Background(), CompleteChecklistParams{Principal: employeePrincipal, ChecklistID: "cl-1", Notes: strPtr(" all good ")})
		if err != nil {
			t.Fatalf("CompleteChecklist failed: %v", err)
		}
		if done.CompletedAt == nil || done.CompletedBy == nil || *done.CompletedBy != "employee-1" {
			t.Fatalf("expected completion by employee-1, got %+v", done)
		}
		if done.Notes == nil || *done.Notes != "all good" {
			t.Fatalf("expected trimmed notes, got %v", done.Notes)
		}
	})

	t.Run("completing an unstarted item starts it", func(t *testing.T) {
		svc := NewChecklistService(newRepo(), nil, fixedClock())
		done, err := svc.CompleteChecklist(context.Background(), CompleteChecklistParams{Principal: managerPrincipal, ChecklistID: "cl-other"})
		if err != nil {
			t.Fatalf("CompleteChecklist failed: %v", err)
		}
		if done.StartedAt == nil || !done.StartedAt.Equal(*done.CompletedAt) {
			t.Fatalf("expected started_at to equal completed_at, got %+v", done)
		}
	})

	t.Run("rejects other employees items and bad photos", func(t *testing.T) {
		svc := NewChecklistService(newRepo(), nil, fixedClock())
		if _, err := svc.StartChecklist(context.Background(), StartChecklistParams{Principal: employeePrincipal, ChecklistID: "cl-other"}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		_, err := svc.StartChecklist(context.Background(), StartChecklistParams{Principal: employeePrincipal, ChecklistID: "cl-1", PhotoURL: strPtr("not a url")})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["photo_url"] == "" {
			t.Fatalf("expected photo_url validation error, got %v", err)
		}
		if _, err := svc.StartChecklist(context.Background(), StartChecklistParams{Principal: employeePrincipal, ChecklistID: "cl-retired"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for inactive item, got %v", err)
		}
	})
}
