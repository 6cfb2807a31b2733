package http

import (
	"log/slog"
	"net/http"

	"github.com/example/attendance-tracker/internal/application"
)

type RouterConfig struct {
	Auth          *AuthHandler
	Profiles      *ProfileHandler
	Locations     *LocationHandler
	Schedules     *ScheduleHandler
	Attendance    *AttendanceHandler
	Checklists    *ChecklistHandler
	Notifications *NotificationHandler
	Reports       *ReportHandler
	Sessions      SessionValidator
	Logger        *slog.Logger
	Middleware    []func(http.Handler) http.Handler
}

// NewRouter wires every configured handler. All routes except POST /sessions
// require a valid session; management routes additionally require a role.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	authed := RequireSession(cfg.Sessions, cfg.Logger)
	managers := RequireRole(application.RoleAdmin, application.RoleManager)
	admins := RequireRole(application.RoleAdmin)

	session := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(h))
	}
	manager := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(managers(h)))
	}
	admin := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(admins(h)))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if cfg.Auth != nil {
		mux.HandleFunc("POST /sessions", cfg.Auth.CreateSession)
		session("DELETE /sessions/current", cfg.Auth.DeleteCurrentSession)
		session("POST /sessions/refresh", cfg.Auth.RefreshSession)
		session("GET /me", cfg.Auth.Me)
		session("PUT /me/password", cfg.Auth.ChangePassword)
	}

	if cfg.Profiles != nil {
		manager("GET /profiles", cfg.Profiles.List)
		admin("POST /profiles", cfg.Profiles.Create)
		session("GET /profiles/{id}", cfg.Profiles.Get)
		admin("PUT /profiles/{id}", cfg.Profiles.Update)
		admin("DELETE /profiles/{id}", cfg.Profiles.Delete)
	}

	if cfg.Locations != nil {
		session("GET /locations", cfg.Locations.ListLocations)
		admin("POST /locations", cfg.Locations.CreateLocation)
		session("GET /locations/{id}", cfg.Locations.GetLocation)
		admin("PUT /locations/{id}", cfg.Locations.UpdateLocation)
		admin("DELETE /locations/{id}", cfg.Locations.DeleteLocation)
		session("GET /locations/{id}/areas", cfg.Locations.ListAreas)
		admin("POST /locations/{id}/areas", cfg.Locations.CreateArea)
		admin("PUT /areas/{id}", cfg.Locations.UpdateArea)
		admin("DELETE /areas/{id}", cfg.Locations.DeleteArea)
	}

	if cfg.Schedules != nil {
		session("GET /schedules", cfg.Schedules.List)
		manager("POST /schedules", cfg.Schedules.Create)
		session("GET /schedules/resolve", cfg.Schedules.Resolve)
		manager("PUT /schedules/{id}", cfg.Schedules.Update)
		manager("DELETE /schedules/{id}", cfg.Schedules.Delete)
	}

	if cfg.Attendance != nil {
		session("POST /attendance/check-in", cfg.Attendance.CheckIn)
		session("POST /attendance/check-out", cfg.Attendance.CheckOut)
		session("GET /attendance/current", cfg.Attendance.Current)
		session("GET /attendance", cfg.Attendance.List)
		manager("PUT /attendance/{id}/status", cfg.Attendance.UpdateStatus)
		admin("POST /attendance/recompute", cfg.Attendance.Recompute)
	}

	if cfg.Checklists != nil {
		manager("GET /job-templates", cfg.Checklists.ListTemplates)
		admin("POST /job-templates", cfg.Checklists.CreateTemplate)
		admin("PUT /job-templates/{id}", cfg.Checklists.UpdateTemplate)
		admin("DELETE /job-templates/{id}", cfg.Checklists.DeleteTemplate)
		admin("POST /checklists/generate", cfg.Checklists.Generate)
		session("GET /checklists", cfg.Checklists.List)
		session("POST /checklists/{id}/start", cfg.Checklists.Start)
		session("POST /checklists/{id}/complete", cfg.Checklists.Complete)
	}

	if cfg.Notifications != nil {
		admin("POST /notifications", cfg.Notifications.Send)
		session("GET /notifications", cfg.Notifications.Inbox)
		session("POST /notifications/read-all", cfg.Notifications.MarkAllRead)
		session("POST /notifications/{id}/read", cfg.Notifications.MarkRead)
		session("POST /devices", cfg.Notifications.RegisterDevice)
		session("DELETE /devices", cfg.Notifications.UnregisterDevice)
	}

	if cfg.Reports != nil {
		manager("GET /reports/attendance.xlsx", cfg.Reports.AttendanceWorkbook)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
