package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/attendance-tracker/internal/application"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type reportService interface {
	AttendanceWorkbook(ctx context.Context, params application.AttendanceReportParams) ([]byte, error)
}

type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

// AttendanceWorkbook handles GET /reports/attendance.xlsx?from=&to=&user_id=.
func (h *ReportHandler) AttendanceWorkbook(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	from := strings.TrimSpace(query.Get("from"))
	to := strings.TrimSpace(query.Get("to"))

	workbook, err := h.service.AttendanceWorkbook(r.Context(), application.AttendanceReportParams{
		Principal: principal,
		From:      from,
		To:        to,
		UserID:    strings.TrimSpace(query.Get("user_id")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance_%s_%s.xlsx"`, from, to))
	w.Header().Set("Content-Length", strconv.Itoa(len(workbook)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		handlerLogger(r.Context(), h.logger, "ReportHandler", "AttendanceWorkbook").WarnContext(r.Context(), "failed to write workbook", "error", err)
	}
}
