package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// MaxReportDays bounds the inclusive window of an attendance export.
const MaxReportDays = 366

// AttendanceSource lists attendance rows for reporting.
type AttendanceSource interface {
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
}

// WorkbookRenderer turns report rows into a spreadsheet document.
type WorkbookRenderer interface {
	RenderAttendance(from, to time.Time, rows []AttendanceReportRow) ([]byte, error)
}

// ReportService builds attendance exports for managers and administrators.
type ReportService struct {
	attendance AttendanceSource
	directory  RecipientDirectory
	renderer   WorkbookRenderer
	location   *time.Location
	logger     *slog.Logger
}

// NewReportService wires dependencies for report generation. Check-in times are
// rendered in loc.
func NewReportService(attendance AttendanceSource, directory RecipientDirectory, renderer WorkbookRenderer, loc *time.Location) *ReportService {
	return NewReportServiceWithLogger(attendance, directory, renderer, loc, nil)
}

// NewReportServiceWithLogger wires dependencies and a logger for report generation.
func NewReportServiceWithLogger(attendance AttendanceSource, directory RecipientDirectory, renderer WorkbookRenderer, loc *time.Location, logger *slog.Logger) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		attendance: attendance,
		directory:  directory,
		renderer:   renderer,
		location:   loc,
		logger:     defaultLogger(logger),
	}
}

// AttendanceWorkbook renders attendance between From and To, optionally for a single user.
func (s *ReportService) AttendanceWorkbook(ctx context.Context, params AttendanceReportParams) (workbook []byte, err error) {
	if s == nil {
		return nil, fmt.Errorf("ReportService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "ReportService", "AttendanceWorkbook",
		"principal_id", params.Principal.UserID,
		"from", params.From,
		"to", params.To,
	)
	rowCount := 0
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "attendance report failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "attendance report rendered", "rows", rowCount, "bytes", len(workbook))
	}()

	if !params.Principal.CanManage() {
		return nil, ErrUnauthorized
	}
	if s.attendance == nil || s.renderer == nil {
		return nil, fmt.Errorf("report dependencies not configured")
	}

	vErr := &ValidationError{}
	from := parseDateField(vErr, "from", params.From, true)
	to := parseDateField(vErr, "to", params.To, true)
	if !vErr.HasErrors() {
		if to.Before(from) {
			vErr.add("to", "to must not be before from")
		} else if int(to.Sub(from).Hours()/24)+1 > MaxReportDays {
			vErr.add("to", fmt.Sprintf("range must not exceed %d days", MaxReportDays))
		}
	}
	if err = vErr.orNil(); err != nil {
		return nil, err
	}

	records, err := s.attendance.ListAttendance(ctx, AttendanceFilter{
		UserID:   strings.TrimSpace(params.UserID),
		FromDate: &from,
		ToDate:   &to,
	})
	if err != nil {
		return nil, mapRepoError(err, "")
	}

	profiles := map[string]Profile{}
	if s.directory != nil {
		list, err := s.directory.ListProfiles(ctx, false)
		if err != nil {
			return nil, mapRepoError(err, "")
		}
		for _, p := range list {
			profiles[p.ID] = p
		}
	}

	rows := make([]AttendanceReportRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, s.reportRow(record, profiles[record.UserID]))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].WorkDate.Equal(rows[j].WorkDate) {
			return rows[i].WorkDate.Before(rows[j].WorkDate)
		}
		return strings.ToLower(rows[i].EmployeeName) < strings.ToLower(rows[j].EmployeeName)
	})
	rowCount = len(rows)

	return s.renderer.RenderAttendance(from, to, rows)
}

func (s *ReportService) reportRow(record Attendance, profile Profile) AttendanceReportRow {
	row := AttendanceReportRow{
		EmployeeName:   profile.FullName,
		EmployeeEmail:  profile.Email,
		WorkDate:       record.WorkDate,
		CheckIn:        record.CheckIn.In(s.location),
		Status:         record.Status,
		CheckInValid:   record.CheckInLocationValid,
		CheckOutValid:  record.CheckOutLocationValid,
		DistanceMeters: record.CheckInDistanceMeters,
	}
	if row.EmployeeName == "" {
		row.EmployeeName = record.UserID
	}
	if record.CheckOut != nil {
		out := record.CheckOut.In(s.location)
		row.CheckOut = &out
	}
	if record.Notes != nil {
		row.Notes = *record.Notes
	}
	return row
}
