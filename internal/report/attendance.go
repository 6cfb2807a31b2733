// Package report renders attendance exports as Excel workbooks.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/attendance-tracker/internal/application"
	"github.com/example/attendance-tracker/internal/scheduler"
)

const (
	// DetailSheet lists one row per attendance record.
	DetailSheet = "Attendance"
	// SummarySheet aggregates status counts per employee.
	SummarySheet = "Summary"

	timeLayout = "15:04"
)

var detailHeader = []any{
	"Employee", "Email", "Date", "Check-in", "Check-out", "Status",
	"Check-in valid", "Check-out valid", "Distance (m)", "Notes",
}

var summaryHeader = []any{"Employee", "Email", "Present", "Late", "Absent", "Invalid check-ins"}

// Workbook renders attendance reports. It satisfies application.WorkbookRenderer.
type Workbook struct{}

// NewWorkbook returns a workbook renderer.
func NewWorkbook() *Workbook {
	return &Workbook{}
}

// RenderAttendance writes the detail and summary sheets and returns the xlsx bytes.
func (w *Workbook) RenderAttendance(from, to time.Time, rows []application.AttendanceReportRow) (data []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err = f.SetSheetName("Sheet1", DetailSheet); err != nil {
		return nil, err
	}
	if _, err = f.NewSheet(SummarySheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err = writeDetail(f, bold, rows); err != nil {
		return nil, err
	}
	if err = writeSummary(f, bold, from, to, rows); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDetail(f *excelize.File, headerStyle int, rows []application.AttendanceReportRow) error {
	if err := f.SetSheetRow(DetailSheet, "A1", &detailHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(DetailSheet, "A1", "J1", headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			row.EmployeeName,
			row.EmployeeEmail,
			row.WorkDate.Format(scheduler.DateLayout),
			row.CheckIn.Format(timeLayout),
			"",
			string(row.Status),
			yesNo(row.CheckInValid),
			"",
			"",
			row.Notes,
		}
		if row.CheckOut != nil {
			values[4] = row.CheckOut.Format(timeLayout)
		}
		if row.CheckOutValid != nil {
			values[7] = yesNo(*row.CheckOutValid)
		}
		if row.DistanceMeters != nil {
			values[8] = int(*row.DistanceMeters + 0.5)
		}
		if err := f.SetSheetRow(DetailSheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(DetailSheet, "A", "B", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(DetailSheet, "C", "I", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(DetailSheet, "J", "J", 40); err != nil {
		return err
	}
	if len(rows) > 0 {
		last, err := excelize.CoordinatesToCellName(len(detailHeader), len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.AutoFilter(DetailSheet, "A1:"+last, nil); err != nil {
			return err
		}
	}
	return nil
}

type tally struct {
	name, email           string
	present, late, absent int
	invalid               int
}

func writeSummary(f *excelize.File, headerStyle int, from, to time.Time, rows []application.AttendanceReportRow) error {
	period := fmt.Sprintf("Period %s to %s", from.Format(scheduler.DateLayout), to.Format(scheduler.DateLayout))
	if err := f.SetCellValue(SummarySheet, "A1", period); err != nil {
		return err
	}
	if err := f.SetSheetRow(SummarySheet, "A2", &summaryHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A2", "F2", headerStyle); err != nil {
		return err
	}

	byEmployee := map[string]*tally{}
	for _, row := range rows {
		key := row.EmployeeEmail + "\x00" + row.EmployeeName
		t, ok := byEmployee[key]
		if !ok {
			t = &tally{name: row.EmployeeName, email: row.EmployeeEmail}
			byEmployee[key] = t
		}
		switch row.Status {
		case scheduler.StatusPresent:
			t.present++
		case scheduler.StatusLate:
			t.late++
		case scheduler.StatusAbsent:
			t.absent++
		}
		if !row.CheckInValid {
			t.invalid++
		}
	}

	tallies := make([]*tally, 0, len(byEmployee))
	for _, t := range byEmployee {
		tallies = append(tallies, t)
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].name != tallies[j].name {
			return tallies[i].name < tallies[j].name
		}
		return tallies[i].email < tallies[j].email
	})

	for i, t := range tallies {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		values := []any{t.name, t.email, t.present, t.late, t.absent, t.invalid}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 28)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
