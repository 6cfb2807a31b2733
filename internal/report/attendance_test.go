package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/attendance-tracker/internal/application"
	"github.com/example/attendance-tracker/internal/scheduler"
)

func TestWorkbook_RenderAttendance(t *testing.T) {
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, time.March, 4, 17, 5, 0, 0, time.UTC)
	valid := true
	distance := 42.4
	rows := []application.AttendanceReportRow{
		{
			EmployeeName: "Ayu", EmployeeEmail: "ayu@example.com", WorkDate: day,
			CheckIn: time.Date(2024, time.March, 4, 8, 55, 0, 0, time.UTC), CheckOut: &checkOut,
			Status: scheduler.StatusPresent, CheckInValid: true, CheckOutValid: &valid, DistanceMeters: &distance,
			Notes: "ok",
		},
		{
			EmployeeName: "Ayu", EmployeeEmail: "ayu@example.com", WorkDate: day.AddDate(0, 0, 1),
			CheckIn: time.Date(2024, time.March, 5, 9, 40, 0, 0, time.UTC), Status: scheduler.StatusLate,
		},
		{
			EmployeeName: "Budi", EmployeeEmail: "budi@example.com", WorkDate: day,
			CheckIn: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), Status: scheduler.StatusAbsent, CheckInValid: true,
		},
	}

	data, err := NewWorkbook().RenderAttendance(day, day.AddDate(0, 0, 6), rows)
	if err != nil {
		t.Fatalf("RenderAttendance failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	detail, err := f.GetRows(DetailSheet)
	if err != nil {
		t.Fatalf("GetRows(%s) failed: %v", DetailSheet, err)
	}
	if len(detail) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(detail))
	}
	if detail[0][0] != "Employee" || detail[0][9] != "Notes" {
		t.Fatalf("unexpected header %v", detail[0])
	}
	first := detail[1]
	want := []string{"Ayu", "ayu@example.com", "2024-03-04", "08:55", "17:05", "present", "yes", "yes", "42", "ok"}
	for i, v := range want {
		if first[i] != v {
			t.Fatalf("column %d: expected %q, got %q (row %v)", i, v, first[i], first)
		}
	}
	if second := detail[2]; second[4] != "" || second[5] != "late" || second[6] != "no" {
		t.Fatalf("unexpected second row %v", second)
	}

	summary, err := f.GetRows(SummarySheet)
	if err != nil {
		t.Fatalf("GetRows(%s) failed: %v", SummarySheet, err)
	}
	if summary[0][0] != "Period 2024-03-04 to 2024-03-10" {
		t.Fatalf("unexpected period cell %q", summary[0][0])
	}
	ayu := summary[2]
	if ayu[0] != "Ayu" || ayu[2] != "1" || ayu[3] != "1" || ayu[4] != "0" || ayu[5] != "1" {
		t.Fatalf("unexpected summary row %v", ayu)
	}
	budi := summary[3]
	if budi[0] != "Budi" || budi[4] != "1" {
		t.Fatalf("unexpected summary row %v", budi)
	}
}

func TestWorkbook_RenderAttendanceEmpty(t *testing.T) {
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	data, err := NewWorkbook().RenderAttendance(day, day, nil)
	if err != nil {
		t.Fatalf("RenderAttendance failed: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != DetailSheet || sheets[1] != SummarySheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	rows, err := f.GetRows(DetailSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the header row, got %d", len(rows))
	}
}
