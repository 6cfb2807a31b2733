package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/attendance-tracker/internal/persistence"
)

func newAttendance(id, userID, workDate string, checkIn time.Time) persistence.Attendance {
	return persistence.Attendance{
		ID:                    id,
		UserID:                userID,
		WorkDate:              workDate,
		CheckIn:               checkIn,
		CheckInLatitude:       -6.2,
		CheckInLongitude:      106.8,
		CheckInLocationValid:  true,
		CheckInDistanceMeters: floatRef(12.5),
		Status:                "present",
		CreatedAt:             checkIn,
		UpdatedAt:             checkIn,
	}
}

func TestAttendanceRepository_OneOpenRowPerUser(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	repo := storage.Attendance
	seedProfile(t, storage, "user-1", "alice@example.com", "employee")

	first := newAttendance("att-1", "user-1", "2024-01-15", baseTime)
	if err := repo.CreateAttendance(ctx, first); err != nil {
		t.Fatalf("CreateAttendance failed: %v", err)
	}

	second := newAttendance("att-2", "user-1", "2024-01-15", baseTime.Add(time.Hour))
	if err := repo.CreateAttendance(ctx, second); !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict for second open row, got %v", err)
	}

	open, err := repo.GetOpenAttendance(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOpenAttendance failed: %v", err)
	}
	if open.ID != "att-1" || open.CheckInDistanceMeters == nil || *open.CheckInDistanceMeters != 12.5 {
		t.Fatalf("unexpected open row %+v", open)
	}

	checkOut := baseTime.Add(8 * time.Hour)
	valid := false
	open.CheckOut = &checkOut
	open.CheckOutLatitude = floatRef(-6.3)
	open.CheckOutLongitude = floatRef(106.9)
	open.CheckOutLocationValid = &valid
	open.UpdatedAt = checkOut
	if err := repo.UpdateAttendance(ctx, open); err != nil {
		t.Fatalf("UpdateAttendance failed: %v", err)
	}

	if _, err := repo.GetOpenAttendance(ctx, "user-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected no open row after check-out, got %v", err)
	}

	if err := repo.CreateAttendance(ctx, second); err != nil {
		t.Fatalf("CreateAttendance after check-out failed: %v", err)
	}

	closed, err := repo.GetAttendance(ctx, "att-1")
	if err != nil {
		t.Fatalf("GetAttendance failed: %v", err)
	}
	if closed.CheckOut == nil || !closed.CheckOut.Equal(checkOut) {
		t.Fatalf("expected check-out to round-trip, got %v", closed.CheckOut)
	}
	if closed.CheckOutLocationValid == nil || *closed.CheckOutLocationValid {
		t.Fatalf("expected check-out validity false, got %v", closed.CheckOutLocationValid)
	}
}

func TestAttendanceRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	repo := storage.Attendance
	seedProfile(t, storage, "user-1", "alice@example.com", "employee")
	seedProfile(t, storage, "user-2", "bob@example.com", "employee")

	rows := []persistence.Attendance{
		newAttendance("att-1", "user-1", "2024-01-14", baseTime.AddDate(0, 0, -1)),
		newAttendance("att-2", "user-2", "2024-01-15", baseTime),
		newAttendance("att-3", "user-1", "2024-01-16", baseTime.AddDate(0, 0, 1)),
	}
	rows[1].Status = "late"
	for i := range rows {
		if i < 2 {
			out := rows[i].CheckIn.Add(8 * time.Hour)
			rows[i].CheckOut = &out
		}
		if err := repo.CreateAttendance(ctx, rows[i]); err != nil {
			t.Fatalf("CreateAttendance(%s) failed: %v", rows[i].ID, err)
		}
	}

	tests := []struct {
		name   string
		filter persistence.AttendanceFilter
		want   []string
	}{
		{name: "all", filter: persistence.AttendanceFilter{}, want: []string{"att-1", "att-2", "att-3"}},
		{name: "by user", filter: persistence.AttendanceFilter{UserID: "user-1"}, want: []string{"att-1", "att-3"}},
		{name: "date range", filter: persistence.AttendanceFilter{FromDate: "2024-01-15", ToDate: "2024-01-16"}, want: []string{"att-2", "att-3"}},
		{name: "status", filter: persistence.AttendanceFilter{Status: "late"}, want: []string{"att-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListAttendance(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListAttendance failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d rows, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}
