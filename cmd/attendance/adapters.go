package main

import (
	"context"
	"fmt"
	"time"

	"github.com/example/attendance-tracker/internal/application"
	"github.com/example/attendance-tracker/internal/persistence"
	"github.com/example/attendance-tracker/internal/push"
	"github.com/example/attendance-tracker/internal/recurrence"
	"github.com/example/attendance-tracker/internal/scheduler"
)

// profileRepositoryAdapter serves the profile, credential and directory
// interfaces from one persistence repository.
type profileRepositoryAdapter struct {
	repo persistence.ProfileRepository
}

func newProfileRepositoryAdapter(repo persistence.ProfileRepository) *profileRepositoryAdapter {
	return &profileRepositoryAdapter{repo: repo}
}

func (a *profileRepositoryAdapter) CreateProfile(ctx context.Context, profile application.Profile, passwordHash string) (application.Profile, error) {
	if err := a.repo.CreateProfile(ctx, toPersistenceProfile(profile, passwordHash)); err != nil {
		return application.Profile{}, err
	}
	return profile, nil
}

func (a *profileRepositoryAdapter) GetProfile(ctx context.Context, id string) (application.Profile, error) {
	stored, err := a.repo.GetProfile(ctx, id)
	if err != nil {
		return application.Profile{}, err
	}
	return toApplicationProfile(stored), nil
}

// UpdateProfile keeps the stored password hash.
func (a *profileRepositoryAdapter) UpdateProfile(ctx context.Context, profile application.Profile) (application.Profile, error) {
	existing, err := a.repo.GetProfile(ctx, profile.ID)
	if err != nil {
		return application.Profile{}, err
	}
	if err := a.repo.UpdateProfile(ctx, toPersistenceProfile(profile, existing.PasswordHash)); err != nil {
		return application.Profile{}, err
	}
	return profile, nil
}

func (a *profileRepositoryAdapter) UpdatePasswordHash(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	existing, err := a.repo.GetProfile(ctx, id)
	if err != nil {
		return err
	}
	existing.PasswordHash = passwordHash
	existing.UpdatedAt = updatedAt
	return a.repo.UpdateProfile(ctx, existing)
}

func (a *profileRepositoryAdapter) DeleteProfile(ctx context.Context, id string) error {
	return a.repo.DeleteProfile(ctx, id)
}

func (a *profileRepositoryAdapter) ListProfiles(ctx context.Context, activeOnly bool) ([]application.Profile, error) {
	stored, err := a.repo.ListProfiles(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]application.Profile, 0, len(stored))
	for _, p := range stored {
		out = append(out, toApplicationProfile(p))
	}
	return out, nil
}

func (a *profileRepositoryAdapter) GetProfileCredentialsByEmail(ctx context.Context, email string) (application.ProfileCredentials, error) {
	stored, err := a.repo.GetProfileByEmail(ctx, email)
	if err != nil {
		return application.ProfileCredentials{}, err
	}
	return application.ProfileCredentials{Profile: toApplicationProfile(stored), PasswordHash: stored.PasswordHash}, nil
}

func (a *profileRepositoryAdapter) GetProfileCredentials(ctx context.Context, id string) (application.ProfileCredentials, error) {
	stored, err := a.repo.GetProfile(ctx, id)
	if err != nil {
		return application.ProfileCredentials{}, err
	}
	return application.ProfileCredentials{Profile: toApplicationProfile(stored), PasswordHash: stored.PasswordHash}, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.UpdateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

type locationRepositoryAdapter struct {
	repo persistence.LocationRepository
}

func newLocationRepositoryAdapter(repo persistence.LocationRepository) *locationRepositoryAdapter {
	return &locationRepositoryAdapter{repo: repo}
}

func (a *locationRepositoryAdapter) CreateLocation(ctx context.Context, location application.WorkLocation) (application.WorkLocation, error) {
	if err := a.repo.CreateLocation(ctx, toPersistenceLocation(location)); err != nil {
		return application.WorkLocation{}, err
	}
	return location, nil
}

func (a *locationRepositoryAdapter) GetLocation(ctx context.Context, id string) (application.WorkLocation, error) {
	stored, err := a.repo.GetLocation(ctx, id)
	if err != nil {
		return application.WorkLocation{}, err
	}
	return toApplicationLocation(stored), nil
}

func (a *locationRepositoryAdapter) UpdateLocation(ctx context.Context, location application.WorkLocation) (application.WorkLocation, error) {
	if err := a.repo.UpdateLocation(ctx, toPersistenceLocation(location)); err != nil {
		return application.WorkLocation{}, err
	}
	return location, nil
}

func (a *locationRepositoryAdapter) DeleteLocation(ctx context.Context, id string) error {
	return a.repo.DeleteLocation(ctx, id)
}

func (a *locationRepositoryAdapter) ListLocations(ctx context.Context, activeOnly bool) ([]application.WorkLocation, error) {
	stored, err := a.repo.ListLocations(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]application.WorkLocation, 0, len(stored))
	for _, l := range stored {
		out = append(out, toApplicationLocation(l))
	}
	return out, nil
}

func (a *locationRepositoryAdapter) CreateArea(ctx context.Context, area application.OfficeArea) (application.OfficeArea, error) {
	if err := a.repo.CreateArea(ctx, toPersistenceArea(area)); err != nil {
		return application.OfficeArea{}, err
	}
	return area, nil
}

func (a *locationRepositoryAdapter) GetArea(ctx context.Context, id string) (application.OfficeArea, error) {
	stored, err := a.repo.GetArea(ctx, id)
	if err != nil {
		return application.OfficeArea{}, err
	}
	return toApplicationArea(stored), nil
}

func (a *locationRepositoryAdapter) UpdateArea(ctx context.Context, area application.OfficeArea) (application.OfficeArea, error) {
	if err := a.repo.UpdateArea(ctx, toPersistenceArea(area)); err != nil {
		return application.OfficeArea{}, err
	}
	return area, nil
}

func (a *locationRepositoryAdapter) DeleteArea(ctx context.Context, id string) error {
	return a.repo.DeleteArea(ctx, id)
}

func (a *locationRepositoryAdapter) ListAreas(ctx context.Context, locationID string, activeOnly bool) ([]application.OfficeArea, error) {
	stored, err := a.repo.ListAreas(ctx, locationID, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]application.OfficeArea, 0, len(stored))
	for _, area := range stored {
		out = append(out, toApplicationArea(area))
	}
	return out, nil
}

type scheduleRepositoryAdapter struct {
	repo persistence.ScheduleRepository
}

func newScheduleRepositoryAdapter(repo persistence.ScheduleRepository) *scheduleRepositoryAdapter {
	return &scheduleRepositoryAdapter{repo: repo}
}

func (a *scheduleRepositoryAdapter) CreateSchedule(ctx context.Context, schedule application.EmployeeSchedule) (application.EmployeeSchedule, error) {
	if err := a.repo.CreateSchedule(ctx, toPersistenceSchedule(schedule)); err != nil {
		return application.EmployeeSchedule{}, err
	}
	return schedule, nil
}

func (a *scheduleRepositoryAdapter) GetSchedule(ctx context.Context, id string) (application.EmployeeSchedule, error) {
	stored, err := a.repo.GetSchedule(ctx, id)
	if err != nil {
		return application.EmployeeSchedule{}, err
	}
	return toApplicationSchedule(stored)
}

func (a *scheduleRepositoryAdapter) UpdateSchedule(ctx context.Context, schedule application.EmployeeSchedule) (application.EmployeeSchedule, error) {
	if err := a.repo.UpdateSchedule(ctx, toPersistenceSchedule(schedule)); err != nil {
		return application.EmployeeSchedule{}, err
	}
	return schedule, nil
}

func (a *scheduleRepositoryAdapter) DeleteSchedule(ctx context.Context, id string) error {
	return a.repo.DeleteSchedule(ctx, id)
}

func (a *scheduleRepositoryAdapter) ListSchedules(ctx context.Context, filter application.ScheduleRepositoryFilter) ([]application.EmployeeSchedule, error) {
	stored, err := a.repo.ListSchedules(ctx, persistence.ScheduleFilter{UserID: filter.UserID, ActiveOnly: filter.ActiveOnly})
	if err != nil {
		return nil, err
	}
	out := make([]application.EmployeeSchedule, 0, len(stored))
	for _, s := range stored {
		schedule, err := toApplicationSchedule(s)
		if err != nil {
			return nil, err
		}
		out = append(out, schedule)
	}
	return out, nil
}

type attendanceRepositoryAdapter struct {
	repo persistence.AttendanceRepository
}

func newAttendanceRepositoryAdapter(repo persistence.AttendanceRepository) *attendanceRepositoryAdapter {
	return &attendanceRepositoryAdapter{repo: repo}
}

func (a *attendanceRepositoryAdapter) CreateAttendance(ctx context.Context, attendance application.Attendance) (application.Attendance, error) {
	if err := a.repo.CreateAttendance(ctx, toPersistenceAttendance(attendance)); err != nil {
		return application.Attendance{}, err
	}
	return attendance, nil
}

func (a *attendanceRepositoryAdapter) GetAttendance(ctx context.Context, id string) (application.Attendance, error) {
	stored, err := a.repo.GetAttendance(ctx, id)
	if err != nil {
		return application.Attendance{}, err
	}
	return toApplicationAttendance(stored)
}

func (a *attendanceRepositoryAdapter) GetOpenAttendance(ctx context.Context, userID string) (application.Attendance, error) {
	stored, err := a.repo.GetOpenAttendance(ctx, userID)
	if err != nil {
		return application.Attendance{}, err
	}
	return toApplicationAttendance(stored)
}

func (a *attendanceRepositoryAdapter) UpdateAttendance(ctx context.Context, attendance application.Attendance) (application.Attendance, error) {
	if err := a.repo.UpdateAttendance(ctx, toPersistenceAttendance(attendance)); err != nil {
		return application.Attendance{}, err
	}
	return attendance, nil
}

func (a *attendanceRepositoryAdapter) ListAttendance(ctx context.Context, filter application.AttendanceFilter) ([]application.Attendance, error) {
	stored, err := a.repo.ListAttendance(ctx, persistence.AttendanceFilter{
		UserID:   filter.UserID,
		FromDate: formatOptionalDate(filter.FromDate),
		ToDate:   formatOptionalDate(filter.ToDate),
		Status:   string(filter.Status),
	})
	if err != nil {
		return nil, err
	}
	out := make([]application.Attendance, 0, len(stored))
	for _, row := range stored {
		attendance, err := toApplicationAttendance(row)
		if err != nil {
			return nil, err
		}
		out = append(out, attendance)
	}
	return out, nil
}

type checklistRepositoryAdapter struct {
	repo persistence.ChecklistRepository
}

func newChecklistRepositoryAdapter(repo persistence.ChecklistRepository) *checklistRepositoryAdapter {
	return &checklistRepositoryAdapter{repo: repo}
}

func (a *checklistRepositoryAdapter) CreateTemplate(ctx context.Context, template application.JobTemplate) (application.JobTemplate, error) {
	if err := a.repo.CreateTemplate(ctx, toPersistenceTemplate(template)); err != nil {
		return application.JobTemplate{}, err
	}
	return template, nil
}

func (a *checklistRepositoryAdapter) GetTemplate(ctx context.Context, id string) (application.JobTemplate, error) {
	stored, err := a.repo.GetTemplate(ctx, id)
	if err != nil {
		return application.JobTemplate{}, err
	}
	return toApplicationTemplate(stored), nil
}

func (a *checklistRepositoryAdapter) UpdateTemplate(ctx context.Context, template application.JobTemplate) (application.JobTemplate, error) {
	if err := a.repo.UpdateTemplate(ctx, toPersistenceTemplate(template)); err != nil {
		return application.JobTemplate{}, err
	}
	return template, nil
}

func (a *checklistRepositoryAdapter) DeleteTemplate(ctx context.Context, id string) error {
	return a.repo.DeleteTemplate(ctx, id)
}

func (a *checklistRepositoryAdapter) ListTemplates(ctx context.Context, filter application.JobTemplateFilter) ([]application.JobTemplate, error) {
	stored, err := a.repo.ListTemplates(ctx, persistence.TemplateFilter{LocationID: filter.LocationID, ActiveOnly: filter.ActiveOnly})
	if err != nil {
		return nil, err
	}
	out := make([]application.JobTemplate, 0, len(stored))
	for _, t := range stored {
		out = append(out, toApplicationTemplate(t))
	}
	return out, nil
}

func (a *checklistRepositoryAdapter) CreateChecklist(ctx context.Context, checklist application.JobChecklist) (application.JobChecklist, error) {
	if err := a.repo.CreateChecklist(ctx, toPersistenceChecklist(checklist)); err != nil {
		return application.JobChecklist{}, err
	}
	return checklist, nil
}

func (a *checklistRepositoryAdapter) GetChecklist(ctx context.Context, id string) (application.JobChecklist, error) {
	stored, err := a.repo.GetChecklist(ctx, id)
	if err != nil {
		return application.JobChecklist{}, err
	}
	return toApplicationChecklist(stored)
}

func (a *checklistRepositoryAdapter) UpdateChecklist(ctx context.Context, checklist application.JobChecklist) (application.JobChecklist, error) {
	if err := a.repo.UpdateChecklist(ctx, toPersistenceChecklist(checklist)); err != nil {
		return application.JobChecklist{}, err
	}
	return checklist, nil
}

func (a *checklistRepositoryAdapter) FindActiveChecklist(ctx context.Context, templateID string, date time.Time) (application.JobChecklist, error) {
	stored, err := a.repo.FindActiveChecklist(ctx, templateID, date.Format(scheduler.DateLayout))
	if err != nil {
		return application.JobChecklist{}, err
	}
	return toApplicationChecklist(stored)
}

func (a *checklistRepositoryAdapter) DeactivateChecklist(ctx context.Context, id string, at time.Time) error {
	return a.repo.DeactivateChecklist(ctx, id, at)
}

func (a *checklistRepositoryAdapter) ListChecklists(ctx context.Context, filter application.ChecklistFilter) ([]application.JobChecklist, error) {
	stored, err := a.repo.ListChecklists(ctx, persistence.ChecklistFilter{
		FromDate:          formatOptionalDate(filter.FromDate),
		ToDate:            formatOptionalDate(filter.ToDate),
		LocationID:        filter.LocationID,
		AssigneeID:        filter.AssigneeID,
		IncludeUnassigned: filter.IncludeUnassigned,
		TemplateID:        filter.TemplateID,
		ActiveOnly:        filter.ActiveOnly,
	})
	if err != nil {
		return nil, err
	}
	out := make([]application.JobChecklist, 0, len(stored))
	for _, c := range stored {
		checklist, err := toApplicationChecklist(c)
		if err != nil {
			return nil, err
		}
		out = append(out, checklist)
	}
	return out, nil
}

type notificationRepositoryAdapter struct {
	repo persistence.NotificationRepository
}

func newNotificationRepositoryAdapter(repo persistence.NotificationRepository) *notificationRepositoryAdapter {
	return &notificationRepositoryAdapter{repo: repo}
}

func (a *notificationRepositoryAdapter) CreateNotification(ctx context.Context, notification application.Notification, recipientIDs []string) (application.Notification, error) {
	err := a.repo.CreateNotification(ctx, persistence.Notification{
		ID:          notification.ID,
		SenderID:    notification.SenderID,
		Title:       notification.Title,
		Body:        notification.Body,
		IsBroadcast: notification.IsBroadcast,
		CreatedAt:   notification.CreatedAt,
	}, recipientIDs)
	if err != nil {
		return application.Notification{}, err
	}
	return notification, nil
}

func (a *notificationRepositoryAdapter) ListInbox(ctx context.Context, recipientID string, unreadOnly bool) ([]application.InboxItem, error) {
	stored, err := a.repo.ListInbox(ctx, recipientID, unreadOnly)
	if err != nil {
		return nil, err
	}
	out := make([]application.InboxItem, 0, len(stored))
	for _, item := range stored {
		out = append(out, application.InboxItem{
			Notification: application.Notification{
				ID:          item.Notification.ID,
				SenderID:    item.Notification.SenderID,
				Title:       item.Notification.Title,
				Body:        item.Notification.Body,
				IsBroadcast: item.Notification.IsBroadcast,
				CreatedAt:   item.Notification.CreatedAt,
			},
			ReadAt: cloneTime(item.ReadAt),
		})
	}
	return out, nil
}

func (a *notificationRepositoryAdapter) MarkRead(ctx context.Context, notificationID, recipientID string, at time.Time) error {
	return a.repo.MarkRead(ctx, notificationID, recipientID, at)
}

func (a *notificationRepositoryAdapter) MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	return a.repo.MarkAllRead(ctx, recipientID, at)
}

func (a *notificationRepositoryAdapter) UpsertDeviceToken(ctx context.Context, token application.DeviceToken) (application.DeviceToken, error) {
	if err := a.repo.UpsertDeviceToken(ctx, persistence.DeviceToken(token)); err != nil {
		return application.DeviceToken{}, err
	}
	return token, nil
}

func (a *notificationRepositoryAdapter) DeleteDeviceToken(ctx context.Context, userID, token string) error {
	return a.repo.DeleteDeviceToken(ctx, userID, token)
}

func (a *notificationRepositoryAdapter) ListDeviceTokens(ctx context.Context, userIDs []string) ([]application.DeviceToken, error) {
	stored, err := a.repo.ListDeviceTokens(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make([]application.DeviceToken, 0, len(stored))
	for _, t := range stored {
		out = append(out, application.DeviceToken(t))
	}
	return out, nil
}

// pusherAdapter exposes a push.Sender as an application.Pusher.
type pusherAdapter struct {
	sender push.Sender
}

func newPusherAdapter(sender push.Sender) *pusherAdapter {
	return &pusherAdapter{sender: sender}
}

func (a *pusherAdapter) Push(ctx context.Context, message application.PushMessage) (application.PushReport, error) {
	report, err := a.sender.Send(ctx, push.Message{
		Title:  message.Title,
		Body:   message.Body,
		Tokens: message.Tokens,
		Data:   message.Data,
	})
	return application.PushReport{
		Success:       report.Success,
		Failure:       report.Failure,
		InvalidTokens: report.Unregistered,
	}, err
}

func toApplicationProfile(model persistence.Profile) application.Profile {
	return application.Profile{
		ID:         model.ID,
		Email:      model.Email,
		FullName:   model.FullName,
		Role:       application.Role(model.Role),
		Department: cloneString(model.Department),
		Active:     model.IsActive,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toPersistenceProfile(profile application.Profile, passwordHash string) persistence.Profile {
	return persistence.Profile{
		ID:           profile.ID,
		Email:        profile.Email,
		FullName:     profile.FullName,
		Role:         string(profile.Role),
		Department:   cloneString(profile.Department),
		PasswordHash: passwordHash,
		IsActive:     profile.Active,
		CreatedAt:    profile.CreatedAt,
		UpdatedAt:    profile.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:          model.ID,
		UserID:      model.UserID,
		Token:       model.Token,
		Fingerprint: model.Fingerprint,
		ExpiresAt:   model.ExpiresAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		RevokedAt:   cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:          session.ID,
		UserID:      session.UserID,
		Token:       session.Token,
		Fingerprint: session.Fingerprint,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
		RevokedAt:   cloneTime(session.RevokedAt),
	}
}

func toApplicationLocation(model persistence.WorkLocation) application.WorkLocation {
	return application.WorkLocation{
		ID:           model.ID,
		Name:         model.Name,
		Address:      cloneString(model.Address),
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
		RadiusMeters: model.RadiusMeters,
		Active:       model.IsActive,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceLocation(location application.WorkLocation) persistence.WorkLocation {
	return persistence.WorkLocation{
		ID:           location.ID,
		Name:         location.Name,
		Address:      cloneString(location.Address),
		Latitude:     location.Latitude,
		Longitude:    location.Longitude,
		RadiusMeters: location.RadiusMeters,
		IsActive:     location.Active,
		CreatedAt:    location.CreatedAt,
		UpdatedAt:    location.UpdatedAt,
	}
}

func toApplicationArea(model persistence.OfficeArea) application.OfficeArea {
	return application.OfficeArea{
		ID:               model.ID,
		LocationID:       model.LocationID,
		Name:             model.Name,
		Description:      cloneString(model.Description),
		GuidelineMinutes: cloneInt(model.GuidelineMinutes),
		Active:           model.IsActive,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func toPersistenceArea(area application.OfficeArea) persistence.OfficeArea {
	return persistence.OfficeArea{
		ID:               area.ID,
		LocationID:       area.LocationID,
		Name:             area.Name,
		Description:      cloneString(area.Description),
		GuidelineMinutes: cloneInt(area.GuidelineMinutes),
		IsActive:         area.Active,
		CreatedAt:        area.CreatedAt,
		UpdatedAt:        area.UpdatedAt,
	}
}

func toApplicationSchedule(model persistence.EmployeeSchedule) (application.EmployeeSchedule, error) {
	start, err := scheduler.ParseTimeOfDay(model.ShiftStart)
	if err != nil {
		return application.EmployeeSchedule{}, fmt.Errorf("schedule %s: shift_start: %w", model.ID, err)
	}
	end, err := scheduler.ParseTimeOfDay(model.ShiftEnd)
	if err != nil {
		return application.EmployeeSchedule{}, fmt.Errorf("schedule %s: shift_end: %w", model.ID, err)
	}
	effective, err := parseOptionalDate(model.EffectiveDate)
	if err != nil {
		return application.EmployeeSchedule{}, fmt.Errorf("schedule %s: effective_date: %w", model.ID, err)
	}
	endDate, err := parseOptionalDate(model.EndDate)
	if err != nil {
		return application.EmployeeSchedule{}, fmt.Errorf("schedule %s: end_date: %w", model.ID, err)
	}

	return application.EmployeeSchedule{
		ID:            model.ID,
		UserID:        model.UserID,
		DayOfWeek:     toWeekday(model.DayOfWeek),
		EffectiveDate: effective,
		EndDate:       endDate,
		ShiftStart:    start,
		ShiftEnd:      end,
		LocationID:    cloneString(model.LocationID),
		Active:        model.IsActive,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}, nil
}

func toPersistenceSchedule(schedule application.EmployeeSchedule) persistence.EmployeeSchedule {
	var effective, end *string
	if schedule.EffectiveDate != nil {
		value := schedule.EffectiveDate.Format(scheduler.DateLayout)
		effective = &value
	}
	if schedule.EndDate != nil {
		value := schedule.EndDate.Format(scheduler.DateLayout)
		end = &value
	}
	return persistence.EmployeeSchedule{
		ID:            schedule.ID,
		UserID:        schedule.UserID,
		DayOfWeek:     fromWeekday(schedule.DayOfWeek),
		EffectiveDate: effective,
		EndDate:       end,
		ShiftStart:    schedule.ShiftStart.String(),
		ShiftEnd:      schedule.ShiftEnd.String(),
		LocationID:    cloneString(schedule.LocationID),
		IsActive:      schedule.Active,
		CreatedAt:     schedule.CreatedAt,
		UpdatedAt:     schedule.UpdatedAt,
	}
}

func toApplicationAttendance(model persistence.Attendance) (application.Attendance, error) {
	workDate, err := scheduler.ParseDate(model.WorkDate)
	if err != nil {
		return application.Attendance{}, fmt.Errorf("attendance %s: work_date: %w", model.ID, err)
	}
	return application.Attendance{
		ID:                    model.ID,
		UserID:                model.UserID,
		WorkDate:              workDate,
		CheckIn:               model.CheckIn,
		CheckInLatitude:       model.CheckInLatitude,
		CheckInLongitude:      model.CheckInLongitude,
		CheckInLocationValid:  model.CheckInLocationValid,
		CheckInLocationID:     cloneString(model.CheckInLocationID),
		CheckInDistanceMeters: cloneFloat(model.CheckInDistanceMeters),
		CheckOut:              cloneTime(model.CheckOut),
		CheckOutLatitude:      cloneFloat(model.CheckOutLatitude),
		CheckOutLongitude:     cloneFloat(model.CheckOutLongitude),
		CheckOutLocationValid: cloneBool(model.CheckOutLocationValid),
		ScheduleID:            cloneString(model.ScheduleID),
		Status:                scheduler.AttendanceStatus(model.Status),
		Notes:                 cloneString(model.Notes),
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	}, nil
}

func toPersistenceAttendance(attendance application.Attendance) persistence.Attendance {
	return persistence.Attendance{
		ID:                    attendance.ID,
		UserID:                attendance.UserID,
		WorkDate:              attendance.WorkDate.Format(scheduler.DateLayout),
		CheckIn:               attendance.CheckIn,
		CheckInLatitude:       attendance.CheckInLatitude,
		CheckInLongitude:      attendance.CheckInLongitude,
		CheckInLocationValid:  attendance.CheckInLocationValid,
		CheckInLocationID:     cloneString(attendance.CheckInLocationID),
		CheckInDistanceMeters: cloneFloat(attendance.CheckInDistanceMeters),
		CheckOut:              cloneTime(attendance.CheckOut),
		CheckOutLatitude:      cloneFloat(attendance.CheckOutLatitude),
		CheckOutLongitude:     cloneFloat(attendance.CheckOutLongitude),
		CheckOutLocationValid: cloneBool(attendance.CheckOutLocationValid),
		ScheduleID:            cloneString(attendance.ScheduleID),
		Status:                string(attendance.Status),
		Notes:                 cloneString(attendance.Notes),
		CreatedAt:             attendance.CreatedAt,
		UpdatedAt:             attendance.UpdatedAt,
	}
}

func toApplicationTemplate(model persistence.JobTemplate) application.JobTemplate {
	return application.JobTemplate{
		ID:           model.ID,
		Title:        model.Title,
		Description:  cloneString(model.Description),
		LocationID:   model.LocationID,
		OfficeAreaID: cloneString(model.OfficeAreaID),
		AssigneeID:   cloneString(model.AssigneeID),
		Frequency:    recurrence.Frequency(model.Frequency),
		DayOfWeek:    toWeekday(model.DayOfWeek),
		DayOfMonth:   cloneInt(model.DayOfMonth),
		Active:       model.IsActive,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceTemplate(template application.JobTemplate) persistence.JobTemplate {
	return persistence.JobTemplate{
		ID:           template.ID,
		Title:        template.Title,
		Description:  cloneString(template.Description),
		LocationID:   template.LocationID,
		OfficeAreaID: cloneString(template.OfficeAreaID),
		AssigneeID:   cloneString(template.AssigneeID),
		Frequency:    string(template.Frequency),
		DayOfWeek:    fromWeekday(template.DayOfWeek),
		DayOfMonth:   cloneInt(template.DayOfMonth),
		IsActive:     template.Active,
		CreatedAt:    template.CreatedAt,
		UpdatedAt:    template.UpdatedAt,
	}
}

func toApplicationChecklist(model persistence.JobChecklist) (application.JobChecklist, error) {
	date, err := scheduler.ParseDate(model.ChecklistDate)
	if err != nil {
		return application.JobChecklist{}, fmt.Errorf("checklist %s: checklist_date: %w", model.ID, err)
	}
	return application.JobChecklist{
		ID:            model.ID,
		TemplateID:    model.TemplateID,
		ChecklistDate: date,
		LocationID:    model.LocationID,
		OfficeAreaID:  cloneString(model.OfficeAreaID),
		AssigneeID:    cloneString(model.AssigneeID),
		Title:         model.Title,
		StartedAt:     cloneTime(model.StartedAt),
		CompletedAt:   cloneTime(model.CompletedAt),
		StartPhotoURL: cloneString(model.StartPhotoURL),
		EndPhotoURL:   cloneString(model.EndPhotoURL),
		Notes:         cloneString(model.Notes),
		CompletedBy:   cloneString(model.CompletedBy),
		Active:        model.IsActive,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}, nil
}

func toPersistenceChecklist(checklist application.JobChecklist) persistence.JobChecklist {
	return persistence.JobChecklist{
		ID:            checklist.ID,
		TemplateID:    checklist.TemplateID,
		ChecklistDate: checklist.ChecklistDate.Format(scheduler.DateLayout),
		LocationID:    checklist.LocationID,
		OfficeAreaID:  cloneString(checklist.OfficeAreaID),
		AssigneeID:    cloneString(checklist.AssigneeID),
		Title:         checklist.Title,
		StartedAt:     cloneTime(checklist.StartedAt),
		CompletedAt:   cloneTime(checklist.CompletedAt),
		StartPhotoURL: cloneString(checklist.StartPhotoURL),
		EndPhotoURL:   cloneString(checklist.EndPhotoURL),
		Notes:         cloneString(checklist.Notes),
		CompletedBy:   cloneString(checklist.CompletedBy),
		IsActive:      checklist.Active,
		CreatedAt:     checklist.CreatedAt,
		UpdatedAt:     checklist.UpdatedAt,
	}
}

func toWeekday(day *int) *time.Weekday {
	if day == nil {
		return nil
	}
	weekday := time.Weekday(*day)
	return &weekday
}

func fromWeekday(day *time.Weekday) *int {
	if day == nil {
		return nil
	}
	value := int(*day)
	return &value
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := scheduler.ParseDate(*value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func formatOptionalDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(scheduler.DateLayout)
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
