package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/attendance-tracker/internal/application"
	"github.com/example/attendance-tracker/internal/config"
	httptransport "github.com/example/attendance-tracker/internal/http"
	"github.com/example/attendance-tracker/internal/logging"
	"github.com/example/attendance-tracker/internal/persistence/sqlite"
	"github.com/example/attendance-tracker/internal/push"
	"github.com/example/attendance-tracker/internal/report"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("attendance API stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	storage, err := sqlite.Open(ctx, cfg.SQLiteDSN)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(logging.ContextWithLogger(ctx, logger)); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	sender, err := newPushSender(ctx, cfg, logger)
	if err != nil {
		return err
	}

	handler := buildHandler(storage, sender, cfg, logger, time.Now)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("attendance API listening", "addr", server.Addr, "timezone", cfg.Location.String(), "push_enabled", cfg.PushEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func newPushSender(ctx context.Context, cfg config.Config, logger *slog.Logger) (push.Sender, error) {
	if !cfg.PushEnabled() {
		logger.Info("push delivery disabled")
		return push.Disabled{}, nil
	}
	sender, err := push.NewFCMSender(ctx, cfg.FCMCredentials, logger)
	if err != nil {
		return nil, fmt.Errorf("initialise push sender: %w", err)
	}
	return sender, nil
}

// buildHandler assembles services and routes on top of an opened storage.
func buildHandler(storage *sqlite.Storage, sender push.Sender, cfg config.Config, logger *slog.Logger, now func() time.Time) http.Handler {
	idGenerator := uuid.NewString
	tokenGenerator := uuid.NewString

	profileRepo := newProfileRepositoryAdapter(storage.Profiles)
	sessionRepo := newSessionRepositoryAdapter(storage.Sessions)
	locationRepo := newLocationRepositoryAdapter(storage.Locations)
	scheduleRepo := newScheduleRepositoryAdapter(storage.Schedules)
	attendanceRepo := newAttendanceRepositoryAdapter(storage.Attendance)
	checklistRepo := newChecklistRepositoryAdapter(storage.Checklists)
	notificationRepo := newNotificationRepositoryAdapter(storage.Notifications)

	profileService := application.NewProfileServiceWithLogger(profileRepo, application.DefaultPasswordHasher, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(profileRepo, sessionRepo, application.VerifyPassword, application.DefaultPasswordHasher, tokenGenerator, now, cfg.SessionTTL, logger)
	locationService := application.NewLocationServiceWithLogger(locationRepo, idGenerator, now, cfg.LocationCacheTTL, logger)
	scheduleService := application.NewScheduleServiceWithLogger(scheduleRepo, idGenerator, now, logger)
	lateGrace := cfg.LateGrace
	attendanceService := application.NewAttendanceServiceWithLogger(
		attendanceRepo,
		locationService,
		scheduleService,
		application.AttendancePolicy{Location: cfg.Location, LateGrace: &lateGrace},
		idGenerator,
		now,
		logger,
	)
	checklistService := application.NewChecklistServiceWithLogger(checklistRepo, idGenerator, now, logger)
	notificationService := application.NewNotificationServiceWithLogger(notificationRepo, profileRepo, newPusherAdapter(sender), idGenerator, now, logger)
	reportService := application.NewReportServiceWithLogger(attendanceRepo, profileRepo, report.NewWorkbook(), cfg.Location, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(authService, profileService, logger),
		Profiles:      httptransport.NewProfileHandler(profileService, logger),
		Locations:     httptransport.NewLocationHandler(locationService, logger),
		Schedules:     httptransport.NewScheduleHandler(scheduleService, logger),
		Attendance:    httptransport.NewAttendanceHandler(attendanceService, logger),
		Checklists:    httptransport.NewChecklistHandler(checklistService, logger),
		Notifications: httptransport.NewNotificationHandler(notificationService, logger),
		Reports:       httptransport.NewReportHandler(reportService, logger),
		Sessions:      authService,
		Logger:        logger,
		Middleware:    []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})
}
