package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/attendance-tracker/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err  error
		want string
	}{
		"nil":                {err: nil, want: ""},
		"unauthorized":       {err: ErrUnauthorized, want: "unauthorized"},
		"wrapped not found":  {err: fmt.Errorf("lookup: %w", ErrNotFound), want: "not_found"},
		"already exists":     {err: ErrAlreadyExists, want: "already_exists"},
		"already checked in": {err: ErrAlreadyCheckedIn, want: "already_checked_in"},
		"not checked in":     {err: ErrNotCheckedIn, want: "not_checked_in"},
		"session expired":    {err: ErrSessionExpired, want: "session_expired"},
		"validation":         {err: &ValidationError{FieldErrors: map[string]string{"email": "bad"}}, want: "validation"},
		"other":              {err: errors.New("boom"), want: "unexpected"},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestServiceLoggerUsesContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	requestLogger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := logging.ContextWithLogger(context.Background(), requestLogger)

	serviceLogger(ctx, slog.New(slog.NewJSONHandler(io.Discard, nil)), "AttendanceService", "CheckIn").Info("hello")

	out := buf.String()
	for _, want := range []string{`"service":"AttendanceService"`, `"operation":"CheckIn"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
