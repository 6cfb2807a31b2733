package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestComponentPrefersContextLogger(t *testing.T) {
	var ctxBuf, baseBuf bytes.Buffer
	ctxLogger := slog.New(slog.NewJSONHandler(&ctxBuf, nil))
	base := slog.New(slog.NewJSONHandler(&baseBuf, nil))

	ctx := ContextWithLogger(context.Background(), ctxLogger)
	Component(ctx, base, "service", "AttendanceService", "CheckIn", "user_id", "u-1").Info("hello")

	if baseBuf.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %q", baseBuf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(ctxBuf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	if entry["service"] != "AttendanceService" || entry["operation"] != "CheckIn" || entry["user_id"] != "u-1" {
		t.Fatalf("unexpected attributes: %v", entry)
	}
}

func TestComponentFallsBackToBase(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	Component(context.Background(), base, "handler", "AuthHandler", "").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	if entry["handler"] != "AuthHandler" {
		t.Fatalf("expected handler attribute, got %v", entry)
	}
	if _, ok := entry["operation"]; ok {
		t.Fatalf("empty operation should be omitted, got %v", entry)
	}
}

func TestFromContextNil(t *testing.T) {
	if FromContext(nil) != nil {
		t.Fatal("expected nil logger for nil context")
	}
	if FromContext(context.Background()) != nil {
		t.Fatal("expected nil logger when none attached")
	}
}
