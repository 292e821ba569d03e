package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level   string
		debug   bool
		warnOff bool
	}{
		{level: "", debug: false},
		{level: "DEBUG", debug: true},
		{level: "warning", debug: false},
		{level: "error", debug: false, warnOff: true},
		{level: "nonsense", debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewLogger(tt.level)
			if err != nil {
				t.Fatalf("NewLogger failed: %v", err)
			}
			if got := logger.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
			if got := !logger.Core().Enabled(zapcore.WarnLevel); got != tt.warnOff {
				t.Errorf("warn disabled = %v, want %v", got, tt.warnOff)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := L()
	SetLogger(zap.New(core))
	defer SetLogger(previous)

	id := NewRequestID()
	if len(id) != 26 {
		t.Fatalf("expected a 26 character ULID, got %q", id)
	}

	ctx := WithRequest(context.Background(), id)
	FromContext(ctx).Info("extracted")
	Warn("part %s skipped", "word/header1.xml")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != id {
		t.Errorf("request_id = %v, want %s", got, id)
	}
	if entries[1].Message != "part word/header1.xml skipped" {
		t.Errorf("unexpected message %q", entries[1].Message)
	}
	if !IsDebugEnabled() {
		t.Error("expected debug enabled on the observer core")
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()) != L() {
		t.Error("expected package logger without request logger")
	}
}
