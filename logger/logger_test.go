package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "restorm-test", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("invalid json log line %q: %v", line, err)
	}
	return out
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("RESTORM_LOG_LEVEL", "debug")
	os.Setenv("RESTORM_LOG_FORMAT", "json")
	defer os.Unsetenv("RESTORM_LOG_LEVEL")
	defer os.Unsetenv("RESTORM_LOG_FORMAT")

	if NewFromEnv("env-svc") == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug").WithComponent("orm")

	l.Debug("model registered", Fields(FieldModel, "Person", FieldCount, 2))

	line := decodeLine(t, &buf)
	if line["message"] != "model registered" {
		t.Errorf("message = %v", line["message"])
	}
	if line[FieldComponent] != "orm" {
		t.Errorf("component = %v", line[FieldComponent])
	}
	if line[FieldModel] != "Person" {
		t.Errorf("model = %v", line[FieldModel])
	}
	if line[FieldService] != "restorm-test" {
		t.Errorf("service = %v", line[FieldService])
	}
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug/info to be filtered, got %q", buf.String())
	}
	l.Warn("shown")
	if decodeLine(t, &buf)["level"] != "warn" {
		t.Error("expected warn level line")
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	jsonLogger(&buf, "info").WithContext(ctx).Info("hello")

	if got := decodeLine(t, &buf)[FieldRequestID]; got != "req-1" {
		t.Errorf("request_id = %v, want req-1", got)
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")

	if got := decodeLine(t, &buf)["error"]; got != "boom" {
		t.Errorf("error = %v, want boom", got)
	}
}

func TestNop(t *testing.T) {
	Nop().Error("nothing happens")
}

func TestInit(t *testing.T) {
	Init(&Config{Level: "info", Format: "console", ServiceName: "restorm"})
	gl := GetGlobalLogger()
	if gl == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	if gl.service != "restorm" {
		t.Errorf("service = %q", gl.service)
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	SetGlobalLogger(Nop())
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
}

func TestRegistry(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")
	Register("orm-test", l)
	defer Unregister("orm-test")

	if Get("orm-test") != l {
		t.Error("expected registered logger")
	}
	if Get("unknown-component") == nil {
		t.Error("expected fallback logger for unknown names")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(f) != 2 || f["a"] != 1 || f["b"] != "two" {
		t.Errorf("unexpected fields: %v", f)
	}

	ef := ErrorFields("list", errors.New("bad"))
	if ef[FieldOperation] != "list" || ef[FieldError] != "bad" {
		t.Errorf("unexpected error fields: %v", ef)
	}

	df := DurationFields("list", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration: %v", df[FieldDuration])
	}

	mf := MergeWithError(nil, errors.New("x"))
	if mf[FieldError] != "x" {
		t.Errorf("unexpected merged fields: %v", mf)
	}
}
