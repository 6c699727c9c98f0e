package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name     string
		json     bool
		debug    bool
		encoding string
		level    zapcore.Level
	}{
		{name: "console info", encoding: "console", level: zapcore.InfoLevel},
		{name: "json debug", json: true, debug: true, encoding: "json", level: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config(tt.json, tt.debug)
			if cfg.Encoding != tt.encoding {
				t.Fatalf("expected %s encoding, got %s", tt.encoding, cfg.Encoding)
			}
			if cfg.Level.Level() != tt.level {
				t.Fatalf("expected %s level, got %s", tt.level, cfg.Level.Level())
			}
			if cfg.EncoderConfig.MessageKey != "step" {
				t.Fatalf("unexpected message key %q", cfg.EncoderConfig.MessageKey)
			}
			if cfg.InitialFields["service"] != Service {
				t.Fatalf("missing service field: %v", cfg.InitialFields)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	fields := Strings("  provider ", " gemini ", "empty", "  ", " ", "no key", "dangling")

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "provider" || fields[0].String != "gemini" {
		t.Fatalf("unexpected field %+v", fields[0])
	}
}

func TestScopedLoggers(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ForTool(ForRun(ForProvider(base, "gemini", "gemini-2.5-flash"), "run-1"), "score_profile").Info("calling tool")
	ForProvider(base, "openai", "").Info("no model")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	for key, want := range map[string]string{
		FieldProvider: "gemini",
		FieldModel:    "gemini-2.5-flash",
		FieldRunID:    "run-1",
		FieldTool:     "score_profile",
	} {
		if ctx[key] != want {
			t.Fatalf("expected %s=%s, got %v", key, want, ctx[key])
		}
	}

	if _, ok := entries[1].ContextMap()[FieldModel]; ok {
		t.Fatalf("empty model must be omitted: %v", entries[1].ContextMap())
	}
}

func TestWithNilLogger(t *testing.T) {
	l := With(nil, zap.String("foo", "bar"))
	if l == nil {
		t.Fatal("expected a no-op logger")
	}
	l.Info("does not panic")

	if ForRun(nil, "") == nil {
		t.Fatal("expected a no-op logger")
	}
}
