package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is attached to every entry so logs from the server and CLI can be told apart
// from other processes writing to the same sink.
const Service = "smart-recruiter"

// New builds the application logger. Console encoding is used unless json is set.
func New(json bool, debug bool) (*zap.Logger, error) {
	return Config(json, debug).Build()
}

// Config returns the zap configuration New builds from.
func Config(json bool, debug bool) zap.Config {
	encoding := "console"
	if json {
		encoding = "json"
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       debug,
		DisableStacktrace: !debug,
		Encoding:          encoding,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields:     map[string]any{"service": Service},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "step",
			LevelKey:       "level",
			TimeKey:        "time",
			CallerKey:      "caller",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}
}
