package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by every package that logs about a run.
const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	FieldRunID    = "run_id"
	FieldTool     = "tool"
)

// Strings turns key/value pairs into zap string fields. Pairs with an empty
// key or value are skipped, as is a trailing key without a value.
func Strings(pairs ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key := strings.TrimSpace(pairs[i])
		value := strings.TrimSpace(pairs[i+1])
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}
	return fields
}

// With attaches fields to logger. A nil logger becomes a no-op logger.
func With(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// ForProvider tags logger with the text generation provider and model.
func ForProvider(logger *zap.Logger, provider, model string) *zap.Logger {
	return With(logger, Strings(FieldProvider, provider, FieldModel, model)...)
}

func ForRun(logger *zap.Logger, runID string) *zap.Logger {
	return With(logger, Strings(FieldRunID, runID)...)
}

func ForTool(logger *zap.Logger, tool string) *zap.Logger {
	return With(logger, Strings(FieldTool, tool)...)
}
