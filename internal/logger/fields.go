package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSearchID ties every log entry of one search request together.
	FieldSearchID = "search_id"
	FieldSource   = "source"

	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
)

// Strings turns key/value pairs into zap fields. Pairs with a blank key or
// value are skipped, as is a trailing key without a value.
func Strings(kv ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key := strings.TrimSpace(kv[i])
		value := strings.TrimSpace(kv[i+1])
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}
	return fields
}

// With attaches fields to the logger. A nil logger becomes a no-op one.
func With(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// WithSearch attaches the request-scoped search fields. Empty values are left
// out so the source can be added once it is known.
func WithSearch(logger *zap.Logger, searchID, source string) *zap.Logger {
	return With(logger, Strings(FieldSearchID, searchID, FieldSource, source)...)
}

// WithAI attaches the provider and model of the AI reviewer.
func WithAI(logger *zap.Logger, provider, model string) *zap.Logger {
	return With(logger, Strings(FieldProvider, provider, FieldModel, model)...)
}
