package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldUser is the structured log field key for the signed-in user's email.
	FieldUser = "user"
	// FieldAPI is the structured log field key for the backend base URL.
	FieldAPI = "api_url"
	// FieldCommand is the structured log field key for the running CLI command.
	FieldCommand = "command"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns the fields identifying who talks to which backend.
// Empty values are left out.
func CommonFields(userEmail, apiURL string) []zap.Field {
	return StringFields(
		StringField{Key: FieldUser, Value: userEmail},
		StringField{Key: FieldAPI, Value: apiURL},
	)
}

func WithCommonFields(logger *zap.Logger, userEmail, apiURL string) *zap.Logger {
	return WithFields(logger, CommonFields(userEmail, apiURL)...)
}
