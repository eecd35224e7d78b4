package logging

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RedactedPlaceholder replaces sensitive data
const RedactedPlaceholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(sk-[a-zA-Z0-9_-]{20,})`),                  // OpenAI keys, legacy and project-scoped
	regexp.MustCompile(`(AIza[a-zA-Z0-9_-]{35})`),                  // Google API keys
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),       // Bearer tokens
	regexp.MustCompile(`(?i)(api_?key"?\s*[:=]\s*"?[^\s,;"]{8,})`), // api_key=..., "apiKey": "..."
}

// sensitiveKeys are field name fragments whose values are always redacted
var sensitiveKeys = []string{
	"API_KEY",
	"APIKEY",
	"SECRET",
	"TOKEN",
	"PASSWORD",
	"PRIMARY",
	"SECONDARY",
}

// RedactSensitiveData replaces every detected key or token in value
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range sensitivePatterns {
		value = pattern.ReplaceAllString(value, RedactedPlaceholder)
	}
	return value
}

// IsSensitiveField reports whether a field name indicates a secret
func IsSensitiveField(name string) bool {
	upper := strings.ToUpper(name)
	for _, key := range sensitiveKeys {
		if strings.Contains(upper, key) {
			return true
		}
	}
	return false
}

func redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}
	result := make([]zap.Field, len(fields))
	for i, f := range fields {
		result[i] = redactField(f)
	}
	return result
}

func redactField(f zap.Field) zap.Field {
	if IsSensitiveField(f.Key) {
		return zap.String(f.Key, RedactedPlaceholder)
	}

	switch f.Type {
	case zapcore.StringType:
		if r := RedactSensitiveData(f.String); r != f.String {
			return zap.String(f.Key, r)
		}
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok {
			if r := RedactSensitiveData(err.Error()); r != err.Error() {
				return zap.NamedError(f.Key, errors.New(r))
			}
		}
	}
	return f
}
