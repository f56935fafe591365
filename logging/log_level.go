package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// ParseLevel parses a LOG_LEVEL value. Parsing is case-insensitive and an
// empty or unknown value yields defaultLevel.
//
// Valid levels: debug, info, warn, warning, error
func ParseLevel(levelStr string, defaultLevel zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return defaultLevel
	}
}
