package logging

import (
	"go.uber.org/zap/zapcore"
)

// NewMultiCore tees log entries to the console and, when file is non-nil, to
// the log file. The file always receives JSON. The console receives colored
// human-readable lines in development mode and JSON otherwise.
//
// Example:
//
//	var buf bytes.Buffer
//	core := NewMultiCore(zapcore.DebugLevel, zapcore.AddSync(os.Stdout), zapcore.AddSync(&buf), true)
//	logger := zap.New(core)
func NewMultiCore(level zapcore.LevelEnabler, console, file zapcore.WriteSyncer, isDev bool) zapcore.Core {
	var consoleEncoder zapcore.Encoder
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, console, level)

	if file == nil {
		return consoleCore
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(NewEncoderConfig()), file, level)
	return zapcore.NewTee(consoleCore, fileCore)
}
