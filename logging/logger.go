// Package logging provides the structured logger shared by every component:
// zap entries teed to the console and to a rotated JSON log file.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures a Logger.
type Options struct {
	// Development selects the colored console encoder and debug level.
	Development bool

	// Level is the minimum level logged. Ignored when Development is set.
	Level zapcore.Level

	// FilePath is the JSON log file. Empty logs to the console only.
	FilePath string

	// File tunes rotation of FilePath. Zero fields use the defaults.
	File FileWriterConfig

	// Console receives console output. Nil uses stdout.
	Console zapcore.WriteSyncer
}

// Logger wraps zap.Logger with the console/file tee used by every command.
//
// Example:
//
//	logger, err := logging.New(logging.Options{FilePath: "pencil.log"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("render complete", logging.JobID(id), logging.Dimensions(w, h))
type Logger struct {
	zap         *zap.Logger
	sugar       *zap.SugaredLogger
	development bool
	filePath    string
}

// New creates a Logger from opts.
func New(opts Options) (*Logger, error) {
	level := opts.Level
	if opts.Development {
		level = zapcore.DebugLevel
	}

	console := opts.Console
	if console == nil {
		console = zapcore.Lock(os.Stdout)
	}

	var file zapcore.WriteSyncer
	if opts.FilePath != "" {
		if err := checkWritable(opts.FilePath); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = NewFileWriterWithConfig(opts.FilePath, opts.File)
	}

	core := NewMultiCore(level, console, file, opts.Development)
	return wrap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), opts.Development, opts.FilePath), nil
}

// NewLogger creates a Logger with default rotation. Development mode logs at
// debug level with colored console output; otherwise info level and JSON.
func NewLogger(isDevelopment bool, logFilePath string) (*Logger, error) {
	return New(Options{
		Development: isDevelopment,
		Level:       zapcore.InfoLevel,
		FilePath:    logFilePath,
	})
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return wrap(zap.NewNop(), false, "")
}

func wrap(z *zap.Logger, development bool, filePath string) *Logger {
	return &Logger{
		zap:         z,
		sugar:       z.Sugar(),
		development: development,
		filePath:    filePath,
	}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs a message at DebugLevel.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, fields...)
}

// Info logs a message at InfoLevel.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, fields...)
}

// Warn logs a message at WarnLevel.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, fields...)
}

// Error logs a message at ErrorLevel.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, fields...)
}

// Fatal logs a message at FatalLevel then calls os.Exit(1).
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(msg, fields...)
}

// Infof logs a formatted message at InfoLevel.
func (l *Logger) Infof(template string, args ...any) {
	l.sugar.Infof(template, args...)
}

// Warnf logs a formatted message at WarnLevel.
func (l *Logger) Warnf(template string, args ...any) {
	l.sugar.Warnf(template, args...)
}

// Errorf logs a formatted message at ErrorLevel.
func (l *Logger) Errorf(template string, args ...any) {
	l.sugar.Errorf(template, args...)
}

// With creates a child logger that adds fields to every entry.
//
// Example:
//
//	jobLogger := logger.With(logging.JobID(id), logging.InputPath(path))
//	jobLogger.Info("decoded")
func (l *Logger) With(fields ...zap.Field) *Logger {
	return wrap(l.zap.With(fields...), l.development, l.filePath)
}

// Named adds a component name, shown as the "source" key.
//
// Example:
//
//	renderLogger := logger.Named("render")
//	inboxLogger := logger.Named("inbox")
func (l *Logger) Named(name string) *Logger {
	return wrap(l.zap.Named(name), l.development, l.filePath)
}

// Zap returns the underlying zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// IsDevelopment returns true if the logger is configured for development mode.
func (l *Logger) IsDevelopment() bool {
	return l.development
}

// LogFilePath returns the path to the log file, empty when logging to console only.
func (l *Logger) LogFilePath() string {
	return l.filePath
}
