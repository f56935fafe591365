package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Default file writer configuration values
const (
	DefaultMaxSizeMB  = 100
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
)

// FileWriterConfig holds rotation settings for the log file.
// Zero values use the defaults.
type FileWriterConfig struct {
	// MaxSizeMB is the size in megabytes at which the file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files to retain.
	MaxBackups int

	// MaxAgeDays is the age after which rotated files are deleted.
	MaxAgeDays int

	// NoCompress disables gzip compression of rotated files.
	NoCompress bool
}

// NewFileWriter creates a rotating zapcore.WriteSyncer with the default
// configuration: 100MB, 5 backups, 30 days, compressed.
func NewFileWriter(path string) zapcore.WriteSyncer {
	return NewFileWriterWithConfig(path, FileWriterConfig{})
}

// NewFileWriterWithConfig creates a rotating zapcore.WriteSyncer backed by lumberjack.
func NewFileWriterWithConfig(path string, config FileWriterConfig) zapcore.WriteSyncer {
	cfg := applyFileWriterDefaults(config)
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   !cfg.NoCompress,
	})
}

func applyFileWriterDefaults(config FileWriterConfig) FileWriterConfig {
	if config.MaxSizeMB <= 0 {
		config.MaxSizeMB = DefaultMaxSizeMB
	}
	if config.MaxBackups <= 0 {
		config.MaxBackups = DefaultMaxBackups
	}
	if config.MaxAgeDays <= 0 {
		config.MaxAgeDays = DefaultMaxAgeDays
	}
	return config
}

// checkWritable creates the log directory and verifies the file can be opened
// for appending. lumberjack only opens the file on first write.
func checkWritable(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
