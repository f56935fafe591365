package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pencilsketch/imageio"
	"pencilsketch/sketch"
)

// Config holds all configuration values
type Config struct {
	// Pipeline
	Workers    int           // Worker goroutines; 0 uses GOMAXPROCS
	PresetName string        // Selected preset
	PresetFile string        // Optional YAML presets file
	Presets    Presets       // Built-in presets merged with PresetFile
	Params     sketch.Params // Parameters of PresetName

	// Output
	OutputDir    string
	OutputFormat imageio.Format
	JPEGQuality  int
	MaxDimension int // Longest side after downscale; 0 keeps the input size
	WriteMono    bool
	WriteColored bool

	// Hot folder
	InboxDir     string
	DoneDir      string
	FailedDir    string
	PollInterval time.Duration

	// History
	HistoryDB            string // SQLite path; empty disables history
	HistoryRetentionDays int

	// Logging
	LogFile  string
	DevMode  bool
	LogLevel string
}

// LoadConfig reads configuration from the environment. A .env file, if any,
// must already have been loaded by the caller.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		PresetName: GetEnvOrDefault("SKETCH_PRESET", DefaultPreset),
		PresetFile: GetEnvOrDefault("SKETCH_PRESET_FILE", ""),
		OutputDir:  GetEnvOrDefault("OUTPUT_DIR", "./output"),
		InboxDir:   GetEnvOrDefault("INBOX_DIR", ""),
		HistoryDB:  GetEnvOrDefault("HISTORY_DB", ""),
		LogFile:    GetEnvOrDefault("LOG_FILE", "pencil.log"),
		LogLevel:   GetEnvOrDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Workers, err = ParseIntEnv("SKETCH_WORKERS", 0); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality, err = ParseIntEnv("JPEG_QUALITY", imageio.DefaultJPEGQuality); err != nil {
		return nil, err
	}
	if cfg.MaxDimension, err = ParseIntEnv("MAX_DIMENSION", 0); err != nil {
		return nil, err
	}
	if cfg.WriteMono, err = ParseBoolEnv("WRITE_MONO", true); err != nil {
		return nil, err
	}
	if cfg.WriteColored, err = ParseBoolEnv("WRITE_COLORED", true); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = ParseDurationEnv("POLL_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.HistoryRetentionDays, err = ParseIntEnv("HISTORY_RETENTION_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.DevMode, err = ParseBoolEnv("DEV_MODE", false); err != nil {
		return nil, err
	}

	formatName := GetEnvOrDefault("OUTPUT_FORMAT", string(imageio.FormatPNG))
	if cfg.OutputFormat, err = imageio.ParseFormat(formatName); err != nil {
		return nil, ErrInvalidOutputFormat(formatName)
	}

	if cfg.InboxDir != "" {
		cfg.DoneDir = GetEnvOrDefault("DONE_DIR", filepath.Join(cfg.InboxDir, "done"))
		cfg.FailedDir = GetEnvOrDefault("FAILED_DIR", filepath.Join(cfg.InboxDir, "failed"))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Presets, err = LoadPresets(cfg.PresetFile); err != nil {
		return nil, err
	}
	if err := cfg.UsePreset(cfg.PresetName); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsePreset switches the active parameters to the named preset.
func (c *Config) UsePreset(name string) error {
	params, err := c.Presets.Resolve(name)
	if err != nil {
		return err
	}
	c.PresetName = name
	c.Params = params
	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Workers < 0:
		return ErrInvalidValue("SKETCH_WORKERS", fmt.Sprint(c.Workers), "must be >= 0")
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return ErrInvalidValue("JPEG_QUALITY", fmt.Sprint(c.JPEGQuality), "must be between 1 and 100")
	case c.MaxDimension < 0:
		return ErrInvalidValue("MAX_DIMENSION", fmt.Sprint(c.MaxDimension), "must be >= 0")
	case c.PollInterval <= 0:
		return ErrInvalidValue("POLL_INTERVAL", c.PollInterval.String(), "must be positive")
	case c.HistoryRetentionDays < 0:
		return ErrInvalidValue("HISTORY_RETENTION_DAYS", fmt.Sprint(c.HistoryRetentionDays), "must be >= 0")
	case !c.WriteMono && !c.WriteColored:
		return ErrInvalidValue("WRITE_MONO", "false", "WRITE_MONO and WRITE_COLORED cannot both be disabled")
	}
	return nil
}

// EnsureOutputDir creates the output directory if needed.
func (c *Config) EnsureOutputDir() error {
	return ensureDir("OUTPUT_DIR", c.OutputDir)
}

// EnsureInboxDirs checks that the hot folder is configured and creates the
// inbox, done and failed directories. OUTPUT_DIR may not be the inbox itself,
// or every rendering would be picked up as new input.
func (c *Config) EnsureInboxDirs() error {
	if c.InboxDir == "" {
		return ErrMissingConfig("INBOX_DIR")
	}
	if samePath(c.OutputDir, c.InboxDir) {
		return ErrInvalidValue("OUTPUT_DIR", c.OutputDir, "must differ from INBOX_DIR")
	}
	if err := ensureDir("INBOX_DIR", c.InboxDir); err != nil {
		return err
	}
	if err := ensureDir("DONE_DIR", c.DoneDir); err != nil {
		return err
	}
	return ensureDir("FAILED_DIR", c.FailedDir)
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func ensureDir(varName, path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return ErrInvalidDirectory(varName, path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return ErrInvalidDirectory(varName, path, err)
	}
	if !info.IsDir() {
		return ErrInvalidDirectory(varName, path, fmt.Errorf("not a directory"))
	}
	return nil
}
