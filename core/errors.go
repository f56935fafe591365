package core

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
	Err     error  // Underlying cause, if any
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", msg, e.Action)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Error codes for configuration errors
const (
	ErrCodeInvalidPreset        = "INVALID_PRESET"
	ErrCodePresetNotFound       = "PRESET_NOT_FOUND"
	ErrCodePresetFileUnreadable = "PRESET_FILE_UNREADABLE"
	ErrCodeInvalidOutputFormat  = "INVALID_OUTPUT_FORMAT"
	ErrCodeInvalidDirectory     = "INVALID_DIRECTORY"
	ErrCodeInvalidValue         = "INVALID_VALUE"
	ErrCodeMissingConfig        = "MISSING_CONFIG"
)

// ErrInvalidPreset returns an error for a preset whose parameters do not validate.
func ErrInvalidPreset(name string, cause error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPreset,
		Message: fmt.Sprintf("Invalid preset '%s'", name),
		Action:  "Fix the preset values; sizes must be >= 0 and sigma, gamma and saturation > 0",
		Err:     cause,
	}
}

// ErrPresetNotFound returns an error for an unknown preset name.
func ErrPresetNotFound(name string, known []string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodePresetNotFound,
		Message: fmt.Sprintf("Preset not found: %s", name),
		Action:  fmt.Sprintf("Set SKETCH_PRESET to one of %v or define it in SKETCH_PRESET_FILE", known),
	}
}

// ErrPresetFileUnreadable returns an error when the presets file cannot be read or parsed.
func ErrPresetFileUnreadable(path string, cause error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodePresetFileUnreadable,
		Message: fmt.Sprintf("Cannot load presets from %s", path),
		Action:  "Check that SKETCH_PRESET_FILE points to a readable YAML file with a top-level 'presets' map",
		Err:     cause,
	}
}

// ErrInvalidOutputFormat returns an error for an output format no encoder handles.
func ErrInvalidOutputFormat(format string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidOutputFormat,
		Message: fmt.Sprintf("Unsupported OUTPUT_FORMAT '%s'", format),
		Action:  "Set OUTPUT_FORMAT to png, jpeg, gif, bmp or tiff",
	}
}

// ErrInvalidDirectory returns an error for a directory setting that cannot be used.
func ErrInvalidDirectory(varName, path string, cause error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidDirectory,
		Message: fmt.Sprintf("%s is not a usable directory: %s", varName, path),
		Action:  fmt.Sprintf("Create %s or point %s at a writable directory", path, varName),
		Err:     cause,
	}
}

// ErrInvalidValue returns an error for a setting outside its accepted range or syntax.
func ErrInvalidValue(varName, value, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid %s '%s': %s", varName, value, reason),
		Action:  fmt.Sprintf("Correct %s in your environment or .env file", varName),
	}
}

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// IsConfigError checks if an error is or wraps a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
