package core

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		contains []string
	}{
		{
			name: "error with action",
			err: &ConfigError{
				Code:    "TEST_CODE",
				Message: "Test message",
				Action:  "Take this action",
			},
			contains: []string{"Test message", "Take this action"},
		},
		{
			name: "error without action",
			err: &ConfigError{
				Code:    "TEST_CODE",
				Message: "Test message only",
			},
			contains: []string{"Test message only"},
		},
		{
			name: "error with cause",
			err: &ConfigError{
				Code:    "TEST_CODE",
				Message: "Outer",
				Err:     errors.New("inner cause"),
			},
			contains: []string{"Outer", "inner cause"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(errStr, s) {
					t.Errorf("ConfigError.Error() = %q, expected to contain %q", errStr, s)
				}
			}
		})
	}
}

func TestConfigErrorConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  *ConfigError
		code string
	}{
		{"invalid preset", ErrInvalidPreset("fine", cause), ErrCodeInvalidPreset},
		{"preset not found", ErrPresetNotFound("x", []string{"pencil"}), ErrCodePresetNotFound},
		{"preset file unreadable", ErrPresetFileUnreadable("p.yaml", cause), ErrCodePresetFileUnreadable},
		{"invalid output format", ErrInvalidOutputFormat("webp"), ErrCodeInvalidOutputFormat},
		{"invalid directory", ErrInvalidDirectory("OUTPUT_DIR", "/x", cause), ErrCodeInvalidDirectory},
		{"invalid value", ErrInvalidValue("JPEG_QUALITY", "0", "too low"), ErrCodeInvalidValue},
		{"missing config", ErrMissingConfig("INBOX_DIR"), ErrCodeMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" || tt.err.Action == "" {
				t.Errorf("expected message and action, got %+v", tt.err)
			}
		})
	}
}

func TestConfigErrorUnwrap(t *testing.T) {
	err := ErrPresetFileUnreadable("presets.yaml", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected ConfigError to unwrap to its cause")
	}
}

func TestIsConfigError(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", ErrMissingConfig("INBOX_DIR"))

	tests := []struct {
		name     string
		err      error
		wantOK   bool
		wantCode string
	}{
		{"direct", ErrInvalidOutputFormat("raw"), true, ErrCodeInvalidOutputFormat},
		{"wrapped", wrapped, true, ErrCodeMissingConfig},
		{"plain error", errors.New("plain"), false, ""},
		{"nil", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := IsConfigError(tt.err)
			if ok != tt.wantOK {
				t.Errorf("IsConfigError() ok = %v, want %v", ok, tt.wantOK)
			}
			if code := GetErrorCode(tt.err); code != tt.wantCode {
				t.Errorf("GetErrorCode() = %q, want %q", code, tt.wantCode)
			}
		})
	}
}
