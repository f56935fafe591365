package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewMultiCore_Development(t *testing.T) {
	var consoleBuf, fileBuf bytes.Buffer

	core := NewMultiCore(zapcore.InfoLevel, zapcore.AddSync(&consoleBuf), zapcore.AddSync(&fileBuf), true)
	logger := zap.New(core)
	logger.Info("tee test", zap.String("key", "value"))
	_ = logger.Sync()

	if !strings.Contains(consoleBuf.String(), "tee test") {
		t.Errorf("console output %q missing message", consoleBuf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(fileBuf.Bytes()), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v", err)
	}
	if entry[FieldMessage] != "tee test" || entry["key"] != "value" {
		t.Errorf("unexpected file entry: %v", entry)
	}
}

func TestNewMultiCore_ProductionConsoleIsJSON(t *testing.T) {
	var consoleBuf bytes.Buffer

	core := NewMultiCore(zapcore.InfoLevel, zapcore.AddSync(&consoleBuf), nil, false)
	logger := zap.New(core)
	logger.Info("json console")
	_ = logger.Sync()

	if !json.Valid(bytes.TrimSpace(consoleBuf.Bytes())) {
		t.Errorf("console output %q is not JSON", consoleBuf.String())
	}
}

func TestNewMultiCore_LevelFilter(t *testing.T) {
	var consoleBuf, fileBuf bytes.Buffer

	core := NewMultiCore(zapcore.WarnLevel, zapcore.AddSync(&consoleBuf), zapcore.AddSync(&fileBuf), false)
	logger := zap.New(core)
	logger.Info("dropped")
	logger.Warn("kept")
	_ = logger.Sync()

	for name, buf := range map[string]*bytes.Buffer{"console": &consoleBuf, "file": &fileBuf} {
		out := buf.String()
		if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
			t.Errorf("%s output = %q, want only warn entry", name, out)
		}
	}
}
