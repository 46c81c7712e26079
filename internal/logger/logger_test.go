package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to parse log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: DEBUG, Format: JSONFormat, Output: &buf, Component: "tags"})

	log.Info("rendered fragment", map[string]interface{}{"target_id": 7})
	log.Error("query failed", errors.New("boom"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}

	first := entries[0]
	if first["level"] != "INFO" {
		t.Errorf("Expected level INFO, got %v", first["level"])
	}
	if first["message"] != "rendered fragment" {
		t.Errorf("Unexpected message %v", first["message"])
	}
	if first["component"] != "tags" {
		t.Errorf("Expected component tags, got %v", first["component"])
	}
	if first["target_id"] != float64(7) {
		t.Errorf("Expected target_id 7, got %v", first["target_id"])
	}
	if _, ok := first["timestamp"]; !ok {
		t.Error("Expected timestamp key")
	}

	second := entries[1]
	if second["level"] != "ERROR" {
		t.Errorf("Expected level ERROR, got %v", second["level"])
	}
	if second["error"] != "boom" {
		t.Errorf("Expected error boom, got %v", second["error"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: WARN, Format: JSONFormat, Output: &buf})

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["message"] != "shown" {
		t.Fatalf("Expected only the warning, got %v", entries)
	}

	buf.Reset()
	log.SetLevel(DEBUG)
	log.Debugf("now %s", "visible")
	entries = decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["message"] != "now visible" {
		t.Fatalf("Expected debug entry after SetLevel, got %v", entries)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Level: INFO, Format: JSONFormat, Output: &buf, Component: "server"})
	child := root.WithComponent("store")

	if child.Component() != "store" {
		t.Errorf("Expected component store, got %s", child.Component())
	}
	child.Info("opened")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["component"] != "store" {
		t.Fatalf("Expected store component entry, got %v", entries)
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: INFO, Format: TextFormat, Output: &buf})
	log.Info("plain line")

	out := buf.String()
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "plain line") {
		t.Errorf("Unexpected text output %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Error("Text format should not emit JSON")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"Error", ERROR},
		{"fatal", FATAL},
		{"verbose", -1},
		{"", -1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_FILE", "")

	cfg := ConfigFromEnv()
	if cfg.Level != ERROR {
		t.Errorf("Expected ERROR level, got %v", cfg.Level)
	}
	if cfg.Format != TextFormat {
		t.Errorf("Expected text format, got %v", cfg.Format)
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNop()
	log.Info("discarded")
	log.Error("discarded", errors.New("x"))
	if log.WithComponent("a").Component() != "a" {
		t.Error("Expected component on nop logger child")
	}
}
