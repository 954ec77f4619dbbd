package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"radarcli/internal/config"
)

func readLastEntry(t *testing.T, path string) map[string]interface{} {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var logEntry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &logEntry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}
	return logEntry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "radar.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger is nil")
	}

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}

	logger.Info("snapshot rebuilt", "session_id", "abc")
	CloseLogFile()

	logEntry := readLastEntry(t, logFile)
	if logEntry["msg"] != "snapshot rebuilt" {
		t.Errorf("Expected msg='snapshot rebuilt', got %v", logEntry["msg"])
	}
	if logEntry["session_id"] != "abc" {
		t.Errorf("Expected session_id='abc', got %v", logEntry["session_id"])
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level='INFO', got %v", logEntry["level"])
	}

	// A second call keeps the first logger
	again, err := InitializeLogger(config.LoggingConfig{Level: "debug"})
	if err != nil {
		t.Fatalf("Second initialization failed: %v", err)
	}
	if again != logger {
		t.Error("Expected InitializeLogger to be idempotent")
	}
}

func TestInitializeLogger_BadPath(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	// A regular file cannot be used as the log directory
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: filepath.Join(blocker, "radar.log"),
	})
	if err == nil {
		t.Fatal("Expected an error for an unusable log path")
	}
}

func TestTraceIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")

	_, err := InitializeLogger(config.LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := WithTraceID(context.Background(), "test-trace-123")

	// The handler reads the trace ID from the context alone
	GetLogger().InfoContext(ctx, "test with trace")
	CloseLogFile()

	logEntry := readLastEntry(t, logFile)
	if logEntry["trace_id"] != "test-trace-123" {
		t.Errorf("Expected trace_id='test-trace-123', got %v", logEntry["trace_id"])
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(&buf, tt.level, false))

			switch tt.expected {
			case "DEBUG":
				logger.Debug("test debug")
			case "INFO":
				logger.Info("test info")
			case "WARN":
				logger.Warn("test warn")
			case "ERROR":
				logger.Error("test error")
			}

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("Failed to parse log JSON: %v", err)
			}
			if logEntry["level"] != tt.expected {
				t.Errorf("Expected level=%s, got %v", tt.expected, logEntry["level"])
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "warn", false))

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("Expected info record to be filtered, got %q", buf.String())
	}

	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("Expected warn record, got %q", buf.String())
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	if traceID == "" {
		t.Fatal("EnsureTraceID did not add trace ID")
	}

	if GetTraceID(EnsureTraceID(ctx)) != traceID {
		t.Error("EnsureTraceID changed existing trace ID")
	}

	if GetTraceID(context.Background()) != "" {
		t.Error("Expected empty trace ID for a bare context")
	}
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var logEntry map[string]interface{}
	decode := func() {
		t.Helper()
		logEntry = nil
		if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
			t.Fatalf("Failed to parse log JSON: %v", err)
		}
		buf.Reset()
	}

	WithComponent(logger, "chart_service").Info("test message")
	decode()
	if logEntry["component"] != "chart_service" {
		t.Errorf("Expected component='chart_service', got %v", logEntry["component"])
	}

	WithSession(logger, "sess-1").Info("session test")
	decode()
	if logEntry["session_id"] != "sess-1" {
		t.Errorf("Expected session_id='sess-1', got %v", logEntry["session_id"])
	}
}
