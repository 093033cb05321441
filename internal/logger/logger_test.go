package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all log entries are in structured JSON format", prop.ForAll(
		func(message string, level string) bool {
			// Create a buffer to capture log output
			var buf bytes.Buffer

			// Create encoder config for JSON output
			encoderConfig := zapcore.EncoderConfig{
				TimeKey:        "timestamp",
				LevelKey:       "level",
				NameKey:        "logger",
				CallerKey:      "caller",
				MessageKey:     "message",
				StacktraceKey:  "stacktrace",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
				EncodeCaller:   zapcore.ShortCallerEncoder,
			}

			// Create core that writes to buffer
			core := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(&buf),
				zapcore.DebugLevel,
			)

			logger := zap.New(core)
			defer logger.Sync()

			// Log based on level
			switch level {
			case "debug":
				logger.Debug(message)
			case "info":
				logger.Info(message)
			case "warn":
				logger.Warn(message)
			case "error":
				logger.Error(message)
			default:
				logger.Info(message)
			}

			// Verify output is valid JSON
			var logEntry map[string]interface{}
			err := json.Unmarshal(buf.Bytes(), &logEntry)
			if err != nil {
				return false
			}

			// Verify required fields exist
			if _, ok := logEntry["level"]; !ok {
				return false
			}
			if _, ok := logEntry["timestamp"]; !ok {
				return false
			}
			if _, ok := logEntry["message"]; !ok {
				return false
			}

			// Verify message matches
			if logEntry["message"] != message {
				return false
			}

			return true
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test that logger includes severity levels
func TestProperty_LogsIncludeSeverityLevels(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all log entries include severity level", prop.ForAll(
		func(message string) bool {
			var buf bytes.Buffer

			encoderConfig := zapcore.EncoderConfig{
				TimeKey:        "timestamp",
				LevelKey:       "level",
				MessageKey:     "message",
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
			}

			core := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(&buf),
				zapcore.DebugLevel,
			)

			logger := zap.New(core)
			defer logger.Sync()

			logger.Info(message)

			var logEntry map[string]interface{}
			json.Unmarshal(buf.Bytes(), &logEntry)

			level, ok := logEntry["level"]
			if !ok {
				return false
			}

			// Verify level is a string
			_, isString := level.(string)
			return isString
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNewBuildsForEachEnvironment(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := New(env)
		if err != nil {
			t.Fatalf("Failed to create %s logger: %v", env, err)
		}
		if logger == nil {
			t.Fatalf("%s logger should not be nil", env)
		}
	}
}

func TestNewWithFileWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.log")

	logger, err := NewWithFile("production", FileOptions{Path: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("receipt checked out", zap.String("receipt_id", "r-1"))
	logger.Warn("low stock")
	_ = logger.Sync()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Log file was not created: %v", err)
	}
	defer file.Close()

	var messages []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Log line is not JSON: %q", scanner.Text())
		}
		if _, ok := entry["timestamp"]; !ok {
			t.Errorf("Log line missing timestamp: %q", scanner.Text())
		}
		messages = append(messages, entry["msg"].(string))
	}

	if len(messages) != 2 || messages[0] != "receipt checked out" || messages[1] != "low stock" {
		t.Errorf("Unexpected file log messages: %v", messages)
	}
}

// Test that error logs include context
func TestProperty_ErrorLogsIncludeContext(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("error logs include context information", prop.ForAll(
		func(message string, errorMsg string) bool {
			var buf bytes.Buffer

			encoderConfig := zapcore.EncoderConfig{
				TimeKey:        "timestamp",
				LevelKey:       "level",
				MessageKey:     "message",
				StacktraceKey:  "stacktrace",
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
			}

			core := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(&buf),
				zapcore.DebugLevel,
			)

			logger := zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
			defer logger.Sync()

			// Log error with context
			logger.Error(message, zap.String("error", errorMsg))

			var logEntry map[string]interface{}
			json.Unmarshal(buf.Bytes(), &logEntry)

			// Verify error field exists
			if _, ok := logEntry["error"]; !ok {
				return false
			}

			return true
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
