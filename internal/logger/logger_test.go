package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectError bool
	}{
		{
			name:  "Debug level",
			level: "debug",
		},
		{
			name:   "Info level with json",
			level:  "info",
			format: "json",
		},
		{
			name:   "Error level with text",
			level:  "error",
			format: "text",
		},
		{
			name:        "Invalid level",
			level:       "invalid",
			expectError: true,
		},
		{
			name:        "Invalid format",
			level:       "info",
			format:      "xml",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.level, tt.format)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
			}
		})
	}
}

func captureText(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	log.SetLevel(logrus.DebugLevel)
	return &buf
}

func TestLogging(t *testing.T) {
	buf := captureText(t)

	tests := []struct {
		name          string
		logFunc       func(string, ...Fields)
		message       string
		fields        []Fields
		expectedLevel string
	}{
		{
			name:          "Debug message",
			logFunc:       Debug,
			message:       "Debug test",
			expectedLevel: "debug",
		},
		{
			name:          "Info message",
			logFunc:       Info,
			message:       "Info test",
			expectedLevel: "info",
		},
		{
			name:          "Debug with fields",
			logFunc:       Debug,
			message:       "Debug with fields",
			fields:        []Fields{{"key": "value"}},
			expectedLevel: "debug",
		},
		{
			name:          "Info with merged fields",
			logFunc:       Info,
			message:       "Info with fields",
			fields:        []Fields{{"kind": "quote"}, {"count": "5"}},
			expectedLevel: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(tt.message, tt.fields...)

			output := buf.String()
			if !strings.Contains(output, "level="+tt.expectedLevel) {
				t.Errorf("Expected log level %s, got %s", tt.expectedLevel, output)
			}
			if !strings.Contains(output, tt.message) {
				t.Errorf("Expected message %s, got %s", tt.message, output)
			}
			for _, f := range tt.fields {
				for k, v := range f {
					if !strings.Contains(output, k+"="+v.(string)) {
						t.Errorf("Expected field %s=%v in output: %s", k, v, output)
					}
				}
			}
		})
	}
}

func TestErrorAndWarn(t *testing.T) {
	buf := captureText(t)

	testError := errors.New("test error")

	Error("Error test", testError)
	output := buf.String()
	if !strings.Contains(output, "level=error") {
		t.Error("Expected error level")
	}
	if !strings.Contains(output, testError.Error()) {
		t.Error("Expected error details")
	}

	buf.Reset()
	Warn("Warn test", testError, Fields{"id": "abc"})
	output = buf.String()
	if !strings.Contains(output, "level=warning") {
		t.Errorf("Expected warning level, got %s", output)
	}
	if !strings.Contains(output, "id=abc") {
		t.Error("Expected warning with fields")
	}
	if !strings.Contains(output, testError.Error()) {
		t.Error("Expected error details with fields")
	}
}
