package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func capture(l Logger) *bytes.Buffer {
	var buf bytes.Buffer
	l.(*LogrusLogger).logger.SetOutput(&buf)
	return &buf
}

func TestLogrusLogger_Info(t *testing.T) {
	logger := NewLogrus("info", "text")
	buf := capture(logger)

	logger.Info("drift check started")

	output := buf.String()
	if !strings.Contains(output, "drift check started") {
		t.Errorf("Expected log to contain message, got: %s", output)
	}
	if !strings.Contains(output, "level=info") {
		t.Errorf("Expected text format with level, got: %s", output)
	}
}

func TestLogrusLogger_JSONFormat(t *testing.T) {
	logger := NewLogrus("info", "json")
	buf := capture(logger)

	logger.WithField("environment", "production").Info("drift check started")

	output := buf.String()
	if !strings.Contains(output, `"environment":"production"`) {
		t.Errorf("Expected JSON field, got: %s", output)
	}
	if !strings.Contains(output, `"msg":"drift check started"`) {
		t.Errorf("Expected JSON message, got: %s", output)
	}
}

func TestLogrusLogger_LevelFiltering(t *testing.T) {
	logger := NewLogrus("warn", "text")
	buf := capture(logger)

	logger.Info("should be suppressed")
	logger.Warn("collector unavailable")

	output := buf.String()
	if strings.Contains(output, "should be suppressed") {
		t.Errorf("Expected info below warn level to be dropped, got: %s", output)
	}
	if !strings.Contains(output, "collector unavailable") {
		t.Errorf("Expected warning to be logged, got: %s", output)
	}
}

func TestLogrusLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger := NewLogrus("chatty", "text")
	buf := capture(logger)

	logger.Debug("should be suppressed")
	logger.Info("visible")

	output := buf.String()
	if strings.Contains(output, "should be suppressed") {
		t.Errorf("Expected debug to be dropped at info level, got: %s", output)
	}
	if !strings.Contains(output, "visible") {
		t.Errorf("Expected info to be logged, got: %s", output)
	}
}

func TestLogrusLogger_Error(t *testing.T) {
	logger := NewLogrus("info", "text")
	buf := capture(logger)

	logger.Error("storing report failed", errors.New("disk full"))

	output := buf.String()
	if !strings.Contains(output, "storing report failed") {
		t.Errorf("Expected error message, got: %s", output)
	}
	if !strings.Contains(output, "disk full") {
		t.Errorf("Expected wrapped error text, got: %s", output)
	}
}

func TestLogrusLogger_WithFields(t *testing.T) {
	logger := NewLogrus("info", "text")
	buf := capture(logger)

	logger.WithFields(map[string]interface{}{
		"environment": "staging",
		"findings":    3,
	}).Info("drift detected")

	output := buf.String()
	if !strings.Contains(output, "environment=staging") || !strings.Contains(output, "findings=3") {
		t.Errorf("Expected log to contain fields, got: %s", output)
	}
}

func TestLogrusLogger_ChainedFields(t *testing.T) {
	logger := NewLogrus("info", "text")
	buf := capture(logger)

	logger.WithField("collector", "terraform").WithField("dir", "/srv/infra").Info("collected state")

	output := buf.String()
	if !strings.Contains(output, "collector=terraform") || !strings.Contains(output, "dir=/srv/infra") {
		t.Errorf("Expected log to contain chained fields, got: %s", output)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()

	logger.Debug("ignored")
	logger.Info("ignored")
	logger.Warn("ignored")
	logger.Error("ignored", errors.New("ignored"))

	chained := logger.WithField("key", "value").WithFields(map[string]interface{}{"other": 1})
	if _, ok := chained.(NopLogger); !ok {
		t.Errorf("Expected chained nop logger, got %T", chained)
	}
}
