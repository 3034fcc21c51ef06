package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("search") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("query built") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("query built") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("max workers clamped") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("search")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("log line %q should start with a HH:MM:SS.ms timestamp", buf.String())
	}
}

func TestRunLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, id := runLogger(newLogger(&buf, log.InfoLevel))
	if len(id) != 8 {
		t.Errorf("run id %q, want 8 characters", id)
	}

	logger.Info("search")
	if !strings.Contains(buf.String(), "run="+id) {
		t.Errorf("log line %q missing run=%s", buf.String(), id)
	}

	_, other := runLogger(logger)
	if other == id {
		t.Error("run ids should differ between runs")
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Found 5 granules", "hits", 42)

	out := buf.String()
	for _, want := range []string{"Found 5 granules", "hits=42", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output %q missing %q", out, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext should fall back to log.Default()")
	}
}
