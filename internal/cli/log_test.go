package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
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

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatal("debug output at info level")
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("output %q should contain the debug message", buf.String())
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("Checked study.yml")

	out := buf.String()
	if !strings.Contains(out, "Checked study.yml (") {
		t.Errorf("progress output %q should contain the message and a duration", out)
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
