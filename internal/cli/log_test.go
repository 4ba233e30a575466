package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("fetching mod page", "mod", "ruins")

	line := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("line %q should start with a centisecond timestamp", line)
	}
	if !strings.Contains(line, "mod=ruins") {
		t.Errorf("line %q should carry the mod field", line)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "download at info",
			level:   LogInfo,
			logFunc: func(l *log.Logger) { l.Info("downloaded", "mod", "ruins", "version", "1.2.0") },
			wantLog: true,
		},
		{
			name:    "pacing delay hidden at info",
			level:   LogInfo,
			logFunc: func(l *log.Logger) { l.Debug("waiting before next fetch", "delay", time.Second) },
			wantLog: false,
		},
		{
			name:    "pacing delay shown with --verbose",
			level:   LogDebug,
			logFunc: func(l *log.Logger) { l.Debug("waiting before next fetch", "delay", time.Second) },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressReportsCounts(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	time.Sleep(5 * time.Millisecond)

	prog.done("reconciled", "installed", 1, "updated", 2, "removed", 0)

	for _, want := range []string{"reconciled", "installed=1", "updated=2", "removed=0", "took="} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("progress line %q missing %q", buf.String(), want)
		}
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("a bare context should fall back to the default logger")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, LogInfo)
	got := loggerFromContext(withLogger(context.Background(), l))
	if got != l {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	got.Info("run started", "mods", 4)
	if !strings.Contains(buf.String(), "mods=4") {
		t.Errorf("attached logger wrote %q", buf.String())
	}
}
