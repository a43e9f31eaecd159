package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_WritesLevelFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer l.Close()

	l.Info("hello %s", "alice")
	l.Warning("careful %d", 1)
	l.Error("broken %v", "pipe")

	tests := []struct {
		level string
		want  string
	}{
		{LevelInfo, "hello alice"},
		{LevelWarning, "careful 1"},
		{LevelError, "broken pipe"},
	}

	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(dir, FileName(tt.level)))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", tt.level, err)
		}
		if !strings.Contains(string(data), tt.want) {
			t.Errorf("Expected %s log to contain %q, got %q", tt.level, tt.want, string(data))
		}
	}
}

func TestLogger_CleanLogs(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer l.Close()

	l.Warning("something to clear")
	if err := l.CleanLogs(FileName(LevelWarning)); err != nil {
		t.Fatalf("CleanLogs failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, FileName(LevelWarning)))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("Expected empty warning log, got %d bytes", info.Size())
	}
}
