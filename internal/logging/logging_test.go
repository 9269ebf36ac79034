package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenelink.log")
	log, err := New(Config{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Info("hello")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("log file is empty")
	}
}
