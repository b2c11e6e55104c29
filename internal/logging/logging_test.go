package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ndrandal/taqfeed/internal/config"
)

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taq.log")
	log, err := New(config.LogConfig{Level: "debug", Format: "json", OutputFile: path})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	log.Info("run finished")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"run finished"`) {
		t.Fatalf("log file = %s", data)
	}
}
