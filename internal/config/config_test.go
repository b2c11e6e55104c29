package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ErrorPolicy != PolicyAbort {
		t.Errorf("ErrorPolicy = %q, want abort", cfg.ErrorPolicy)
	}
	if cfg.TopK != 50 {
		t.Errorf("TopK = %d, want 50", cfg.TopK)
	}
	if cfg.Log.Level != "info" || cfg.Export.MaxMB != 256 || cfg.Mongo.RetentionDays != 30 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFlagsAndFiles(t *testing.T) {
	cfg, err := Load([]string{"--data-dir", "/data", "--top", "10", "--error-policy", "skip", "a.txt", "b.txt"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.DataDir != "/data" || cfg.TopK != 10 || cfg.ErrorPolicy != PolicySkip {
		t.Fatalf("cfg = %+v", cfg)
	}
	if strings.Join(cfg.Files, ",") != "a.txt,b.txt" {
		t.Fatalf("Files = %v", cfg.Files)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TAQ_LOG_LEVEL", "debug")
	t.Setenv("TAQ_TOP_K", "5")
	t.Setenv("TAQ_DATA_DIR", "")
	t.Setenv("NYSE_TRADE_DATA_DIR", "/nyse")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.TopK != 5 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.DataDir != "/nyse" {
		t.Fatalf("DataDir = %q, want /nyse", cfg.DataDir)
	}

	cfg, err = Load([]string{"--top", "7"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.TopK != 7 {
		t.Fatalf("flag should override env: TopK = %d", cfg.TopK)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taq.yaml")
	body := "top_k: 12\nmongo:\n  uri: mongodb://localhost:27017/taq\nexport:\n  dir: /tmp/out\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.TopK != 12 || cfg.Mongo.URI != "mongodb://localhost:27017/taq" || cfg.Export.Dir != "/tmp/out" {
		t.Fatalf("file not applied: %+v", cfg)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load([]string{"--top", "9", "--sqlite", "runs.db", "--log-format", "json", "--print-config"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.PrintConfig {
		t.Fatal("PrintConfig not set")
	}

	var buf bytes.Buffer
	if err := cfg.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	if !strings.Contains(buf.String(), "top_k: 9") || strings.Contains(buf.String(), "print") {
		t.Fatalf("yaml = %s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "dump.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	back, err := Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load dumped config: %v", err)
	}
	if back.TopK != 9 || back.SQLite.Path != "runs.db" || back.Log.Format != "json" || back.Export.MaxMB != 256 {
		t.Fatalf("round trip = %+v", back)
	}
}

func TestLoadBadFlag(t *testing.T) {
	if _, err := Load([]string{"--no-such-flag"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestValidate(t *testing.T) {
	ok := &Config{DataDir: "/d", ErrorPolicy: PolicyAbort, TopK: 50}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"policy", Config{DataDir: "/d", ErrorPolicy: "retry"}, "error_policy"},
		{"top", Config{DataDir: "/d", ErrorPolicy: PolicySkip, TopK: -1}, "top_k"},
		{"input", Config{ErrorPolicy: PolicyAbort}, "no input"},
		{"export", Config{Files: []string{"x"}, ErrorPolicy: PolicyAbort, Export: ExportConfig{MaxMB: -2}}, "max_mb"},
	}
	for _, c := range cases {
		err := c.cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: err = %v, want mention of %q", c.name, err, c.want)
		}
	}
}
