package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exbank.yaml")
	yml := "http_addr: \":9090\"\ndb_driver: memory\nbatch_workers: 3\ncors_origins: [\"https://a.example\"]\nlog:\n  format: json\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EXBANK_CONFIG", path)
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("STRICT_SUBCOUNT", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.DBDriver != "memory" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.BatchWorkers != 8 || cfg.StrictSubcount {
		t.Errorf("env should override file: %+v", cfg)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://a.example" {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.MaxInputBytes != 1<<20 {
		t.Errorf("default lost: %d", cfg.MaxInputBytes)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Defaults()
	if err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("batch_workers: [1"), 0o644)
	if err := LoadFile(bad, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCSVEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " http://a , ,http://b")
	cfg := FromEnv()
	if strings.Join(cfg.CORSOrigins, "|") != "http://a|http://b" {
		t.Fatalf("got %v", cfg.CORSOrigins)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("got %s", out)
	}
}
