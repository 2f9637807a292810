package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if !cfg.RequestLogsEnabled() || !cfg.MetricsEnabled() {
		t.Fatalf("expected request logs and metrics on by default")
	}
}

func TestLoadTOMLMergesOntoDefaults(t *testing.T) {
	path := writeFile(t, "server.toml", `
[server]
listen = ":9090"

[engine]
stop_words = ["и", "в", "на"]
corpus = "docs.yaml"

[metrics]
enabled = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != ":9090" {
		t.Fatalf("listen not overridden: %s", cfg.Server.Listen)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown timeout should keep default, got %v", cfg.Server.ShutdownTimeout)
	}
	if want := []string{"и", "в", "на"}; !reflect.DeepEqual(cfg.Engine.StopWords, want) {
		t.Fatalf("stop words %q, want %q", cfg.Engine.StopWords, want)
	}
	if cfg.Engine.Corpus != "docs.yaml" {
		t.Fatalf("unexpected corpus %q", cfg.Engine.Corpus)
	}
	if cfg.MetricsEnabled() {
		t.Fatalf("metrics should be disabled")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging format should keep default, got %q", cfg.Logging.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "server.yaml", `
logging:
  level: debug
  format: text
  request_logs: false
engine:
  stop_words:
    - "и в"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Fatalf("logging not overridden: %+v", cfg.Logging)
	}
	if cfg.RequestLogsEnabled() {
		t.Fatalf("request logs should be disabled")
	}
	if want := []string{"и в"}; !reflect.DeepEqual(cfg.Engine.StopWords, want) {
		t.Fatalf("stop words %q, want %q", cfg.Engine.StopWords, want)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	if _, err := Load(writeFile(t, "server.json", `{}`)); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "logging:\n  format: xml\n")); err == nil {
		t.Fatalf("expected invalid format error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
