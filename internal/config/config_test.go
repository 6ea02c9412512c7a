package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("host = %q", cfg.Server.Host)
	}
	if cfg.Server.ShutdownTimeout() != 10*time.Second {
		t.Errorf("shutdown = %v", cfg.Server.ShutdownTimeout())
	}
	if cfg.Placeholder.BasePhone != "+1 202-555-0100" {
		t.Errorf("base phone = %q", cfg.Placeholder.BasePhone)
	}
	if cfg.Upload.MaxFileBytes() != 32<<20 {
		t.Errorf("max file bytes = %d", cfg.Upload.MaxFileBytes())
	}
	if cfg.Upload.MaxFiles != 10 {
		t.Errorf("max files = %d", cfg.Upload.MaxFiles)
	}
	if cfg.RunLog.Path != "dataprep-runs.db" {
		t.Errorf("run log path = %q", cfg.RunLog.Path)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  shutdown_seconds: 30
placeholder:
  base_phone: "+1 555-010-0000"
  pickup_address: "1 Main St"
upload:
  max_file_mb: 8
  max_files: 3
runlog:
  enabled: true
  path: /tmp/runs.db
logging:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.ShutdownSeconds != 30 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Placeholder.BasePhone != "+1 555-010-0000" || cfg.Placeholder.PickupAddress != "1 Main St" {
		t.Errorf("placeholder = %+v", cfg.Placeholder)
	}
	if cfg.Upload.MaxFileMB != 8 || cfg.Upload.MaxFiles != 3 {
		t.Errorf("upload = %+v", cfg.Upload)
	}
	if !cfg.RunLog.Enabled || cfg.RunLog.Path != "/tmp/runs.db" {
		t.Errorf("runlog = %+v", cfg.RunLog)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("DATAPREP_BASE_PHONE", "+1 206-555-0100")
	t.Setenv("DATAPREP_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Placeholder.BasePhone != "+1 206-555-0100" {
		t.Errorf("base phone = %q", cfg.Placeholder.BasePhone)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}
