package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// t.Setenv registers restoration; Unsetenv then makes the key truly
	// absent, since an empty value still counts as set.
	for _, key := range []string{"PORT", "DATA_DIR", "LOG_LEVEL", "MAX_UPLOAD_MB"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("port: got %q, want %q", cfg.Port, "8080")
	}
	if cfg.DataDir != "data" {
		t.Errorf("data dir: got %q, want %q", cfg.DataDir, "data")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level: got %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.MaxUploadSizeMB != 10 {
		t.Errorf("upload limit: got %d, want 10", cfg.MaxUploadSizeMB)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/tmp/ledger")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_UPLOAD_MB", "25")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("port: got %q, want %q", cfg.Port, "9090")
	}
	if cfg.DataDir != "/tmp/ledger" {
		t.Errorf("data dir: got %q, want %q", cfg.DataDir, "/tmp/ledger")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level: got %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.MaxUploadSizeMB != 25 {
		t.Errorf("upload limit: got %d, want 25", cfg.MaxUploadSizeMB)
	}
}

func TestGetEnvInt_RejectsGarbage(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")
	if got := getEnvInt("MAX_UPLOAD_MB", 10); got != 10 {
		t.Errorf("got %d, want fallback 10", got)
	}
	t.Setenv("MAX_UPLOAD_MB", "-5")
	if got := getEnvInt("MAX_UPLOAD_MB", 10); got != 10 {
		t.Errorf("negative value: got %d, want fallback 10", got)
	}
}
