package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPort_Default(t *testing.T) {
	os.Unsetenv(EnvPort)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("default Port = %d, want %d", cfg.Port(), DefaultPort)
	}
}

func TestPort_FromEnv(t *testing.T) {
	os.Setenv(EnvPort, "9000")
	defer os.Unsetenv(EnvPort)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port())
	}
}

func TestPort_Invalid(t *testing.T) {
	os.Setenv(EnvPort, "not-a-port")
	defer os.Unsetenv(EnvPort)

	if _, err := New(); err == nil {
		t.Error("New() should return error for non-numeric port")
	}
}

func TestPort_OutOfRange(t *testing.T) {
	os.Setenv(EnvPort, "70000")
	defer os.Unsetenv(EnvPort)

	if _, err := New(); err == nil {
		t.Error("New() should return error for out-of-range port")
	}
}

func TestSegmentsPath_Default(t *testing.T) {
	os.Unsetenv(EnvSegmentsPath)
	os.Setenv(EnvDataDir, "/data")
	defer os.Unsetenv(EnvDataDir)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("/data", "segments.json")
	if cfg.SegmentsPath() != want {
		t.Errorf("SegmentsPath = %q, want %q", cfg.SegmentsPath(), want)
	}
}

func TestSegmentsPath_FromEnv(t *testing.T) {
	os.Setenv(EnvSegmentsPath, "/elsewhere/segments.json")
	defer os.Unsetenv(EnvSegmentsPath)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SegmentsPath() != "/elsewhere/segments.json" {
		t.Errorf("SegmentsPath = %q, want /elsewhere/segments.json", cfg.SegmentsPath())
	}
}

func TestDownloaderModule_Default(t *testing.T) {
	os.Unsetenv(EnvDownloaderModule)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DownloaderModule() != DefaultDownloaderModule {
		t.Errorf("DownloaderModule = %q, want %q", cfg.DownloaderModule(), DefaultDownloaderModule)
	}
}

func TestHeadless_FromEnv(t *testing.T) {
	os.Setenv(EnvHeadless, "true")
	defer os.Unsetenv(EnvHeadless)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Headless() {
		t.Error("Headless() = false, want true")
	}
}
