package nlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "maxThreads: 4\nshOrder: 6\nshAxisOrder: zyx\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxThreads != 4 {
		t.Errorf("MaxThreads: got %d want 4", cfg.MaxThreads)
	}
	if cfg.SHOrder != 6 {
		t.Errorf("SHOrder: got %d want 6", cfg.SHOrder)
	}
	if cfg.SHAxisOrder != "zyx" {
		t.Errorf("SHAxisOrder: got %q want zyx", cfg.SHAxisOrder)
	}
	// Interpolation was not set in the file, so the default survives.
	if cfg.Interpolation != "linear" {
		t.Errorf("Interpolation: got %q want default %q", cfg.Interpolation, "linear")
	}
}

func TestLoadConfigAppliesOptsAfterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("shOrder: 6\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadConfig(path, WithSH(10, "", false))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SHOrder != 10 {
		t.Errorf("SHOrder: got %d want 10 (opt should win over file)", cfg.SHOrder)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
