package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing config should not error: %v", err)
	}
	if cfg.Drill.Constant != nil || cfg.Drill.PauseThreshold != nil || cfg.Drill.WrongLimit != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[drill]\nconstant = \"phi\"\npause-threshold = 1.5\nwrong-limit = 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Drill.Constant == nil || *cfg.Drill.Constant != "phi" {
		t.Fatalf("unexpected constant: %+v", cfg.Drill.Constant)
	}
	if cfg.Drill.PauseThreshold == nil || *cfg.Drill.PauseThreshold != 1.5 {
		t.Fatalf("unexpected pause threshold: %+v", cfg.Drill.PauseThreshold)
	}
	if cfg.Drill.WrongLimit == nil || *cfg.Drill.WrongLimit != 5 {
		t.Fatalf("unexpected wrong limit: %+v", cfg.Drill.WrongLimit)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
