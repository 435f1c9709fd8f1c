package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLimitsArePositive(t *testing.T) {
	cfg := Default()
	if cfg.VM.MaxCallDepth <= 0 || cfg.VM.MaxStackDepth <= 0 {
		t.Fatalf("default limits must be positive, got %+v", cfg.VM)
	}
}

func TestLoadFillsMissingFieldsFromDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vhp.yaml")
	if err := os.WriteFile(path, []byte("vm:\n  max_call_depth: 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.VM.MaxCallDepth != 100 {
		t.Fatalf("expected overridden max_call_depth=100, got %d", cfg.VM.MaxCallDepth)
	}
	if cfg.VM.MaxStackDepth != Default().VM.MaxStackDepth {
		t.Fatalf("expected default max_stack_depth, got %d", cfg.VM.MaxStackDepth)
	}
}
