package killswitch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return p
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "killswitch.yaml", `
version: "2026-08-01"
mode: ROUTE_DENY
route_patterns:
  - /v1/exports/*
tenant_overrides:
  tenant-gamma: DENY_ALL
`)

	cfg, err := NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config for an existing file")
	}
	if cfg.Version != "2026-08-01" {
		t.Errorf("Version = %q", cfg.Version)
	}
	if cfg.Mode != ModeRouteDeny {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.TenantOverrides["tenant-gamma"] != ModeDenyAll {
		t.Errorf("override = %q", cfg.TenantOverrides["tenant-gamma"])
	}
	// Overrides imply tenant scope when scope is left out.
	if cfg.Scope != ScopeTenant {
		t.Errorf("Scope = %q, want tenant", cfg.Scope)
	}
}

func TestFileSource_MissingFileMeansAbsent(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if cfg != nil {
		t.Errorf("missing file should report absence, got %+v", cfg)
	}
}

func TestFileSource_MalformedYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "mode: [unterminated")
	if _, err := NewFileSource(path).Load(context.Background()); err == nil {
		t.Error("malformed yaml should be a load error")
	}
}

func TestFileSource_DefaultsGlobalScope(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ks.yaml", "version: v1\nmode: OFF\n")
	cfg, err := NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scope != ScopeGlobal {
		t.Errorf("Scope = %q, want global", cfg.Scope)
	}
}

func TestMemorySource_CopiesOnLoad(t *testing.T) {
	src := NewMemorySource(&Config{
		Version:         "v1",
		Mode:            ModeOff,
		TenantOverrides: map[string]Mode{"t": ModeDenyAll},
	})

	cfg, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	cfg.TenantOverrides["t"] = ModeOff
	cfg.Mode = ModeDenyAll

	again, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if again.Mode != ModeOff || again.TenantOverrides["t"] != ModeDenyAll {
		t.Error("mutating a loaded config leaked into the source")
	}
}
