package killswitch

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestHistory_RecordAndRecent(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory failed: %v", err)
	}
	defer h.Close()

	ctx := context.Background()
	snaps := []*Snapshot{
		{
			Config: Config{
				Version: "v1",
				Mode:    ModeOff,
				Scope:   ScopeGlobal,
			},
			Hash:     "hash-1",
			LoadedAt: time.Now().UTC().Add(-2 * time.Minute),
		},
		{
			Config: Config{
				Version:         "v2",
				Mode:            ModeDenyAll,
				Scope:           ScopeTenant,
				TenantOverrides: map[string]Mode{"tenant-a": ModeReadOnly},
				RoutePatterns:   []string{"/v1/exports/*"},
			},
			Hash:     "hash-2",
			LoadedAt: time.Now().UTC(),
		},
	}
	for _, s := range snaps {
		if err := h.Record(ctx, s); err != nil {
			t.Fatalf("Record(%s) failed: %v", s.Config.Version, err)
		}
	}

	entries, err := h.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent returned %d entries, want 2", len(entries))
	}

	// Most recent first.
	if entries[0].Version != "v2" || entries[1].Version != "v1" {
		t.Errorf("order = %s, %s", entries[0].Version, entries[1].Version)
	}
	if entries[0].Mode != ModeDenyAll {
		t.Errorf("Mode = %q", entries[0].Mode)
	}
	if entries[0].ConfigHash != "hash-2" {
		t.Errorf("ConfigHash = %q", entries[0].ConfigHash)
	}
}

func TestHistory_RecentLimit(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		snap := &Snapshot{
			Config:   Config{Version: "v", Mode: ModeOff},
			Hash:     "h",
			LoadedAt: time.Now().UTC(),
		}
		if err := h.Record(ctx, snap); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := h.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("Recent(3) returned %d entries", len(entries))
	}
}
