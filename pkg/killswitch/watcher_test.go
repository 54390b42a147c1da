package killswitch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher_RefreshOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "killswitch.yaml")
	if err := os.WriteFile(path, []byte("version: v1\nmode: OFF\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	source := NewFileSource(path)
	store := NewStore()
	if err := store.Refresh(context.Background(), source); err != nil {
		t.Fatal(err)
	}

	watcher, err := NewWatcher(path, store, source, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx) }()

	// Give the watcher a moment to register before touching the file.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("version: v2\nmode: DENY_ALL\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		if snap := store.Current(); snap != nil && snap.Config.Version == "v2" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("store never picked up the rewritten file")
		case <-time.After(20 * time.Millisecond):
		}
	}

	if got := store.Current().Config.Mode; got != ModeDenyAll {
		t.Errorf("mode after reload = %q, want DENY_ALL", got)
	}

	cancel()
	if err := <-done; err != nil && err != context.Canceled {
		t.Errorf("Watch returned %v", err)
	}
}

func TestWatcher_AtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "killswitch.yaml")
	if err := os.WriteFile(path, []byte("version: v1\nmode: OFF\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	source := NewFileSource(path)
	store := NewStore()
	if err := store.Refresh(context.Background(), source); err != nil {
		t.Fatal(err)
	}

	watcher, err := NewWatcher(path, store, source, 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Watch(ctx)
	time.Sleep(50 * time.Millisecond)

	// Write-then-rename, the usual config management deployment pattern.
	tmp := filepath.Join(dir, "killswitch.yaml.tmp")
	if err := os.WriteFile(tmp, []byte("version: v3\nmode: READ_ONLY\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		if snap := store.Current(); snap != nil && snap.Config.Version == "v3" {
			return
		}
		select {
		case <-deadline:
			t.Fatal("store never picked up the renamed file")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(40 * time.Millisecond)
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("burst produced %d callbacks, want 1", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(50 * time.Millisecond)

	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("stopped debouncer still fired %d times", got)
	}
}
