package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForVersion(t *testing.T, store *Store, want uint64, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if active := store.Active(); active != nil && active.Version == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	active := store.Active()
	if active == nil {
		t.Fatalf("timed out waiting for version %d; no active policy", want)
	}
	t.Fatalf("timed out waiting for version %d; active version %d", want, active.Version)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	writePolicy(t, path, 1)

	store := NewStore(path, nil)
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}

	watcher, err := NewWatcher(store, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watcher.Watch(ctx)
	}()
	// Give the watcher a moment to register.
	time.Sleep(50 * time.Millisecond)

	writePolicy(t, path, 2)
	waitForVersion(t, store, 2, 2*time.Second)

	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
	if err := <-watchErr; err != nil {
		t.Errorf("Watch() error: %v", err)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	writePolicy(t, path, 1)

	store := NewStore(path, nil)
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}

	watcher, err := NewWatcher(store, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Watch(ctx) }()
	time.Sleep(50 * time.Millisecond)

	// A sibling file changing must not trigger a reload of the target.
	other := filepath.Join(dir, "unrelated.yaml")
	if err := os.WriteFile(other, []byte("x: 1\n"), 0600); err != nil {
		t.Fatalf("failed to write sibling file: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if store.Active().Version != 1 {
		t.Errorf("Active().Version = %d, want 1 (sibling change ignored)", store.Active().Version)
	}

	_ = watcher.Stop()
}

func TestWatcherRejectsDoubleStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	writePolicy(t, path, 1)

	store := NewStore(path, nil)
	watcher, err := NewWatcher(store, 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	if watcher.debounce != DefaultDebounceInterval {
		t.Errorf("debounce = %v, want default %v", watcher.debounce, DefaultDebounceInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Watch(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := watcher.Watch(ctx); err == nil {
		t.Error("second Watch() expected error")
	}

	_ = watcher.Stop()
}
