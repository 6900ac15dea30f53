package facts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWatcherSignalsSnapshotWrites(t *testing.T) {
	dir := t.TempDir()

	watcher, err := NewWatcher(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Run(ctx) }()

	path := filepath.Join(dir, "facts.json")
	if err := os.WriteFile(path, []byte(`{"current":[],"target":[]}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case changed := <-watcher.Changes():
		if changed != path {
			t.Errorf("expected notification for %s, got %s", path, changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification within 5s")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()

	watcher, err := NewWatcher(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case changed := <-watcher.Changes():
		t.Errorf("unexpected notification for %s", changed)
	case <-time.After(time.Second):
	}
}

func TestWatcherRejectsMissingDirectory(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "absent"), zerolog.Nop()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
