package maskconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDeliversUpdateOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[policy]\ndefault_mode = \"full\"\n"), 0o644); err != nil {
		t.Fatalf("writing initial config: %v", err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[policy]\ndefault_mode = \"partial\"\n"), 0o644); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	select {
	case cfg := <-w.Updates():
		if cfg.Policy.DefaultMode != "partial" {
			t.Errorf("DefaultMode = %q, want partial", cfg.Policy.DefaultMode)
		}
	case err := <-w.Errors():
		t.Fatalf("unexpected reload error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherCloseStopsDelivery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[policy]\ndefault_mode = \"full\"\n"), 0o644); err != nil {
		t.Fatalf("writing initial config: %v", err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.Close()
	w.Close() // must be safe to call twice
}

func TestNewWatcherOnMissingPathFails(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "does-not-exist.toml"), nil)
	if err == nil {
		t.Fatal("expected error watching a nonexistent path")
	}
}
