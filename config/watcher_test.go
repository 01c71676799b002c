package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const watchTimeout = 5 * time.Second

// startWatcher saves cfg to path, runs a Watcher on it and returns the
// callback channel plus the Run result channel.
func startWatcher(t *testing.T, ctx context.Context, path string, cfg *Config) (chan *Config, chan error) {
	t.Helper()
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, nil, func(c *Config) {
		reloaded <- c
	})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// Give the watch goroutine a moment to start draining events.
	time.Sleep(100 * time.Millisecond)
	return reloaded, done
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded, done := startWatcher(t, ctx, path, cfg)

	cfg.Spectrum.Background = "linear"
	cfg.Fit.MaxIterations = 777
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case got := <-reloaded:
		if got.Spectrum.Background != "linear" {
			t.Errorf("expected background linear after reload, got %s", got.Spectrum.Background)
		}
		if got.Fit.MaxIterations != 777 {
			t.Errorf("expected max_iterations 777 after reload, got %d", got.Fit.MaxIterations)
		}
	case <-time.After(watchTimeout):
		t.Fatal("timed out waiting for reload callback")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled from Run, got %v", err)
		}
	case <-time.After(watchTimeout):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherSkipsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded, _ := startWatcher(t, ctx, path, cfg)

	// A half-written or invalid file must not reach the callback.
	if err := os.WriteFile(path, []byte("spectrum:\n  background: \"spline\"\n"), 0644); err != nil {
		t.Fatalf("failed to write invalid config: %v", err)
	}

	cfg.Spectrum.Background = "tougaard"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case got := <-reloaded:
		if err := got.Validate(); err != nil {
			t.Errorf("callback received invalid config: %v", err)
		}
		if got.Spectrum.Background != "tougaard" {
			t.Errorf("expected background tougaard, got %s", got.Spectrum.Background)
		}
	case <-time.After(watchTimeout):
		t.Fatal("timed out waiting for reload callback")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := DefaultConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded, _ := startWatcher(t, ctx, path, cfg)

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("fit:\n  max_iterations: 1\n"), 0644); err != nil {
		t.Fatalf("failed to write sibling file: %v", err)
	}

	select {
	case <-reloaded:
		t.Error("sibling file write must not trigger a reload")
	case <-time.After(300 * time.Millisecond):
	}
}
