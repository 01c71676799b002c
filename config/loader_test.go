package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdir changes the working directory for the duration of the test,
// mirroring t.Chdir (which requires Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})
}

func TestLoaderLoadUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, t.TempDir())

	user := DefaultConfig()
	user.Fit.MaxIterations = 333
	user.Spectrum.Background = "linear"
	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	if err := user.SaveToFile(userPath); err != nil {
		t.Fatalf("failed to save user config: %v", err)
	}

	cfg, err := NewLoader(nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Fit.MaxIterations != 333 {
		t.Errorf("expected max_iterations 333 from user config, got %d", cfg.Fit.MaxIterations)
	}
	if cfg.Spectrum.Background != "linear" {
		t.Errorf("expected background linear from user config, got %s", cfg.Spectrum.Background)
	}
	// Fields the user config did not change keep their defaults
	if cfg.Fit.Shape != "PseudoVoigt" {
		t.Errorf("expected shape to remain default, got %s", cfg.Fit.Shape)
	}
}

func TestLoaderLoadProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()

	content := `
spectrum:
  background: "tougaard"
`
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write project config: %v", err)
	}
	chdir(t, project)

	cfg, err := NewLoader(nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Spectrum.Background != "tougaard" {
		t.Errorf("expected background tougaard from project config, got %s", cfg.Spectrum.Background)
	}
}

func TestLoaderMissingUserConfigIsSilent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cfg, err := NewLoader(logger).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid defaults, got %v", err)
	}
	if strings.Contains(buf.String(), "Failed to load user config") {
		t.Errorf("absent user config must not warn, got log:\n%s", buf.String())
	}
}

func TestLoaderEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	loader := NewLoader(nil)
	if err := loader.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}

	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	created, err := LoadFromFile(userPath)
	if err != nil {
		t.Fatalf("failed to load created config: %v", err)
	}
	if err := created.Validate(); err != nil {
		t.Errorf("created config must validate, got %v", err)
	}

	// A second call leaves the existing file alone
	created.Fit.MaxIterations = 42
	if err := created.SaveToFile(userPath); err != nil {
		t.Fatalf("failed to modify config: %v", err)
	}
	if err := loader.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() second call error = %v", err)
	}
	kept, err := LoadFromFile(userPath)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if kept.Fit.MaxIterations != 42 {
		t.Errorf("expected existing config untouched, got max_iterations %d", kept.Fit.MaxIterations)
	}
}
