package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Verbose {
		t.Error("expected Verbose to be false")
	}
	if cfg.Color != "auto" {
		t.Errorf("expected Color to be 'auto', got %q", cfg.Color)
	}
	if cfg.Discovery.Configuration != "Debug" {
		t.Errorf("expected Discovery.Configuration to be 'Debug', got %q", cfg.Discovery.Configuration)
	}
	if cfg.Watch.DebounceMs != 500 {
		t.Errorf("expected Watch.DebounceMs to be 500, got %d", cfg.Watch.DebounceMs)
	}
	if cfg.ExternalCLI != "dotnet" {
		t.Errorf("expected ExternalCLI to be 'dotnet', got %q", cfg.ExternalCLI)
	}
}

func TestFindLocations(t *testing.T) {
	tmp := t.TempDir()
	workspaceRoot := filepath.Join(tmp, "repo")
	cwd := filepath.Join(workspaceRoot, "subdir")
	os.MkdirAll(cwd, 0o755)

	locations := FindLocations(cwd, workspaceRoot)
	if len(locations) == 0 {
		t.Fatal("expected at least some locations")
	}

	foundWorkspaceRoot := false
	for _, loc := range locations {
		if loc.Source == "workspace-root" {
			foundWorkspaceRoot = true
		}
	}
	if !foundWorkspaceRoot {
		t.Error("expected to find a workspace-root location")
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	tmp := t.TempDir()

	result, err := Load(LoadOptions{CWD: tmp, WorkspaceRoot: tmp, SkipEnv: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if result.Config == nil {
		t.Fatal("expected non-nil config")
	}
	if len(result.Sources) != 1 || result.Sources[0] != "defaults" {
		t.Errorf("expected only defaults as source, got %v", result.Sources)
	}
}

func TestLoad_WithEnv(t *testing.T) {
	tmp := t.TempDir()

	os.Setenv("TESTAMENT_VERBOSE", "true")
	defer os.Unsetenv("TESTAMENT_VERBOSE")

	result, err := Load(LoadOptions{CWD: tmp, WorkspaceRoot: tmp})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !result.Config.Verbose {
		t.Error("expected Verbose to be true from env var")
	}
}

func TestLoad_WithFile(t *testing.T) {
	tmp := t.TempDir()

	configDir := filepath.Join(tmp, ".testament")
	os.MkdirAll(configDir, 0o755)
	configFile := filepath.Join(configDir, "config.toml")
	os.WriteFile(configFile, []byte("verbose = true\n\n[run]\nconfiguration = \"Release\"\n"), 0o644)

	result, err := Load(LoadOptions{CWD: tmp, WorkspaceRoot: tmp, SkipEnv: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !result.Config.Verbose {
		t.Error("expected Verbose to be true from config file")
	}
	if result.Config.Run.Configuration != "Release" {
		t.Errorf("expected Run.Configuration to be Release, got %q", result.Config.Run.Configuration)
	}
}
