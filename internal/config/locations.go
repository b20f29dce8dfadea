package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigFileName is the base config file name (without extension).
const ConfigFileName = "config"

// ConfigDirName is the directory name for Testament's own config.
const ConfigDirName = ".testament"

// SupportedExtensions are the config file extensions supported, in
// priority order.
var SupportedExtensions = []string{".toml", ".yaml", ".yml", ".json"}

// Location is a candidate config file path with its provenance.
type Location struct {
	Path   string
	Source string
	Exists bool
}

// FindLocations returns candidate config file locations in merge order:
// user config directory, then the workspace root, then the current
// directory (if different from the workspace root). Later locations
// override earlier ones.
func FindLocations(cwd, workspaceRoot string) []Location {
	var locations []Location

	if userDir := userConfigDir(); userDir != "" {
		for _, ext := range SupportedExtensions {
			path := filepath.Join(userDir, ConfigDirName, ConfigFileName+ext)
			locations = append(locations, Location{Path: path, Source: "user", Exists: fileExists(path)})
		}
	}

	if workspaceRoot != "" {
		for _, ext := range SupportedExtensions {
			path := filepath.Join(workspaceRoot, ConfigDirName, ConfigFileName+ext)
			locations = append(locations, Location{Path: path, Source: "workspace-root", Exists: fileExists(path)})
		}
	}

	if cwd != workspaceRoot {
		for _, ext := range SupportedExtensions {
			path := filepath.Join(cwd, ConfigDirName, ConfigFileName+ext)
			locations = append(locations, Location{Path: path, Source: "cwd", Exists: fileExists(path)})
		}
	}

	return locations
}

// ExistingLocations filters to only locations that exist on disk.
func ExistingLocations(locations []Location) []Location {
	var existing []Location
	for _, loc := range locations {
		if loc.Exists {
			existing = append(existing, loc)
		}
	}
	return existing
}

func userConfigDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
