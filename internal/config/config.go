// Package config handles configuration loading from files, environment
// variables, and command-line flags.
package config

// Config holds all Testament configuration settings. It is merged from
// defaults, then config files, then environment variables; command-line
// flags are applied by the caller after Load returns.
type Config struct {
	Verbose     bool   `koanf:"verbose"`
	Quiet       bool   `koanf:"quiet"`
	Color       string `koanf:"color"` // auto, always, never
	CacheDir    string `koanf:"cache_dir"`
	ExternalCLI string `koanf:"external_cli"` // test CLI binary name, "dotnet" by default

	Discovery DiscoveryConfig `koanf:"discovery"`
	Run       RunConfig       `koanf:"run"`
	Watch     WatchConfig     `koanf:"watch"`
	PR        PRConfig        `koanf:"pr"`
}

// DiscoveryConfig controls test discovery.
type DiscoveryConfig struct {
	NoCache       bool   `koanf:"no_cache"`
	Configuration string `koanf:"configuration"` // e.g. "Release"; discovery does not pass it to the test CLI
}

// RunConfig controls test execution defaults.
type RunConfig struct {
	Filter        string `koanf:"filter"`
	Configuration string `koanf:"configuration"`
}

// WatchConfig controls file-watch mode.
type WatchConfig struct {
	DebounceMs int `koanf:"debounce_ms"`
}

// PRConfig controls the PR change-set adapter.
type PRConfig struct {
	APIBaseURL string `koanf:"api_base_url"`
	NoTUI      bool   `koanf:"no_tui"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Verbose:     false,
		Quiet:       false,
		Color:       "auto",
		CacheDir:    "",
		ExternalCLI: "dotnet",

		Discovery: DiscoveryConfig{
			NoCache:       false,
			Configuration: "Debug",
		},
		Run: RunConfig{
			Configuration: "Debug",
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		PR: PRConfig{
			APIBaseURL: "",
			NoTUI:      false,
		},
	}
}
