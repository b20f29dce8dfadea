package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	pelletiertoml "github.com/pelletier/go-toml/v2"
)

// LoadOptions controls config loading behavior.
type LoadOptions struct {
	CWD           string
	WorkspaceRoot string
	ConfigFile    string // --config override
	SkipEnv       bool
	Verbose       bool
}

// LoadResult carries the merged config plus which sources contributed.
type LoadResult struct {
	Config  *Config
	Sources []string
}

// Load merges configuration in order defaults → files → environment
// variables; command-line flags are applied by the caller afterward.
func Load(opts LoadOptions) (*LoadResult, error) {
	k := koanf.New(".")
	result := &LoadResult{Sources: []string{"defaults"}}

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		if err := loadFile(k, opts.ConfigFile); err != nil {
			return nil, err
		}
		result.Sources = append(result.Sources, opts.ConfigFile)
	} else {
		for _, loc := range ExistingLocations(FindLocations(opts.CWD, opts.WorkspaceRoot)) {
			if err := loadFile(k, loc.Path); err != nil {
				if opts.Verbose {
					os.Stderr.WriteString("config: error loading " + loc.Path + ": " + err.Error() + "\n")
				}
				continue
			}
			result.Sources = append(result.Sources, loc.Source+":"+loc.Path)
		}
	}

	if !opts.SkipEnv {
		envProvider := env.Provider("TESTAMENT_", ".", func(s string) string {
			s = strings.TrimPrefix(s, "TESTAMENT_")
			s = strings.ToLower(s)
			s = strings.ReplaceAll(s, "_", ".")
			return s
		})
		if err := k.Load(envProvider, nil); err != nil {
			return nil, err
		}
		result.Sources = append(result.Sources, "env")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	result.Config = &cfg
	return result, nil
}

// WriteDefault marshals Default() to TOML via go-toml/v2 and writes it to
// path, creating its parent directory if needed. This is the "testament
// config init" scaffolding path. The keys are taken from the struct's
// koanf tags (through the same structs provider Load starts from), so
// every setting in the written file is read back by Load.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	defaults, err := structs.Provider(Default(), "koanf").Read()
	if err != nil {
		return err
	}
	data, err := pelletiertoml.Marshal(defaults)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadFile(k *koanf.Koanf, path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	var parser koanf.Parser
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	return k.Load(file.Provider(path), parser)
}
