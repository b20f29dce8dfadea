// Package cmd implements the CLI commands for testament.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haavardr/testament/internal/config"
	"github.com/haavardr/testament/internal/history"
	"github.com/haavardr/testament/internal/ui"
	"github.com/haavardr/testament/internal/uistate"
	"github.com/haavardr/testament/internal/workspace"
)

var (
	// Global flags
	flagVerbose    bool
	flagQuiet      bool
	flagColor      string
	flagDir        string
	flagConfigFile string

	// Loaded configuration, set by PersistentPreRunE.
	cfg *config.Config
)

// rootCmd is the base command: launched bare, it opens the interactive
// terminal UI over whatever project(s) are found starting from the given
// path (or the working directory).
var rootCmd = &cobra.Command{
	Use:   "testament [path]",
	Short: "An interactive terminal test runner for .NET",
	Long: `testament - an interactive terminal test runner for .NET

Discovers test projects from a directory or solution file, builds a
collapsible tree of namespace-qualified classes and their test methods, and lets you
select, run, and watch tests without leaving the terminal.

Run bare to open the full-screen UI:

  testament                 # discover from the current directory
  testament ./MyApp.sln     # discover from a specific solution
  testament ./Tests.csproj  # discover a single project

Use "testament run" for a headless, CI-friendly one-shot invocation, and
"testament pr <ref>" to scope a run to a pull request's changed tests.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		startPath := "."
		if len(args) > 0 {
			startPath = args[0]
		}

		result, projects, dirs, err := resolveProjects(startPath)
		if err != nil {
			return err
		}
		workspaceRoot := workspaceRootOf(result, startPath)

		var historyDB *history.DB
		if dbPath, err := historyDBPath(cfg, workspaceRoot); err == nil {
			if db, err := history.Open(dbPath); err == nil {
				historyDB = db
				defer db.Close()
			}
		}

		reportDir, err := reportsDir(cfg, workspaceRoot)
		if err != nil {
			reportDir = ""
		}

		state := uistate.New(projects)
		app := ui.New(cfg, workspaceRoot, state, dirs, historyDB, reportDir)
		return app.Run(context.Background())
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet mode - suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "", "Color output mode: auto, always, never")
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "C", "", "Change to directory before running")
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "Config file path (overrides auto-discovery)")
}

// loadConfig handles -C, then merges configuration per spec's layered
// precedence, then applies the remaining global flags on top.
func loadConfig() error {
	if flagDir != "" {
		if err := os.Chdir(flagDir); err != nil {
			return fmt.Errorf("changing to directory %s: %w", flagDir, err)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	// Resolved independently of project discovery (which hasn't run yet at
	// this point) so the workspace-root config tier is reachable on every
	// invocation, mirroring the teacher's gitRoot-before-config.Load order.
	workspaceRoot, err := workspace.FindRoot(cwd)
	if err != nil {
		workspaceRoot = cwd
	}

	result, err := config.Load(config.LoadOptions{
		CWD:           cwd,
		WorkspaceRoot: workspaceRoot,
		ConfigFile:    flagConfigFile,
		Verbose:       flagVerbose,
	})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = result.Config

	if flagVerbose {
		cfg.Verbose = true
	}
	if flagQuiet {
		cfg.Quiet = true
	}
	if flagColor != "" {
		cfg.Color = flagColor
	}

	return nil
}

// historyDBPath resolves where the run-history store lives: the
// configured cache directory if set, else a ".testament" directory under
// the workspace root.
func historyDBPath(cfg *config.Config, workspaceRoot string) (string, error) {
	dir := cfg.CacheDir
	if dir == "" {
		dir = filepath.Join(workspaceRoot, ".testament")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// reportsDir resolves where per-project console-output report files are
// written, alongside the TRX the executor already parses: the configured
// cache directory's "reports" subdirectory, or ".testament/reports" under
// the workspace root.
func reportsDir(cfg *config.Config, workspaceRoot string) (string, error) {
	dir := cfg.CacheDir
	if dir == "" {
		dir = filepath.Join(workspaceRoot, ".testament")
	}
	dir = filepath.Join(dir, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetConfig returns the loaded configuration. Must be called after
// PersistentPreRunE has executed.
func GetConfig() *config.Config {
	return cfg
}
