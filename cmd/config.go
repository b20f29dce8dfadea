package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haavardr/testament/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or scaffold Testament's configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .testament/config.toml in the current directory",
	Long: `Write a default configuration file to ./.testament/config.toml.

The file documents every setting Testament understands, at its default
value, ready to edit — the same file config.Load later reads back (as
its workspace-root tier when run from the workspace root, otherwise as
its current-directory tier).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(".testament", "config.toml")
		if err := config.WriteDefault(path); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Println("wrote", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
