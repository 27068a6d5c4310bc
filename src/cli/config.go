package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/datstarkey/svelte-proxy-lsp/src/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to the config path so it can be edited.
Uses the --config path when given, the default location otherwise.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing configuration file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(_ *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Wrote default configuration to %s\n", path)
	return nil
}

func runConfigShow(_ *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	for name, backend := range cfg.Backends {
		fmt.Printf("%s:\n", name)
		fmt.Printf("  command: %s\n", backend.Command)
		if len(backend.Args) > 0 {
			fmt.Printf("  args: %v\n", backend.Args)
		}
		if backend.WorkingDir != "" {
			fmt.Printf("  working_dir: %s\n", backend.WorkingDir)
		}
	}
	return nil
}
