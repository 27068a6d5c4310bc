package cli

import (
	"fmt"
	"os/exec"
	"sort"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the backend language servers are installed",
	Long: `Verify that the configured backend commands resolve on PATH.

The proxy spawns both backends during initialization, so a missing binary
surfaces as an editor-visible initialize failure. Run this after changing
the configuration or updating the backend installations:

  npm install -g svelte-language-server typescript-language-server typescript`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.Backends))
	for name := range cfg.Backends {
		names = append(names, name)
	}
	sort.Strings(names)

	missing := 0
	for _, name := range names {
		backend := cfg.Backends[name]
		path, err := exec.LookPath(backend.Command)
		if err != nil {
			fmt.Printf("✗ %s: %s not found on PATH\n", name, backend.Command)
			missing++
			continue
		}
		fmt.Printf("✓ %s: %s\n", name, path)
	}

	if missing > 0 {
		return fmt.Errorf("%d backend command(s) missing", missing)
	}
	return nil
}
