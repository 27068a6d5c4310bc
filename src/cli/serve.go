package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/datstarkey/svelte-proxy-lsp/src/config"
	"github.com/datstarkey/svelte-proxy-lsp/src/internal/common"
	"github.com/datstarkey/svelte-proxy-lsp/src/server"
)

var verbose bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the LSP connection on stdio",
	Long: `Start the proxy and serve the Language Server Protocol on stdin/stdout.
Both backend language servers are spawned during the initialize handshake.`,
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	logger := common.NewSafeLogger("svelte-proxy-lsp")
	if verbose {
		logger.SetLevel(common.LogDebug)
	}

	proxy, err := server.NewProxy(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create proxy: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Serving LSP on stdio")
	if err := proxy.Run(ctx, os.Stdin, os.Stdout); err != nil && err != context.Canceled {
		return fmt.Errorf("server terminated: %w", err)
	}
	return nil
}

// loadConfiguration resolves the effective config: an explicit --config path
// must exist, the default path is used when present, and built-in defaults
// apply otherwise.
func loadConfiguration() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	defaultPath := config.GetDefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.LoadConfig(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", defaultPath, err)
		}
		return cfg, nil
	}

	return config.GetDefaultConfig(), nil
}
