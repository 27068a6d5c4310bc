// Package cli implements the command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

// rootCmd represents the base command when called without any subcommands.
// Editors typically launch the binary directly, so the bare invocation serves
// the LSP connection on stdio.
var rootCmd = &cobra.Command{
	Use:   "svelte-proxy-lsp",
	Short: "Unified LSP server proxying svelteserver and typescript-language-server",
	Long: `svelte-proxy-lsp presents a single Language Server Protocol endpoint over two
backend language servers: svelteserver for Svelte component files and
typescript-language-server for TypeScript/JavaScript sources.

The proxy tracks open documents, routes each request to the backend(s) that
can answer it, and merges their responses so the editor sees one coherent
server. All protocol traffic uses stdio; logs go to stderr.`,
	RunE: runServe,
	// Don't show usage when there's an error
	SilenceUsage: true,
	// Don't show errors (we'll handle them ourselves)
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
}

// Execute runs the root command and returns any error to the caller.
func Execute() error {
	return rootCmd.Execute()
}
