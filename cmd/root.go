package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the larkdocs application
var rootCmd = &cobra.Command{
	Use:   "larkdocs",
	Short: "MCP server for Lark/Feishu cloud documents",
	Long: `larkdocs exposes Lark/Feishu cloud document search and markdown import
as MCP (Model Context Protocol) tools for AI assistants.

It can run over:
  - stdio (default)
  - streamable HTTP`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// configFile is the optional config file given with --config
var configFile string

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "larkdocs version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().Bool(keyDebug, false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
