// Package cmd implements the command-line interface for larkdocs.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the Lark/Feishu docx tools
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
//
// Settings come from flags, LARKDOCS_* environment variables, and an
// optional YAML file given with --config, in that order of precedence.
// APP_ID, APP_SECRET and USER_ACCESS_TOKEN are accepted as fallbacks.
package cmd
