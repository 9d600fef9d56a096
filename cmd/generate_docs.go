package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/larkdocs/internal/lark"
	"github.com/teemow/larkdocs/internal/server"
	"github.com/teemow/larkdocs/internal/tools/docx_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
		language   string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := docx_tools.ParseLanguage(language)
			if err != nil {
				return err
			}
			return runGenerateDocs(cmd.OutOrStdout(), outputFile, lang)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&language, keyLanguage, string(docx_tools.LanguageZh), "Language of tool descriptions: zh or en")

	return cmd
}

func runGenerateDocs(stdout io.Writer, outputFile string, lang docx_tools.Language) error {
	markdown, err := buildToolsMarkdown(lang)
	if err != nil {
		return err
	}

	// Write to output
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
		return nil
	}

	_, err = io.WriteString(stdout, markdown)
	return err
}

// buildToolsMarkdown registers every tool on a throwaway server and renders
// the resulting definitions.
func buildToolsMarkdown(lang docx_tools.Language) (string, error) {
	// Placeholder credentials; the client makes no calls while generating docs.
	client, err := lark.NewClient(lark.Config{
		AppID:     "docs",
		AppSecret: "docs",
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create lark client: %w", err)
	}

	serverContext, err := server.NewServerContext(context.Background(), client, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("larkdocs", version,
		mcpserver.WithToolCapabilities(true),
	)

	specs, err := docx_tools.RegisterDocxTools(mcpSrv, serverContext, docx_tools.Options{Language: lang})
	if err != nil {
		return "", fmt.Errorf("failed to register docx tools: %w", err)
	}

	// Get the list of tools
	serverTools := mcpSrv.ListTools()

	// Extract mcp.Tool from each ServerTool
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	return generateToolsMarkdown(tools, specs), nil
}

func generateToolsMarkdown(tools []mcp.Tool, specs []docx_tools.ToolSpec) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running larkdocs as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sb.WriteString("## Identities\n\n")
	sb.WriteString("Tools run as the app (`tenant`) or on behalf of a user (`user`). The `useUAT` argument opts into user identity when a user access token is available:\n\n")
	sb.WriteString("- **stdio:** `--user-access-token` or `LARKDOCS_USER_ACCESS_TOKEN`\n")
	sb.WriteString("- **streamable-http:** `Authorization: Bearer <token>` or `" + server.UserAccessTokenHeader + "` per request\n\n")

	specsByName := make(map[string]docx_tools.ToolSpec, len(specs))
	for _, spec := range specs {
		specsByName[spec.Name()] = spec
	}

	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})

	sb.WriteString("## Docx Tools\n\n")
	for _, tool := range tools {
		sb.WriteString(generateToolMarkdown(tool, specsByName[tool.Name]))
		sb.WriteString("\n")
	}

	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool, spec docx_tools.ToolSpec) string {
	var sb strings.Builder

	// Tool name
	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	// Description
	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if spec.ID != "" {
		sb.WriteString(fmt.Sprintf("- **ID:** `%s`\n", spec.ID))
		sb.WriteString(fmt.Sprintf("- **Access tokens:** %s\n\n", strings.Join(spec.AccessTokens, ", ")))
	}

	// Input schema
	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")
		writeProperties(&sb, tool.InputSchema.Properties, tool.InputSchema.Required, "")
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeProperties renders properties sorted by name, descending into
// object properties.
func writeProperties(sb *strings.Builder, props map[string]any, required []string, indent string) {
	// Sort properties for consistent output
	propNames := make([]string, 0, len(props))
	for name := range props {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	for _, name := range propNames {
		propMap, ok := props[name].(map[string]any)
		if !ok {
			continue
		}

		requiredStr := "optional"
		if contains(required, name) {
			requiredStr = "required"
		}

		propType := getPropertyType(propMap)
		sb.WriteString(fmt.Sprintf("%s- `%s` (%s, %s): ", indent, name, propType, requiredStr))

		// Get description
		if desc, ok := propMap["description"].(string); ok {
			sb.WriteString(desc)
		} else {
			sb.WriteString(fmt.Sprintf("%s parameter", propType))
		}
		sb.WriteString("\n")

		if nested, ok := propMap["properties"].(map[string]any); ok {
			writeProperties(sb, nested, requiredNames(propMap["required"]), indent+"  ")
		}
	}
}

// requiredNames reads a schema's required list, which is []string when
// built in code and []any when decoded from JSON.
func requiredNames(v any) []string {
	switch r := v.(type) {
	case []string:
		return r
	case []any:
		names := make([]string, 0, len(r))
		for _, n := range r {
			if s, ok := n.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}

func getPropertyType(prop map[string]any) string {
	t, ok := prop["type"].(string)
	if !ok {
		return "any"
	}
	if t == "array" {
		if items, ok := prop["items"].(map[string]any); ok {
			if itemType, ok := items["type"].(string); ok {
				return itemType + "[]"
			}
		}
	}
	return t
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
