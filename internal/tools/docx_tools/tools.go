package docx_tools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/larkdocs/internal/instrumentation"
	"github.com/teemow/larkdocs/internal/server"
	"github.com/teemow/larkdocs/internal/tools/common"
)

const (
	SearchToolID = "docx.builtin.search"
	ImportToolID = "docx.builtin.import"
)

// ToolSpec describes one docx tool independent of its MCP registration.
type ToolSpec struct {
	// ID is the dotted tool identifier, e.g. "docx.builtin.search"
	ID string
	// Project groups tools of the same platform area
	Project string
	// AccessTokens lists the identities the tool can run as
	AccessTokens []string
	ReadOnly     bool
	// Service is the platform service label used for audit logs
	Service string
}

// Name is the MCP tool name. MCP clients reject dots in tool names.
func (t ToolSpec) Name() string {
	return strings.ReplaceAll(t.ID, ".", "_")
}

// Description returns the tool description in lang.
func (t ToolSpec) Description(lang Language) string {
	d := descriptionsFor(lang)
	if t.ID == SearchToolID {
		return d.search
	}
	return d.importDoc
}

// Catalog returns the specs of all docx tools in registration order.
func Catalog() []ToolSpec {
	return []ToolSpec{
		{
			ID:           SearchToolID,
			Project:      "docx",
			AccessTokens: []string{"user"},
			ReadOnly:     true,
			Service:      instrumentation.ServiceDocx,
		},
		{
			ID:           ImportToolID,
			Project:      "docx",
			AccessTokens: []string{"user", "tenant"},
			Service:      instrumentation.ServiceDrive,
		},
	}
}

// Options configures RegisterDocxTools.
type Options struct {
	Language Language
	// Allow restricts registration to the named tools. Either the dotted ID
	// or the MCP name may be used. Empty registers every tool.
	Allow []string
	// Poll overrides DefaultPollPolicy when non-zero.
	Poll PollPolicy
}

// SelectTools returns the catalog entries matching allow, rejecting names
// that match no tool.
func SelectTools(allow []string) ([]ToolSpec, error) {
	catalog := Catalog()
	if len(allow) == 0 {
		return catalog, nil
	}

	wanted := make(map[string]bool, len(allow))
	for _, name := range allow {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		known := false
		for _, spec := range catalog {
			if name == spec.ID || name == spec.Name() {
				wanted[spec.ID] = true
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown tool %q", name)
		}
	}

	selected := make([]ToolSpec, 0, len(wanted))
	for _, spec := range catalog {
		if wanted[spec.ID] {
			selected = append(selected, spec)
		}
	}
	return selected, nil
}

// RegisterDocxTools registers the docx tools with the MCP server and returns
// the specs that were registered.
func RegisterDocxTools(s *mcpserver.MCPServer, sc *server.ServerContext, opts Options) ([]ToolSpec, error) {
	lang := opts.Language
	if lang == "" {
		lang = LanguageZh
	}

	specs, err := SelectTools(opts.Allow)
	if err != nil {
		return nil, err
	}

	h := NewHandlers(sc)
	if opts.Poll != (PollPolicy{}) {
		h.Poll = opts.Poll
	}

	for _, spec := range specs {
		var handler mcpserver.ToolHandlerFunc
		switch spec.ID {
		case SearchToolID:
			handler = h.Search
		case ImportToolID:
			handler = h.Import
		}
		s.AddTool(NewTool(spec, lang), common.InstrumentedToolHandler(spec.Name(), spec.Service, sc, handler))
	}

	return specs, nil
}

// NewTool builds the MCP tool definition for spec.
func NewTool(spec ToolSpec, lang Language) mcp.Tool {
	d := descriptionsFor(lang)

	opts := []mcp.ToolOption{
		mcp.WithDescription(spec.Description(lang)),
		mcp.WithTitleAnnotation(spec.ID),
		mcp.WithReadOnlyHintAnnotation(spec.ReadOnly),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	}

	switch spec.ID {
	case SearchToolID:
		opts = append(opts,
			mcp.WithObject("data",
				mcp.Required(),
				mcp.Description(d.searchData),
				mcp.Properties(map[string]any{
					"search_key": map[string]any{
						"type":        "string",
						"description": d.searchKey,
					},
					"count": map[string]any{
						"type":        "number",
						"description": d.count,
						"minimum":     0,
						"maximum":     MaxSearchCount,
					},
					"offset": map[string]any{
						"type":        "number",
						"description": d.offset,
						"minimum":     0,
					},
					"owner_ids": map[string]any{
						"type":        "array",
						"description": d.ownerIDs,
						"items":       map[string]any{"type": "string"},
					},
					"chat_ids": map[string]any{
						"type":        "array",
						"description": d.chatIDs,
						"items":       map[string]any{"type": "string"},
					},
					"docs_types": map[string]any{
						"type":        "array",
						"description": d.docsTypes,
						"items": map[string]any{
							"type": "string",
							"enum": DocsTypes,
						},
					},
				}),
			),
			requiredProperties("data", "search_key"),
			mcp.WithBoolean("useUAT", mcp.Description(d.searchUseUAT)),
		)
	case ImportToolID:
		opts = append(opts,
			mcp.WithObject("data",
				mcp.Required(),
				mcp.Description(d.importData),
				mcp.Properties(map[string]any{
					"markdown": map[string]any{
						"type":        "string",
						"description": d.markdown,
					},
					"file_name": map[string]any{
						"type":        "string",
						"description": d.fileName,
						"maxLength":   MaxFileNameLength,
					},
				}),
			),
			requiredProperties("data", "markdown"),
			mcp.WithBoolean("useUAT", mcp.Description(d.importUseUAT)),
		)
	}

	return mcp.NewTool(spec.Name(), opts...)
}

// requiredProperties marks properties of the object parameter param as
// required. It must follow the parameter's definition; mcp.Required on the
// parameter itself uses the same schema key.
func requiredProperties(param string, names ...string) mcp.ToolOption {
	return func(t *mcp.Tool) {
		schema, ok := t.InputSchema.Properties[param].(map[string]any)
		if !ok {
			return
		}
		schema["required"] = names
		schema["additionalProperties"] = false
	}
}
