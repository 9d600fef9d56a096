package docx_tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	MaxSearchCount = 50
	// MaxSearchWindow bounds offset + count (exclusive).
	MaxSearchWindow   = 200
	MaxFileNameLength = 27
)

// DocsTypes are the document types accepted by search.
var DocsTypes = []string{"doc", "sheet", "slides", "bitable", "mindnote", "file"}

var errDataRequired = errors.New("data is required")

// toolArgs is the argument shape shared by all docx tools.
type toolArgs struct {
	Data   json.RawMessage `json:"data"`
	UseUAT bool            `json:"useUAT"`
}

func bindArgs(request mcp.CallToolRequest) (toolArgs, error) {
	var args toolArgs
	if err := request.BindArguments(&args); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	if len(args.Data) == 0 || string(args.Data) == "null" {
		return args, errDataRequired
	}
	return args, nil
}

// SearchRequest is the data of a search call and, once validated, the
// request body. Keys outside these fields are dropped.
type SearchRequest struct {
	SearchKey *string  `json:"search_key"`
	Count     *int     `json:"count,omitempty"`
	Offset    *int     `json:"offset,omitempty"`
	OwnerIDs  []string `json:"owner_ids,omitempty"`
	ChatIDs   []string `json:"chat_ids,omitempty"`
	DocsTypes []string `json:"docs_types,omitempty"`
}

// Validate checks the bounds the search endpoint enforces. An empty
// search_key is left to the platform. An absent count counts as zero for the
// offset window.
func (r SearchRequest) Validate() error {
	if r.SearchKey == nil {
		return errors.New("search_key is required")
	}

	count := 0
	if r.Count != nil {
		count = *r.Count
		if count < 0 || count > MaxSearchCount {
			return fmt.Errorf("count must be in [0,%d], got %d", MaxSearchCount, count)
		}
	}
	if r.Offset != nil {
		if *r.Offset < 0 {
			return fmt.Errorf("offset must be >= 0, got %d", *r.Offset)
		}
		if *r.Offset+count >= MaxSearchWindow {
			return fmt.Errorf("offset + count must be < %d, got %d", MaxSearchWindow, *r.Offset+count)
		}
	}
	for _, t := range r.DocsTypes {
		if !slices.Contains(DocsTypes, t) {
			return fmt.Errorf("unsupported docs_types value %q", t)
		}
	}
	return nil
}

// ImportRequest is the data of an import call.
type ImportRequest struct {
	Markdown *string `json:"markdown"`
	FileName string  `json:"file_name,omitempty"`
}

// Validate checks the import parameters. An empty markdown is left to the
// platform. The file name limit counts characters, not bytes.
func (r ImportRequest) Validate() error {
	if r.Markdown == nil {
		return errors.New("markdown is required")
	}
	if n := utf8.RuneCountInString(r.FileName); n > MaxFileNameLength {
		return fmt.Errorf("file_name must be at most %d characters, got %d", MaxFileNameLength, n)
	}
	return nil
}

func decodeData(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid data: %w", err)
	}
	return nil
}
