package docx_tools

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/larkdocs/internal/lark"
	"github.com/teemow/larkdocs/internal/logging"
	"github.com/teemow/larkdocs/internal/tools/common"
)

// Search handles docx.builtin.search. The endpoint only accepts user
// identity, so a missing user access token fails before any call.
func (h *Handlers) Search(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindArgs(request)
	if err != nil {
		return messageResult(err.Error()), nil
	}

	var req SearchRequest
	if err := decodeData(args.Data, &req); err != nil {
		return messageResult(err.Error()), nil
	}
	if err := req.Validate(); err != nil {
		return messageResult(err.Error()), nil
	}

	id, ok := selectIdentity(common.UserAccessToken(ctx, h.sc), args.UseUAT, lark.AuthUser)
	if !ok {
		return messageResult(msgUserTokenMissing), nil
	}

	body, err := h.sc.Platform().Request(ctx, http.MethodPost, common.SearchPath, req, id)
	if err != nil {
		h.logger(ctx).Warn("document search failed", logging.Tool(SearchToolID), logging.Err(err))
		return errorResult(err), nil
	}

	return successResult(lark.DataOrBody(body)), nil
}
