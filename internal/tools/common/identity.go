package common

import (
	"context"

	"github.com/teemow/larkdocs/internal/server"
)

// UserAccessToken resolves the user access token for a tool call. A token
// carried by the request context (HTTP transport) wins over the statically
// configured one.
func UserAccessToken(ctx context.Context, sc *server.ServerContext) string {
	if token := server.UserAccessTokenFromContext(ctx); token != "" {
		return token
	}
	if sc == nil {
		return ""
	}
	return sc.UserAccessToken()
}
