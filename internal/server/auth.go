package server

import (
	"context"
	"net/http"
	"strings"
)

// UserAccessTokenHeader is an alternative to the Authorization header for
// clients that reserve Authorization for their own gateway.
const UserAccessTokenHeader = "X-Lark-User-Access-Token"

type userAccessTokenKey struct{}

// ContextWithUserAccessToken returns a context carrying a per-request user
// access token.
func ContextWithUserAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, userAccessTokenKey{}, token)
}

// UserAccessTokenFromContext returns the per-request user access token, if any.
func UserAccessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(userAccessTokenKey{}).(string)
	return token
}

// UserAccessTokenFromRequest extracts the caller's user access token from
// the request headers. X-Lark-User-Access-Token wins over a Bearer
// Authorization header.
func UserAccessTokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(UserAccessTokenHeader)); token != "" {
		return token
	}

	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// HTTPContextFunc copies the request's user access token into the context
// seen by tool handlers. It matches mcp-go's HTTPContextFunc signature.
func HTTPContextFunc(ctx context.Context, r *http.Request) context.Context {
	return ContextWithUserAccessToken(ctx, UserAccessTokenFromRequest(r))
}
