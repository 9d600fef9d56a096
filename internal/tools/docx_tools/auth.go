package docx_tools

import "github.com/teemow/larkdocs/internal/lark"

// selectIdentity picks the identity for one invocation. minimum is the
// weakest identity the endpoint accepts: user-only endpoints need a token
// and ignore useUAT; others act as the user only when a token is present
// and useUAT is set. ok is false when no acceptable identity exists.
func selectIdentity(token string, useUAT bool, minimum lark.AuthMode) (id lark.Identity, ok bool) {
	if minimum == lark.AuthUser {
		if token == "" {
			return lark.Identity{}, false
		}
		return lark.UserIdentity(token), true
	}
	if token != "" && useUAT {
		return lark.UserIdentity(token), true
	}
	return lark.TenantIdentity(), true
}
