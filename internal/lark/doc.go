// Package lark provides a client for the Lark/Feishu open platform's document
// APIs.
//
// The package wraps github.com/larksuite/oapi-sdk-go/v3 behind the small
// DocPlatform interface the docx tools depend on:
//   - Generic authenticated requests (used for document search)
//   - Media upload into the import staging area
//   - Import task creation
//   - Import task status lookups
//
// Identity:
// Every call carries an Identity. Tenant identity lets the SDK obtain and
// cache a tenant access token from the configured app credentials. User
// identity forwards a caller-supplied user access token unchanged.
//
// Errors:
// A non-zero platform code or an HTTP status >= 400 is returned as *APIError,
// which keeps the platform's response body so callers can surface it
// verbatim. A response missing an expected field wraps ErrMissingField.
//
// Example usage:
//
//	client, err := lark.NewClient(lark.Config{
//	    AppID:     os.Getenv("APP_ID"),
//	    AppSecret: os.Getenv("APP_SECRET"),
//	    Domain:    lark.DomainFeishu,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := client.UploadMedia(ctx, upload, lark.TenantIdentity())
package lark
