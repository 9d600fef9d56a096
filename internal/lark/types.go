package lark

import (
	"encoding/json"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
)

// AuthMode selects which access token a platform call is made with.
type AuthMode string

const (
	// AuthTenant calls the platform as the app itself.
	AuthTenant AuthMode = "tenant"
	// AuthUser calls the platform on behalf of a user.
	AuthUser AuthMode = "user"
)

// Identity is the resolved credential for a single platform call.
type Identity struct {
	Mode AuthMode

	// UserAccessToken is only meaningful when Mode is AuthUser
	UserAccessToken string
}

// TenantIdentity returns the app identity.
func TenantIdentity() Identity {
	return Identity{Mode: AuthTenant}
}

// UserIdentity returns a user identity carrying token.
func UserIdentity(token string) Identity {
	return Identity{Mode: AuthUser, UserAccessToken: token}
}

// IsUser reports whether the call is made as a user.
func (i Identity) IsUser() bool {
	return i.Mode == AuthUser
}

func (i Identity) requestOptions() []larkcore.RequestOptionFunc {
	if i.IsUser() {
		return []larkcore.RequestOptionFunc{larkcore.WithUserAccessToken(i.UserAccessToken)}
	}
	return nil
}

func (i Identity) tokenTypes() []larkcore.AccessTokenType {
	if i.IsUser() {
		return []larkcore.AccessTokenType{larkcore.AccessTokenTypeUser}
	}
	return []larkcore.AccessTokenType{larkcore.AccessTokenTypeTenant}
}

// MediaUpload describes a file to upload through the drive media API.
type MediaUpload struct {
	// FileName is the name the platform stores the file under
	FileName string

	// ParentType is the upload point type, e.g. "ccm_import_open"
	ParentType string

	// ParentNode is the upload point token
	ParentNode string

	// Extra is the JSON-encoded extra field the upload point expects
	Extra string

	// Content is the file content; its length is sent as the size field
	Content []byte
}

// ImportTask describes a document import job.
type ImportTask struct {
	FileExtension string
	FileToken     string
	Type          string

	// FileName is optional; the platform derives a name when empty
	FileName string

	MountType int
	MountKey  string
}

// Import job status codes reported by the platform.
const (
	JobStatusSucceeded   = 0
	JobStatusInitialized = 1
	JobStatusProcessing  = 2
)

// ImportTaskStatus is the result of an import task lookup.
type ImportTaskStatus struct {
	// JobStatus is nil when the platform omitted it
	JobStatus *int

	// Payload is the response's data object, or the whole body when the
	// response carried no data object
	Payload json.RawMessage
}

// InProgress reports whether the job is still queued or running.
func (s *ImportTaskStatus) InProgress() bool {
	if s == nil || s.JobStatus == nil {
		return false
	}
	return *s.JobStatus == JobStatusInitialized || *s.JobStatus == JobStatusProcessing
}

// Succeeded reports whether the job finished successfully.
func (s *ImportTaskStatus) Succeeded() bool {
	return s != nil && s.JobStatus != nil && *s.JobStatus == JobStatusSucceeded
}
