package server

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAccessTokenFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "no headers", want: ""},
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer u-abc"}, want: "u-abc"},
		{name: "bearer lowercase scheme", headers: map[string]string{"Authorization": "bearer u-abc"}, want: "u-abc"},
		{name: "basic is ignored", headers: map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}, want: ""},
		{name: "bare token is ignored", headers: map[string]string{"Authorization": "u-abc"}, want: ""},
		{name: "lark header", headers: map[string]string{UserAccessTokenHeader: "u-lark"}, want: "u-lark"},
		{
			name:    "lark header wins",
			headers: map[string]string{UserAccessTokenHeader: "u-lark", "Authorization": "Bearer u-abc"},
			want:    "u-lark",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/mcp", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, UserAccessTokenFromRequest(r))
		})
	}
}

func TestHTTPContextFunc(t *testing.T) {
	r := httptest.NewRequest("POST", "/mcp", nil)
	r.Header.Set("Authorization", "Bearer u-ctx")

	ctx := HTTPContextFunc(context.Background(), r)
	assert.Equal(t, "u-ctx", UserAccessTokenFromContext(ctx))

	bare := HTTPContextFunc(context.Background(), httptest.NewRequest("POST", "/mcp", nil))
	assert.Empty(t, UserAccessTokenFromContext(bare))
}

func TestContextWithUserAccessToken_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, ContextWithUserAccessToken(ctx, ""))
}
