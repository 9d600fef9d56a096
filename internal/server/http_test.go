package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMCPServer() *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("larkdocs-test", "0.0.1", mcpserver.WithToolCapabilities(false))
	s.AddTool(mcp.NewTool("whoami"), func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(UserAccessTokenFromContext(ctx)), nil
	})
	return s
}

func postJSONRPC(t *testing.T, url, sessionID string, headers map[string]string, payload string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHTTPServer_Routes(t *testing.T) {
	health := NewHealthChecker(newTestServerContext(t), "1.0.0", 1)
	srv := NewHTTPServer(newTestMCPServer(), HTTPServerConfig{Health: health})
	assert.Equal(t, DefaultHTTPAddr, srv.Addr())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_PassesUserTokenToTools(t *testing.T) {
	srv := NewHTTPServer(newTestMCPServer(), HTTPServerConfig{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	endpoint := ts.URL + MCPEndpointPath

	initResp := postJSONRPC(t, endpoint, "", nil,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`)
	defer initResp.Body.Close()
	require.Equal(t, http.StatusOK, initResp.StatusCode)
	sessionID := initResp.Header.Get("Mcp-Session-Id")
	require.NotEmpty(t, sessionID)

	callResp := postJSONRPC(t, endpoint, sessionID, map[string]string{"Authorization": "Bearer u-from-header"},
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"whoami","arguments":{}}}`)
	defer callResp.Body.Close()
	require.Equal(t, http.StatusOK, callResp.StatusCode)

	body, err := io.ReadAll(callResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "u-from-header")
}

func TestMetricsMiddleware_NilMetrics(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {})
	h := metricsMiddleware(nil, next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	sr.WriteHeader(http.StatusAccepted)
	sr.Flush()

	assert.Equal(t, http.StatusAccepted, sr.status)
	assert.True(t, rec.Flushed)
	assert.Same(t, rec, sr.Unwrap())
}

func TestHTTPServer_ShutdownWithoutStart(t *testing.T) {
	srv := NewHTTPServer(newTestMCPServer(), HTTPServerConfig{Addr: "127.0.0.1:0"})
	assert.NoError(t, srv.Shutdown(context.Background()))
	assert.True(t, strings.HasPrefix(srv.Addr(), "127.0.0.1"))
}

func TestHTTPServer_InitializeResponseIsJSONRPC(t *testing.T) {
	ts := httptest.NewServer(NewHTTPServer(newTestMCPServer(), HTTPServerConfig{}).Handler())
	defer ts.Close()

	resp := postJSONRPC(t, ts.URL+MCPEndpointPath, "", nil,
		`{"jsonrpc":"2.0","id":7,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`)
	defer resp.Body.Close()

	var msg struct {
		ID     int             `json:"id"`
		Result json.RawMessage `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, 7, msg.ID)
	assert.Contains(t, string(msg.Result), "larkdocs-test")
}
