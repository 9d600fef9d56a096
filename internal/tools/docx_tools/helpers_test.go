package docx_tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teemow/larkdocs/internal/lark"
	"github.com/teemow/larkdocs/internal/server"
)

// mockPlatform is a lark.DocPlatform driven by testify expectations.
type mockPlatform struct {
	mock.Mock
}

func (m *mockPlatform) Request(ctx context.Context, method, path string, body any, id lark.Identity) (json.RawMessage, error) {
	args := m.Called(ctx, method, path, body, id)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockPlatform) UploadMedia(ctx context.Context, upload lark.MediaUpload, id lark.Identity) (string, error) {
	args := m.Called(ctx, upload, id)
	return args.String(0), args.Error(1)
}

func (m *mockPlatform) CreateImportTask(ctx context.Context, task lark.ImportTask, id lark.Identity) (string, error) {
	args := m.Called(ctx, task, id)
	return args.String(0), args.Error(1)
}

func (m *mockPlatform) GetImportTask(ctx context.Context, ticket string, id lark.Identity) (*lark.ImportTaskStatus, error) {
	args := m.Called(ctx, ticket, id)
	status, _ := args.Get(0).(*lark.ImportTaskStatus)
	return status, args.Error(1)
}

var testPollPolicy = PollPolicy{MaxAttempts: 5, Interval: time.Millisecond}

func newTestHandlers(t *testing.T, platform lark.DocPlatform, configuredToken string) *Handlers {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc, err := server.NewServerContext(context.Background(), platform, configuredToken, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	h := NewHandlers(sc)
	h.Poll = testPollPolicy
	return h
}

func newRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText returns the single text content of a result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	require.Equal(t, "text", text.Type)
	return text.Text
}

func jobStatus(code int, payload string) *lark.ImportTaskStatus {
	return &lark.ImportTaskStatus{JobStatus: &code, Payload: json.RawMessage(payload)}
}
