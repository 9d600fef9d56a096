package docx_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/larkdocs/internal/instrumentation"
	"github.com/teemow/larkdocs/internal/lark"
	"github.com/teemow/larkdocs/internal/server"
)

const testMarkdown = "# 周报\n\n- 完成导入"

func importRequest(useUAT bool) map[string]any {
	return map[string]any{
		"data":   map[string]any{"markdown": testMarkdown, "file_name": "周报"},
		"useUAT": useUAT,
	}
}

// expectUploadAndCreate sets up a successful upload and task creation.
func expectUploadAndCreate(platform *mockPlatform) {
	platform.On("UploadMedia", mock.Anything, mock.Anything, mock.Anything).Return("boxcnToken", nil).Once()
	platform.On("CreateImportTask", mock.Anything, mock.Anything, mock.Anything).Return("ticket-1", nil).Once()
}

func TestImport_PollSequences(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int
		wantError bool
		wantText  string
	}{
		{
			name:      "succeeds on third poll",
			statuses:  []int{1, 1, 0},
			wantCalls: 3,
			wantText:  `{"result":{"job_status":0}}`,
		},
		{
			name:      "never finishes",
			statuses:  []int{1, 1, 1, 1, 1},
			wantCalls: 5,
			wantError: true,
			wantText:  `{"msg":"导入文档失败，请稍后再试"}`,
		},
		{
			name:      "unknown status passes through",
			statuses:  []int{3},
			wantCalls: 1,
			wantText:  `{"result":{"job_status":3}}`,
		},
		{
			name:      "running then unknown",
			statuses:  []int{2, 116},
			wantCalls: 2,
			wantText:  `{"result":{"job_status":116}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := &mockPlatform{}
			expectUploadAndCreate(platform)
			for _, code := range tt.statuses {
				platform.On("GetImportTask", mock.Anything, "ticket-1", mock.Anything).
					Return(jobStatus(code, fmt.Sprintf(`{"result":{"job_status":%d}}`, code)), nil).Once()
			}

			h := newTestHandlers(t, platform, "")
			result, err := h.Import(context.Background(), newRequest(importRequest(false)))
			require.NoError(t, err)

			assert.Equal(t, tt.wantError, result.IsError)
			assert.JSONEq(t, tt.wantText, resultText(t, result))
			platform.AssertNumberOfCalls(t, "GetImportTask", tt.wantCalls)
		})
	}
}

func TestImport_WaitsBetweenPolls(t *testing.T) {
	platform := &mockPlatform{}
	expectUploadAndCreate(platform)
	platform.On("GetImportTask", mock.Anything, "ticket-1", mock.Anything).Return(jobStatus(1, `{}`), nil).Twice()
	platform.On("GetImportTask", mock.Anything, "ticket-1", mock.Anything).Return(jobStatus(0, `{}`), nil).Once()

	h := newTestHandlers(t, platform, "")
	h.Poll = PollPolicy{MaxAttempts: 5, Interval: 20 * time.Millisecond}

	start := time.Now()
	result, err := h.Import(context.Background(), newRequest(importRequest(false)))
	require.NoError(t, err)

	assert.False(t, result.IsError)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestImport_UploadFields(t *testing.T) {
	platform := &mockPlatform{}
	var upload lark.MediaUpload
	var task lark.ImportTask
	platform.On("UploadMedia", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { upload = args.Get(1).(lark.MediaUpload) }).
		Return("boxcnToken", nil).Once()
	platform.On("CreateImportTask", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { task = args.Get(1).(lark.ImportTask) }).
		Return("ticket-1", nil).Once()
	platform.On("GetImportTask", mock.Anything, "ticket-1", mock.Anything).Return(jobStatus(0, `{}`), nil).Once()

	h := newTestHandlers(t, platform, "")
	_, err := h.Import(context.Background(), newRequest(importRequest(false)))
	require.NoError(t, err)

	assert.Equal(t, "docx.md", upload.FileName)
	assert.Equal(t, "ccm_import_open", upload.ParentType)
	assert.Equal(t, "/", upload.ParentNode)
	assert.JSONEq(t, `{"obj_type":"docx","file_extension":"md"}`, upload.Extra)
	assert.Equal(t, testMarkdown, string(upload.Content))
	// Size is the UTF-8 byte length, not the character count.
	assert.Equal(t, len([]byte(testMarkdown)), len(upload.Content))
	assert.NotEqual(t, utf8.RuneCountInString(testMarkdown), len(upload.Content))

	assert.Equal(t, lark.ImportTask{
		FileExtension: "md",
		FileToken:     "boxcnToken",
		Type:          "docx",
		FileName:      "周报",
		MountType:     1,
		MountKey:      "",
	}, task)
}

func TestImport_Identity(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		useUAT bool
		want   lark.Identity
	}{
		{name: "token and useUAT", token: "u-token", useUAT: true, want: lark.UserIdentity("u-token")},
		{name: "token without useUAT", token: "u-token", want: lark.TenantIdentity()},
		{name: "useUAT without token", useUAT: true, want: lark.TenantIdentity()},
		{name: "neither", want: lark.TenantIdentity()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := &mockPlatform{}
			platform.On("UploadMedia", mock.Anything, mock.Anything, tt.want).Return("boxcnToken", nil).Once()
			platform.On("CreateImportTask", mock.Anything, mock.Anything, tt.want).Return("ticket-1", nil).Once()
			platform.On("GetImportTask", mock.Anything, "ticket-1", tt.want).Return(jobStatus(0, `{}`), nil).Once()

			h := newTestHandlers(t, platform, "")
			ctx := server.ContextWithUserAccessToken(context.Background(), tt.token)
			result, err := h.Import(ctx, newRequest(importRequest(tt.useUAT)))
			require.NoError(t, err)

			assert.False(t, result.IsError)
			platform.AssertExpectations(t)
		})
	}
}

func TestImport_MissingFileToken(t *testing.T) {
	for _, uploadErr := range []error{nil, fmt.Errorf("lark upload media: file_token: %w", lark.ErrMissingField)} {
		platform := &mockPlatform{}
		platform.On("UploadMedia", mock.Anything, mock.Anything, mock.Anything).Return("", uploadErr).Once()

		h := newTestHandlers(t, platform, "")
		result, err := h.Import(context.Background(), newRequest(importRequest(false)))
		require.NoError(t, err)

		assert.True(t, result.IsError)
		assert.JSONEq(t, `{"msg":"导入文档失败，请检查markdown文件内容"}`, resultText(t, result))
		platform.AssertNotCalled(t, "CreateImportTask", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestImport_MissingTicket(t *testing.T) {
	platform := &mockPlatform{}
	platform.On("UploadMedia", mock.Anything, mock.Anything, mock.Anything).Return("boxcnToken", nil).Once()
	platform.On("CreateImportTask", mock.Anything, mock.Anything, mock.Anything).Return("", nil).Once()

	h := newTestHandlers(t, platform, "")
	result, err := h.Import(context.Background(), newRequest(importRequest(false)))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.JSONEq(t, `{"msg":"导入文档失败，请检查markdown文件内容"}`, resultText(t, result))
	platform.AssertNotCalled(t, "GetImportTask", mock.Anything, mock.Anything, mock.Anything)
}

func TestImport_UpstreamErrors(t *testing.T) {
	apiErr := &lark.APIError{
		Op:         "create_import_task",
		StatusCode: 400,
		Code:       1069902,
		Msg:        "no permission",
		Body:       json.RawMessage(`{"code":1069902,"msg":"no permission"}`),
	}

	t.Run("upload", func(t *testing.T) {
		platform := &mockPlatform{}
		platform.On("UploadMedia", mock.Anything, mock.Anything, mock.Anything).Return("", apiErr).Once()

		h := newTestHandlers(t, platform, "")
		result, err := h.Import(context.Background(), newRequest(importRequest(false)))
		require.NoError(t, err)

		assert.True(t, result.IsError)
		assert.JSONEq(t, `{"code":1069902,"msg":"no permission"}`, resultText(t, result))
		platform.AssertNotCalled(t, "CreateImportTask", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("create", func(t *testing.T) {
		platform := &mockPlatform{}
		platform.On("UploadMedia", mock.Anything, mock.Anything, mock.Anything).Return("boxcnToken", nil).Once()
		platform.On("CreateImportTask", mock.Anything, mock.Anything, mock.Anything).Return("", apiErr).Once()

		h := newTestHandlers(t, platform, "")
		result, err := h.Import(context.Background(), newRequest(importRequest(false)))
		require.NoError(t, err)

		assert.True(t, result.IsError)
		assert.JSONEq(t, `{"code":1069902,"msg":"no permission"}`, resultText(t, result))
	})

	t.Run("poll", func(t *testing.T) {
		platform := &mockPlatform{}
		expectUploadAndCreate(platform)
		platform.On("GetImportTask", mock.Anything, "ticket-1", mock.Anything).Return(jobStatus(1, `{}`), nil).Once()
		platform.On("GetImportTask", mock.Anything, "ticket-1", mock.Anything).Return(nil, errors.New("connection reset")).Once()

		h := newTestHandlers(t, platform, "")
		result, err := h.Import(context.Background(), newRequest(importRequest(false)))
		require.NoError(t, err)

		assert.True(t, result.IsError)
		assert.JSONEq(t, `{"msg":"connection reset"}`, resultText(t, result))
		platform.AssertNumberOfCalls(t, "GetImportTask", 2)
	})
}

func TestImport_CancelledWhilePolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	platform := &mockPlatform{}
	expectUploadAndCreate(platform)
	platform.On("GetImportTask", mock.Anything, "ticket-1", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(jobStatus(1, `{}`), nil).Once()

	h := newTestHandlers(t, platform, "")
	h.Poll = PollPolicy{MaxAttempts: 5, Interval: time.Hour}

	result, err := h.Import(ctx, newRequest(importRequest(false)))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.JSONEq(t, `{"msg":"context canceled"}`, resultText(t, result))
	platform.AssertNumberOfCalls(t, "GetImportTask", 1)
}

func TestImport_EmptyMarkdownReachesPlatform(t *testing.T) {
	platform := &mockPlatform{}
	var upload lark.MediaUpload
	platform.On("UploadMedia", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { upload = args.Get(1).(lark.MediaUpload) }).
		Return("", nil).Once()

	h := newTestHandlers(t, platform, "")
	result, err := h.Import(context.Background(), newRequest(map[string]any{"data": map[string]any{"markdown": ""}}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.JSONEq(t, `{"msg":"导入文档失败，请检查markdown文件内容"}`, resultText(t, result))
	assert.Empty(t, upload.Content)
	platform.AssertNumberOfCalls(t, "UploadMedia", 1)
}

func TestImport_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{name: "missing markdown", data: map[string]any{}},
		{name: "markdown null", data: map[string]any{"markdown": nil}},
		{name: "file name too long", data: map[string]any{"markdown": "# x", "file_name": "一二三四五六七八九十一二三四五六七八九十一二三四五六七八"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := &mockPlatform{}
			h := newTestHandlers(t, platform, "")

			result, err := h.Import(context.Background(), newRequest(map[string]any{"data": tt.data}))
			require.NoError(t, err)

			assert.True(t, result.IsError)
			platform.AssertNotCalled(t, "UploadMedia", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestImport_RecordsOutcome(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	metrics, err := instrumentation.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"), false)
	require.NoError(t, err)

	platform := &mockPlatform{}
	expectUploadAndCreate(platform)
	platform.On("GetImportTask", mock.Anything, "ticket-1", mock.Anything).Return(jobStatus(1, `{}`), nil).Once()
	platform.On("GetImportTask", mock.Anything, "ticket-1", mock.Anything).Return(jobStatus(0, `{}`), nil).Once()

	h := newTestHandlers(t, platform, "")
	h.sc.SetMetrics(metrics)

	_, err = h.Import(context.Background(), newRequest(importRequest(false)))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				for _, key := range []string{"job_status", "outcome"} {
					if v, ok := dp.Attributes.Value(attribute.Key(key)); ok {
						sums[m.Name+"/"+v.AsString()] += dp.Value
					}
				}
			}
		}
	}

	assert.Equal(t, int64(1), sums["docx_import_poll_attempts_total/in_progress"])
	assert.Equal(t, int64(1), sums["docx_import_poll_attempts_total/succeeded"])
	assert.Equal(t, int64(1), sums["docx_import_outcomes_total/"+instrumentation.ImportOutcomeSucceeded])
}
