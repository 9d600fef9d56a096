package docx_tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/larkdocs/internal/instrumentation"
	"github.com/teemow/larkdocs/internal/lark"
	"github.com/teemow/larkdocs/internal/logging"
	"github.com/teemow/larkdocs/internal/tools/common"
)

// Fixed upload parameters of a markdown import.
const (
	uploadFileName   = "docx.md"
	uploadParentType = "ccm_import_open"
	uploadParentNode = "/"
	importExtension  = "md"
	importType       = "docx"
	importMountType  = 1
)

var uploadExtra = mustJSON(map[string]string{"obj_type": importType, "file_extension": importExtension})

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// newMarkdownUpload wraps markdown as the upload file. The client sends the
// content's byte length as the upload size.
func newMarkdownUpload(markdown string) lark.MediaUpload {
	return lark.MediaUpload{
		FileName:   uploadFileName,
		ParentType: uploadParentType,
		ParentNode: uploadParentNode,
		Extra:      uploadExtra,
		Content:    []byte(markdown),
	}
}

// Import handles docx.builtin.import: upload the markdown, create an import
// task for it, then poll the task.
func (h *Handlers) Import(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindArgs(request)
	if err != nil {
		return messageResult(err.Error()), nil
	}

	var req ImportRequest
	if err := decodeData(args.Data, &req); err != nil {
		return messageResult(err.Error()), nil
	}
	if err := req.Validate(); err != nil {
		return messageResult(err.Error()), nil
	}

	id, _ := selectIdentity(common.UserAccessToken(ctx, h.sc), args.UseUAT, lark.AuthTenant)
	platform := h.sc.Platform()
	metrics := h.sc.Metrics()
	logger := h.logger(ctx).With(logging.Tool(ImportToolID), logging.AuthMode(string(id.Mode)))

	fileToken, err := platform.UploadMedia(ctx, newMarkdownUpload(*req.Markdown), id)
	if err == nil && fileToken == "" {
		err = lark.ErrMissingField
	}
	if err != nil {
		metrics.RecordImportOutcome(ctx, instrumentation.ImportOutcomeFailed)
		return stageFailure(logger, "upload markdown", err), nil
	}

	ticket, err := platform.CreateImportTask(ctx, lark.ImportTask{
		FileExtension: importExtension,
		FileToken:     fileToken,
		Type:          importType,
		FileName:      req.FileName,
		MountType:     importMountType,
		MountKey:      "",
	}, id)
	if err == nil && ticket == "" {
		err = lark.ErrMissingField
	}
	if err != nil {
		metrics.RecordImportOutcome(ctx, instrumentation.ImportOutcomeFailed)
		return stageFailure(logger, "create import task", err), nil
	}
	logger = logger.With(logging.Ticket(ticket))
	logger.Debug("import task created")

	status, err := h.Poll.Run(ctx, func(ctx context.Context, attempt int) (*lark.ImportTaskStatus, error) {
		status, err := platform.GetImportTask(ctx, ticket, id)
		if err != nil {
			return nil, err
		}
		if status == nil {
			status = &lark.ImportTaskStatus{}
		}
		metrics.RecordImportPoll(ctx, status.JobStatus)
		instrumentation.AddSpanEvent(ctx, "import.poll",
			attribute.Int(instrumentation.SpanAttrAttempt, attempt),
			attribute.String(instrumentation.SpanAttrJobStatus, instrumentation.JobStatusLabel(status.JobStatus, true)),
		)
		logger.Debug("import task polled", logging.Attempt(attempt), logging.JobStatus(status.JobStatus))
		return status, nil
	})

	switch {
	case errors.Is(err, ErrPollExhausted):
		metrics.RecordImportOutcome(ctx, instrumentation.ImportOutcomeExhausted)
		logger.Warn("import task did not finish in time")
		return messageResult(msgImportRetryLater), nil
	case err != nil:
		metrics.RecordImportOutcome(ctx, instrumentation.ImportOutcomeFailed)
		logger.Warn("import task poll failed", logging.Err(err))
		return errorResult(err), nil
	case status.Succeeded():
		metrics.RecordImportOutcome(ctx, instrumentation.ImportOutcomeSucceeded)
	default:
		// Statuses other than in-progress are returned as they are.
		metrics.RecordImportOutcome(ctx, instrumentation.ImportOutcomePassThrough)
		logger.Info("import task finished with unclassified status", logging.JobStatus(status.JobStatus))
	}

	return successResult(status.Payload), nil
}

// stageFailure maps an upload or create failure to its result. A response
// without the expected token or ticket gets the fixed content message.
func stageFailure(logger *slog.Logger, stage string, err error) *mcp.CallToolResult {
	logger.Warn("markdown import failed", logging.Operation(stage), logging.Err(err))
	if errors.Is(err, lark.ErrMissingField) {
		return messageResult(msgImportCheckContent)
	}
	return errorResult(err)
}
