package common

import (
	"context"
	"encoding/json"
	"time"

	"github.com/teemow/larkdocs/internal/instrumentation"
	"github.com/teemow/larkdocs/internal/lark"
)

// SearchPath is the docs search endpoint.
const SearchPath = "/open-apis/suite/docs-api/search/object"

// InstrumentedPlatform decorates a lark.DocPlatform with a client span and
// platform operation metrics per call.
type InstrumentedPlatform struct {
	next    lark.DocPlatform
	metrics *instrumentation.Metrics
}

var _ lark.DocPlatform = (*InstrumentedPlatform)(nil)

// NewInstrumentedPlatform wraps next. metrics may be nil.
func NewInstrumentedPlatform(next lark.DocPlatform, metrics *instrumentation.Metrics) *InstrumentedPlatform {
	return &InstrumentedPlatform{next: next, metrics: metrics}
}

// observe runs one platform call inside a span and records its outcome.
func (p *InstrumentedPlatform) observe(ctx context.Context, service, operation string, id lark.Identity, attrs *instrumentation.SpanAttributeBuilder, call func(context.Context) error) error {
	ctx, span := instrumentation.StartPlatformSpan(ctx, service, operation, attrs.WithAuthMode(string(id.Mode)).Build()...)
	defer span.End()

	start := time.Now()
	err := call(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	p.metrics.RecordPlatformOperation(ctx, service, operation, string(id.Mode), status, time.Since(start))
	return err
}

// Request implements lark.DocPlatform.
func (p *InstrumentedPlatform) Request(ctx context.Context, method, path string, body any, id lark.Identity) (json.RawMessage, error) {
	operation := "request"
	if path == SearchPath {
		operation = instrumentation.OperationSearch
	}

	var out json.RawMessage
	err := p.observe(ctx, instrumentation.ServiceDocx, operation, id, instrumentation.NewSpanAttributeBuilder(), func(ctx context.Context) error {
		var err error
		out, err = p.next.Request(ctx, method, path, body, id)
		return err
	})
	return out, err
}

// UploadMedia implements lark.DocPlatform.
func (p *InstrumentedPlatform) UploadMedia(ctx context.Context, upload lark.MediaUpload, id lark.Identity) (string, error) {
	var token string
	attrs := instrumentation.NewSpanAttributeBuilder().WithUploadSize(len(upload.Content))
	err := p.observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationUploadMedia, id, attrs, func(ctx context.Context) error {
		var err error
		token, err = p.next.UploadMedia(ctx, upload, id)
		return err
	})
	return token, err
}

// CreateImportTask implements lark.DocPlatform.
func (p *InstrumentedPlatform) CreateImportTask(ctx context.Context, task lark.ImportTask, id lark.Identity) (string, error) {
	var ticket string
	err := p.observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationCreateImportTask, id, instrumentation.NewSpanAttributeBuilder(), func(ctx context.Context) error {
		var err error
		ticket, err = p.next.CreateImportTask(ctx, task, id)
		return err
	})
	return ticket, err
}

// GetImportTask implements lark.DocPlatform.
func (p *InstrumentedPlatform) GetImportTask(ctx context.Context, ticket string, id lark.Identity) (*lark.ImportTaskStatus, error) {
	var status *lark.ImportTaskStatus
	attrs := instrumentation.NewSpanAttributeBuilder().WithTicket(ticket)
	err := p.observe(ctx, instrumentation.ServiceDrive, instrumentation.OperationGetImportTask, id, attrs, func(ctx context.Context) error {
		var err error
		status, err = p.next.GetImportTask(ctx, ticket, id)
		return err
	})
	return status, err
}
