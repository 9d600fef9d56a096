package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkdrive "github.com/larksuite/oapi-sdk-go/v3/service/drive/v1"

	"github.com/teemow/larkdocs/internal/logging"
)

// Domain shorthands accepted by ResolveDomain.
const (
	DomainFeishu = "feishu"
	DomainLark   = "lark"
)

// DefaultRequestTimeout bounds a single platform request.
const DefaultRequestTimeout = 30 * time.Second

// DocPlatform is the set of platform operations the docx tools need.
type DocPlatform interface {
	// Request performs a generic JSON request and returns the raw response body.
	Request(ctx context.Context, method, path string, body any, id Identity) (json.RawMessage, error)

	// UploadMedia uploads a file and returns its file token.
	UploadMedia(ctx context.Context, upload MediaUpload, id Identity) (string, error)

	// CreateImportTask starts an import job and returns its ticket.
	CreateImportTask(ctx context.Context, task ImportTask, id Identity) (string, error)

	// GetImportTask looks up the status of an import job.
	GetImportTask(ctx context.Context, ticket string, id Identity) (*ImportTaskStatus, error)
}

// Config holds the settings for NewClient.
type Config struct {
	AppID     string
	AppSecret string

	// Domain is "feishu", "lark" or a base URL. Empty means feishu.
	Domain string

	// Timeout bounds each request; zero means DefaultRequestTimeout
	Timeout time.Duration

	// HTTPClient replaces the SDK's default client, e.g. to add tracing
	HTTPClient *http.Client

	Logger *slog.Logger
	Debug  bool
}

// Client implements DocPlatform on top of the Lark SDK.
type Client struct {
	sdk     *lark.Client
	baseURL string
	logger  *slog.Logger
}

var _ DocPlatform = (*Client)(nil)

// ResolveDomain maps a domain setting to the open platform base URL.
func ResolveDomain(domain string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(domain)) {
	case "", DomainFeishu:
		return lark.FeishuBaseUrl, nil
	case DomainLark:
		return lark.LarkBaseUrl, nil
	}

	u, err := url.Parse(domain)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid domain %q: want %q, %q or an http(s) URL", domain, DomainFeishu, DomainLark)
	}
	return strings.TrimRight(domain, "/"), nil
}

// NewClient creates a platform client for the given app credentials.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, errors.New("app id and app secret are required")
	}

	baseURL, err := ResolveDomain(cfg.Domain)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	logLevel := larkcore.LogLevelInfo
	if cfg.Debug {
		logLevel = larkcore.LogLevelDebug
	}

	opts := []lark.ClientOptionFunc{
		lark.WithOpenBaseUrl(baseURL),
		lark.WithLogger(logging.NewLarkLogger(logger)),
		lark.WithLogLevel(logLevel),
		lark.WithReqTimeout(timeout),
		lark.WithEnableTokenCache(true),
	}
	if cfg.Debug {
		opts = append(opts, lark.WithLogReqAtDebug(true))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, lark.WithHttpClient(cfg.HTTPClient))
	}

	return &Client{
		sdk:     lark.NewClient(cfg.AppID, cfg.AppSecret, opts...),
		baseURL: baseURL,
		logger:  logging.WithService(logger, "lark"),
	}, nil
}

// BaseURL returns the open platform base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs a generic JSON request against path.
func (c *Client) Request(ctx context.Context, method, path string, body any, id Identity) (json.RawMessage, error) {
	req := &larkcore.ApiReq{
		HttpMethod:                method,
		ApiPath:                   path,
		Body:                      body,
		QueryParams:               larkcore.QueryParams{},
		PathParams:                larkcore.PathParams{},
		SupportedAccessTokenTypes: id.tokenTypes(),
	}

	resp, err := c.sdk.Do(ctx, req, id.requestOptions()...)
	if err != nil {
		return nil, fmt.Errorf("lark request %s %s: %w", method, path, err)
	}

	if _, err := checkResponse("request", resp.StatusCode, resp.RawBody); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "platform request completed",
		logging.Operation(method+" "+path),
		logging.AuthMode(string(id.Mode)))

	return append(json.RawMessage(nil), resp.RawBody...), nil
}

// UploadMedia uploads a file through the drive media upload_all endpoint.
func (c *Client) UploadMedia(ctx context.Context, upload MediaUpload, id Identity) (string, error) {
	bodyBuilder := larkdrive.NewUploadAllMediaReqBodyBuilder().
		FileName(upload.FileName).
		ParentType(upload.ParentType).
		ParentNode(upload.ParentNode).
		Size(len(upload.Content)).
		File(bytes.NewReader(upload.Content))
	if upload.Extra != "" {
		bodyBuilder = bodyBuilder.Extra(upload.Extra)
	}

	req := larkdrive.NewUploadAllMediaReqBuilder().
		Body(bodyBuilder.Build()).
		Build()

	resp, err := c.sdk.Drive.V1.Media.UploadAll(ctx, req, id.requestOptions()...)
	if err != nil {
		return "", fmt.Errorf("lark upload media: %w", err)
	}
	if err := checkTyped("upload_media", resp.ApiResp, resp.Code, resp.Msg); err != nil {
		return "", err
	}

	if resp.Data == nil || resp.Data.FileToken == nil || *resp.Data.FileToken == "" {
		return "", fmt.Errorf("lark upload media: file_token: %w", ErrMissingField)
	}
	return *resp.Data.FileToken, nil
}

// CreateImportTask starts an import job for a previously uploaded file.
func (c *Client) CreateImportTask(ctx context.Context, task ImportTask, id Identity) (string, error) {
	taskBuilder := larkdrive.NewImportTaskBuilder().
		FileExtension(task.FileExtension).
		FileToken(task.FileToken).
		Type(task.Type).
		Point(larkdrive.NewImportTaskMountPointBuilder().
			MountType(task.MountType).
			MountKey(task.MountKey).
			Build())
	if task.FileName != "" {
		taskBuilder = taskBuilder.FileName(task.FileName)
	}

	req := larkdrive.NewCreateImportTaskReqBuilder().
		ImportTask(taskBuilder.Build()).
		Build()

	resp, err := c.sdk.Drive.V1.ImportTask.Create(ctx, req, id.requestOptions()...)
	if err != nil {
		return "", fmt.Errorf("lark create import task: %w", err)
	}
	if err := checkTyped("create_import_task", resp.ApiResp, resp.Code, resp.Msg); err != nil {
		return "", err
	}

	if resp.Data == nil || resp.Data.Ticket == nil || *resp.Data.Ticket == "" {
		return "", fmt.Errorf("lark create import task: ticket: %w", ErrMissingField)
	}
	return *resp.Data.Ticket, nil
}

// GetImportTask returns the current status of the import job identified by ticket.
func (c *Client) GetImportTask(ctx context.Context, ticket string, id Identity) (*ImportTaskStatus, error) {
	req := larkdrive.NewGetImportTaskReqBuilder().
		Ticket(ticket).
		Build()

	resp, err := c.sdk.Drive.V1.ImportTask.Get(ctx, req, id.requestOptions()...)
	if err != nil {
		return nil, fmt.Errorf("lark get import task: %w", err)
	}
	if err := checkTyped("get_import_task", resp.ApiResp, resp.Code, resp.Msg); err != nil {
		return nil, err
	}

	status := &ImportTaskStatus{}
	if resp.Data != nil && resp.Data.Result != nil {
		status.JobStatus = resp.Data.Result.JobStatus
	}
	if resp.ApiResp != nil {
		status.Payload = DataOrBody(resp.RawBody)
	}
	return status, nil
}

// checkTyped turns a typed SDK response with a failure code into an *APIError.
func checkTyped(op string, raw *larkcore.ApiResp, code int, msg string) error {
	if raw == nil {
		if code != 0 {
			return &APIError{Op: op, Code: code, Msg: msg}
		}
		return nil
	}
	if raw.StatusCode < 400 && code == 0 {
		return nil
	}
	return &APIError{
		Op:         op,
		StatusCode: raw.StatusCode,
		Code:       code,
		Msg:        msg,
		Body:       append(json.RawMessage(nil), raw.RawBody...),
	}
}
