// Package auditclient talks to the Audit Service over its single HTTP
// endpoint, POST {base-url}/api/upload.
package auditclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/auditoria-energia/internal/audit"
)

// UploadPath is the endpoint path appended to the base URL.
const UploadPath = "/api/upload"

// FileField is the multipart field carrying the bill.
const FileField = "file"

// Client uploads bills to the Audit Service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each upload. Zero or negative means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// uploadResponse is the envelope returned by the service for both success
// and failure. Fields are kept raw so a mistyped member never hides the
// others.
type uploadResponse struct {
	Filename json.RawMessage `json:"filename"`
	Result   json.RawMessage `json:"resultado"`
	Error    json.RawMessage `json:"error"`
}

// decodeEnvelope accepts any JSON document. Anything other than an object
// yields an empty envelope.
func decodeEnvelope(r io.Reader) (uploadResponse, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return uploadResponse{}, err
	}
	var payload uploadResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return uploadResponse{}, nil
	}
	return payload, nil
}

func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// auditResult decodes `resultado`. A missing or null value is nil; a value
// that is not an object still counts as an answer, with every field absent.
func auditResult(raw json.RawMessage) *audit.Result {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var result audit.Result
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return &audit.Result{}
	}
	return &result
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Endpoint returns the full upload URL.
func (c *Client) Endpoint() string {
	return c.baseURL + UploadPath
}

// Upload reads the selected file from disk and submits it.
func (c *Client) Upload(ctx context.Context, file audit.SelectedFile) (*audit.Result, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("auditclient: open %s: %w", file.Path, err)
	}
	defer f.Close()
	return c.UploadReader(ctx, file.Name, file.Kind.ContentType(), f)
}

// UploadReader submits the content of r as the `file` field. A nil Result
// with a nil error means the service answered 2xx without `resultado`.
//
// Errors are *audit.ServiceError for non-2xx answers and wrap
// audit.ErrConnection when no decodable answer was received.
func (c *Client) UploadReader(ctx context.Context, name, contentType string, r io.Reader) (*audit.Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, formType, err := multipartBody(name, contentType, r)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), body)
	if err != nil {
		return nil, fmt.Errorf("auditclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", formType)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("upload failed", zap.String("file", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", audit.ErrConnection, err)
	}
	defer resp.Body.Close()

	payload, err := decodeEnvelope(resp.Body)
	if err != nil {
		c.logger.Warn("undecodable response",
			zap.String("file", name),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: decode response: %v", audit.ErrConnection, err)
	}

	c.logger.Info("upload answered",
		zap.String("file", name),
		zap.Int("status", resp.StatusCode),
		zap.String("stored_as", rawString(payload.Filename)),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &audit.ServiceError{StatusCode: resp.StatusCode, Message: rawString(payload.Error)}
	}
	return auditResult(payload.Result), nil
}

func multipartBody(name, contentType string, r io.Reader) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FileField, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("auditclient: create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", fmt.Errorf("auditclient: copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("auditclient: close form: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}
