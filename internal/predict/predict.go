// Package predict calls the remote prediction service and the file upload
// service that feeds it.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/agentstation/fieldeval/internal/transport"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/logging"
)

// Request is the prediction service payload.
type Request struct {
	GlobalTenantID    string `json:"globalTenantId"`
	FileTypeID        string `json:"fileTypeId"`
	IntegrationID     string `json:"integrationId"`
	TenantInformation any    `json:"tenantInformation"`
}

// Response is a prediction and the wall-clock time the call took.
type Response struct {
	Prediction map[string]any
	Duration   time.Duration
}

// Upload describes one account structure file to store in the bucket.
type Upload struct {
	Name   string
	Bucket string
	Prefix string
	Body   io.Reader
}

// Client talks to the prediction and upload endpoints.
type Client struct {
	http           *transport.Client
	endpoint       string
	uploadEndpoint string
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the prediction URL.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithUploadEndpoint sets the upload URL.
func WithUploadEndpoint(url string) Option {
	return func(c *Client) { c.uploadEndpoint = url }
}

// New creates a Client on top of an HTTP transport.
func New(hc *transport.Client, opts ...Option) *Client {
	c := &Client{http: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured prediction URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Predict requests a prediction for one account and times the call.
func (c *Client) Predict(ctx context.Context, req Request) (*Response, error) {
	if c.endpoint == "" {
		return nil, errors.NewConfigError("prediction", "endpoint not configured", nil)
	}
	logger := logging.FromContext(ctx)

	start := time.Now()
	body, err := c.http.PostJSON(ctx, c.endpoint, req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	var prediction map[string]any
	if err := transport.DecodeJSON(body, &prediction); err != nil {
		return nil, err
	}
	if prediction == nil {
		return nil, errors.NewParseError("json", "prediction response", "expected a JSON object", nil)
	}

	logger.Info().
		Str("tenant_id", req.GlobalTenantID).
		Str("file_type", req.FileTypeID).
		Dur("duration", elapsed).
		Msg("Prediction received")

	return &Response{Prediction: prediction, Duration: elapsed}, nil
}

// Upload sends a file as a multipart form with the bucket fields the upload
// service expects.
func (c *Client) Upload(ctx context.Context, u Upload) error {
	if c.uploadEndpoint == "" {
		return errors.NewConfigError("upload", "endpoint not configured", nil)
	}
	content, err := io.ReadAll(u.Body)
	if err != nil {
		return errors.WrapIO("read", u.Name, err)
	}

	var buf bytes.Buffer
	contentType, err := encodeUpload(&buf, u, content)
	if err != nil {
		return errors.WrapResource("encode", "upload", u.Name, err)
	}
	payload := buf.Bytes()

	body, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadEndpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
	if err != nil {
		return errors.WrapResource("upload", "account structure", u.Name, err)
	}

	logging.FromContext(ctx).Info().
		Str("file", u.Name).
		RawJSON("response", compactOrQuote(body)).
		Msg("Uploaded account structure")
	return nil
}

func encodeUpload(w io.Writer, u Upload, content []byte) (string, error) {
	mw := multipart.NewWriter(w)
	part, err := mw.CreateFormFile("file", u.Name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	if err := mw.WriteField("bucket_name", u.Bucket); err != nil {
		return "", err
	}
	if err := mw.WriteField("blob_key_prefix", u.Prefix); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	return mw.FormDataContentType(), nil
}

// compactOrQuote returns body when it is valid JSON and a quoted string otherwise.
func compactOrQuote(body []byte) []byte {
	var buf bytes.Buffer
	if json.Compact(&buf, body) == nil && buf.Len() > 0 {
		return buf.Bytes()
	}
	q, _ := json.Marshal(string(body))
	return q
}
