// Package transport provides the HTTP client used to talk to the
// prediction and upload services.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/logging"
)

// Client provides HTTP client functionality with authentication, pacing
// and retries on transient failures.
type Client struct {
	http    *http.Client
	auth    Authenticator
	token   string
	service string
	limiter *rate.Limiter
	retries int
	backoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithToken sets the credential passed to the authenticator.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithAuth sets the authenticator.
func WithAuth(auth Authenticator) Option {
	return func(c *Client) { c.auth = auth }
}

// WithRate limits outgoing requests to rps per second. Zero disables pacing.
func WithRate(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
		c.backoff = backoff
	}
}

// New creates a client for the named service.
func New(service string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
		auth:    &NoAuth{},
		service: service,
		retries: constants.MaxRetries,
		backoff: constants.RetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the service name used in errors and logs.
func (c *Client) Service() string { return c.service }

// Do sends a request built by build, retrying on network errors, 429 and
// 5xx responses. build is called once per attempt so bodies can be
// replayed. Non-2xx responses are returned as *errors.APIError.
func (c *Client) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(attempt)
			logging.FromContext(ctx).Debug().
				Str("service", c.service).
				Int("attempt", attempt).
				Dur("backoff", wait).
				Err(lastErr).
				Msg("Retrying request")
			select {
			case <-ctx.Done():
				return nil, errors.NewResourceError("call", c.service, "", ctx.Err())
			case <-time.After(wait):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, errors.NewResourceError("call", c.service, "", err)
			}
		}

		body, retry, err := c.once(ctx, build)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, bool, error) {
	req, err := build(ctx)
	if err != nil {
		return nil, false, errors.WrapResource("create", "request", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		c.auth.Apply(req, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, errors.NewResourceError("call", c.service, req.URL.String(), ctx.Err())
		}
		return nil, true, &errors.APIError{Service: c.service, Endpoint: req.URL.String(), Message: err.Error(), Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.FromContext(ctx).Warn().Err(cerr).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.WrapIO("read", "response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errors.NewAPIError(c.service, resp.StatusCode, string(bytes.TrimSpace(body)))
		apiErr.Endpoint = req.URL.String()
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, apiErr
	}
	return body, false, nil
}

// PostJSON posts payload as JSON and returns the raw response body.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WrapResource("encode", "request", url, err)
	}
	return c.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// DecodeJSON decodes a response body into target, keeping number literals.
func DecodeJSON(body []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return errors.WrapParse("json", "response", err)
	}
	return nil
}
