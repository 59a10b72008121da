// Package httpclient is a thin JSON-over-HTTP layer for the Mattermost bot
// webhook. It doesn't retry failed requests: every failure is reported as
// [ErrUpstream], and aborts the current run.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tzrikka/revowners/internal/logger"
)

const (
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 512
)

// ErrUpstream is returned when an HTTP call to an external service fails.
var ErrUpstream = errors.New("upstream call failed")

// StatusError describes an HTTP response with a non-2xx status code.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}

type Client struct {
	baseURL string
	headers http.Header
	http    *http.Client
}

func New(baseURL string, headers http.Header, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if headers == nil {
		headers = http.Header{}
	}

	return &Client{
		baseURL: baseURL,
		headers: headers,
		http:    &http.Client{Timeout: timeout},
	}
}

// Get sends a GET request, and decodes the JSON response into out (unless it's nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// Post sends a POST request with a JSON body, and decodes
// the JSON response into out (unless it's nil).
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := c.Do(ctx, http.MethodPost, path, nil, in)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// Put sends a PUT request with a JSON body, and decodes
// the JSON response into out (unless it's nil).
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	body, err := c.Do(ctx, http.MethodPut, path, nil, in)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// Do sends an HTTP request, with an optional JSON body, and returns the raw response body.
// Transport errors and non-2xx responses are both reported as [ErrUpstream].
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to construct HTTP request: %w", err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	l := logger.FromContext(ctx).With(slog.String("http_method", method), slog.String("url_path", path))
	l.Debug("sending HTTP request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read HTTP response body: %w", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Method: method, URL: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	l.Debug("received HTTP response", slog.Int("status_code", resp.StatusCode), slog.Int("body_size", len(body)))
	return body, nil
}

func decode(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode JSON response: %w", ErrUpstream, err)
	}
	return nil
}
