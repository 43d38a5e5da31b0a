// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bluemedix-workflow/internal/common/errors"
	"bluemedix-workflow/internal/common/logger"
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the raw outcome of a call that reached the backend.
type Response struct {
	Status int
	Body   []byte
}

// envelope is the part of every backend response the client interprets itself.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// Client issues JSON requests against the backend and maps failures onto
// the StandardError taxonomy. It is not safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient Doer
	token      string
	logger     logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return NewClientWithDoer(baseURL, &http.Client{Timeout: timeout}, log)
}

func NewClientWithDoer(baseURL string, doer Doer, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: doer,
		logger:     log,
	}
}

// SetToken sets the bearer credential attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends body as JSON and decodes a successful response into out.
// A response with success:false or status >= 400 yields BACKEND_REJECTED,
// a request that never got a response yields TRANSPORT_FAILED, and a body
// that cannot be decoded yields ASSERTION_FAILED.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) (*Response, error) {
	operation := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.NewTransportError(operation, fmt.Errorf("failed to marshal request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.NewTransportError(operation, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Request failed", map[string]interface{}{
			"operation": operation,
			"error":     err,
		})
		return nil, errors.NewTransportError(operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTransportError(operation, fmt.Errorf("failed to read response body: %w", err))
	}

	c.logger.Debug("Request completed", map[string]interface{}{
		"operation":  operation,
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})

	result := &Response{Status: resp.StatusCode, Body: raw}

	var env envelope
	envErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		return result, errors.NewBackendError(operation, resp.StatusCode, env.Message, string(raw))
	}
	if envErr != nil {
		return result, errors.NewResponseShapeError(operation, resp.StatusCode, string(raw), fmt.Errorf("failed to decode response: %w", envErr))
	}
	if env.Success != nil && !*env.Success {
		return result, errors.NewBackendError(operation, resp.StatusCode, env.Message, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return result, errors.NewResponseShapeError(operation, resp.StatusCode, string(raw), fmt.Errorf("failed to decode response: %w", err))
		}
	}

	return result, nil
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}
