// Package bluemedix is a typed client for the BlueMedix REST backend.
package bluemedix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"bluemedix-workflow/internal/common/errors"
	httpclient "bluemedix-workflow/internal/common/http"
	"bluemedix-workflow/internal/common/logger"
	"bluemedix-workflow/internal/common/validation"
	"bluemedix-workflow/internal/models"
)

// Client wraps the envelope HTTP client with one method per endpoint. Each
// response is checked against its expected shape before it is decoded.
type Client struct {
	http   *httpclient.Client
	logger logger.Logger
}

func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		http:   httpclient.NewClient(baseURL, timeout, log),
		logger: log,
	}
}

// NewWithHTTP builds a client on an existing transport client.
func NewWithHTTP(h *httpclient.Client, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{http: h, logger: log}
}

func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

func (c *Client) Token() string {
	return c.http.Token()
}

// Login exchanges credentials for a bearer token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	var out models.Session
	if err := c.call(ctx, "POST", "/api/auth/login", models.Credentials{Email: email, Password: password}, validation.LoginResponse, &out); err != nil {
		return nil, err
	}
	c.http.SetToken(out.Token)
	c.logger.Info("Logged in", map[string]interface{}{
		"userId": out.User.ID,
		"role":   out.User.Role,
	})
	return &out, nil
}

// call performs the request, validates the raw body against schema and
// decodes it into out.
func (c *Client) call(ctx context.Context, method, path string, body interface{}, schema validation.Schema, out interface{}) error {
	resp, err := c.http.Do(ctx, method, path, body, nil)
	if err != nil {
		return err
	}

	operation := method + " " + path
	if schema != nil {
		if err := validation.Check(schema, resp.Body); err != nil {
			return errors.NewResponseShapeError(operation, resp.Status, string(resp.Body), err)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return errors.NewResponseShapeError(operation, resp.Status, string(resp.Body), err)
	}
	return nil
}

func entityPath(format, id string) string {
	return fmt.Sprintf(format, url.PathEscape(id))
}
