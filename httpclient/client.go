package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/resilience"
)

// Client talks to a model sidecar over HTTP. Failures are returned as
// AppErrors so provider middleware can decide whether to retry.
type Client struct {
	http   *http.Client
	config Config
}

// New creates a client for the sidecar at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		http: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.config.BaseURL }

// PostForm uploads form to path and decodes the JSON answer into out.
// A nil out discards the body.
func (c *Client) PostForm(ctx context.Context, path string, form *Form, out any) error {
	return c.call(ctx, http.MethodPost, path, form, out)
}

// GetJSON fetches path and decodes the JSON answer into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, nil, out)
}

// Probe issues a single GET to path and fails unless the sidecar answers
// 2xx. It never retries.
func (c *Client) Probe(ctx context.Context, path string) error {
	_, err := c.send(ctx, http.MethodGet, path, nil)
	return err
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) call(ctx context.Context, method, path string, form *Form, out any) error {
	attempt := func() ([]byte, error) { return c.send(ctx, method, path, form) }

	var (
		body []byte
		err  error
	)
	if c.config.Retry != nil {
		body, err = resilience.Retry(ctx, *c.config.Retry, attempt)
	} else {
		body, err = attempt()
	}
	if err != nil || out == nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.ExternalServiceError(c.config.Service, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// send performs one attempt and returns the body of a 2xx answer.
func (c *Client) send(ctx context.Context, method, path string, form *Form) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, form)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(ctx, c.config.Service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ConnectionFailed(c.config.Service).WithCause(fmt.Errorf("read response body: %w", err))
	}
	if appErr := ClassifyStatusCode(c.config.Service, resp.StatusCode, body); appErr != nil {
		return nil, appErr
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, form *Form) (*http.Request, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.config.BaseURL + "/" + strings.TrimLeft(path, "/")
	}

	var (
		body        io.Reader
		contentType string
	)
	if form != nil {
		var err error
		if body, contentType, err = form.encode(); err != nil {
			return nil, errors.Internal(fmt.Errorf("encode form: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("create request: %w", err))
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
