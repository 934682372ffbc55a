// Package storeapi is the storefront's HTTP client: one configured Client plus
// a handful of functions per backend resource.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout  = 15 * time.Second
	maxErrorBody    = 64 << 10
	maxResponseBody = 8 << 20
)

// Credentials supplies the bearer token and is cleared when the backend
// rejects it.
type Credentials interface {
	Token() string
	Clear() error
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API origin, e.g. https://api.example.com.
	BaseURL string
	// HTTPClient defaults to a client with Timeout.
	HTTPClient  *http.Client
	Timeout     time.Duration
	Credentials Credentials
	Logger      *zap.Logger
}

// Client talks to the storefront API.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	creds      Credentials
	logger     *zap.Logger
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, fmt.Errorf("storeapi: BaseURL is required")
	}
	base, err := url.Parse(raw)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("storeapi: BaseURL must be a valid URL")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("storeapi: BaseURL scheme must be http or https")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:       base,
		httpClient: httpClient,
		creds:      cfg.Credentials,
		logger:     logger,
	}, nil
}

func (c *Client) token() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.Token()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
// A 401 clears the stored credentials.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var bodyReader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("storeapi: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), bodyReader)
	if err != nil {
		return fmt.Errorf("storeapi: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("storeapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.clearCredentials()
	}
	if resp.StatusCode >= 400 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return fmt.Errorf("storeapi: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) clearCredentials() {
	if c.creds == nil {
		return
	}
	if err := c.creds.Clear(); err != nil {
		c.logger.Warn("clear credentials after 401", zap.Error(err))
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
