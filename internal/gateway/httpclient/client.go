// Package httpclient implements the gateway contract against a remote
// eventhubd over HTTP, with chat subscriptions carried on a WebSocket.
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
	"strings"
	"sync"
	"time"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/logging"
)

var errMissingBaseURL = errors.New("httpclient: base url is required")

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithToken starts the client with a previously issued access token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// Client is a gateway.Gateway backed by the eventhubd HTTP API. The access
// token from the last successful SignUp or SignIn authenticates every
// subsequent call.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger

	mu    sync.RWMutex
	token string
}

var _ gateway.Gateway = (*Client)(nil)

// New constructs a Client for the gateway at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errMissingBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("httpclient: parse base url: %w", err)
	}

	c := &Client{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the current access token, empty when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the access token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, c.logger, "client", "HTTPGateway", operation, attrs...)
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

// do sends one request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), body)
	if err != nil {
		return fmt.Errorf("httpclient: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		err := decodeError(resp)
		c.log(ctx, "request", "method", method, "path", path).DebugContext(ctx, "gateway rejected request", "status", resp.StatusCode, "error", err)
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("httpclient: decode response: %w", err)
	}
	return nil
}

type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// decodeError maps an error response back to the gateway sentinel it was
// produced from.
func decodeError(resp *http.Response) error {
	var payload errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(data, &payload)

	sentinel := gateway.ErrorForCode(payload.ErrorCode)
	if sentinel == nil {
		sentinel = errorForStatus(resp.StatusCode)
	}
	if sentinel == nil {
		message := strings.TrimSpace(payload.Message)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("httpclient: unexpected status %d: %s", resp.StatusCode, message)
	}
	if payload.Message == "" || payload.Message == sentinel.Error() {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, payload.Message)
}

func errorForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return gateway.ErrUnauthorized
	case http.StatusForbidden:
		return gateway.ErrForbidden
	case http.StatusNotFound:
		return gateway.ErrNotFound
	case http.StatusConflict:
		return gateway.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return gateway.ErrInvalidRequest
	default:
		return nil
	}
}
