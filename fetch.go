package authkit

import (
	"context"
	"io"
	"net/http"

	"github.com/restodash/authkit/internal/metrics"
)

// Client wraps an http.Client with session-aware request handling:
// expired sessions are blocked before the request leaves the process,
// the bearer token is attached automatically, and a 401 response
// terminates the session.
type Client struct {
	manager *Manager
	http    *http.Client
}

// NewClient wraps httpClient; nil means http.DefaultClient.
func NewClient(m *Manager, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{manager: m, http: httpClient}
}

// Do sends the request with the current bearer token attached. When
// the session is known-expired the request is never sent: the guard
// forces the logout and Do returns [ErrTokenExpired]. A 401 response
// terminates the session and returns [ErrUnauthorized] with the body
// closed. Every other response, success or failure, passes through
// untouched; the caller owns the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if c.manager.guard.CheckAndEnforce(ctx) {
		c.manager.metrics.Inc(metrics.MetricFetchBlockedExpired)
		return nil, ErrTokenExpired
	}

	if req.Header.Get("Authorization") == "" {
		if token := c.manager.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport and context errors pass through unchanged; they say
		// nothing about the session's validity.
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.manager.metrics.Inc(metrics.MetricFetchUnauthorized)
		c.manager.guard.EnforceUnauthorized(ctx)
		return nil, ErrUnauthorized
	}

	return resp, nil
}

// Request builds and sends a request through [Client.Do].
func (c *Client) Request(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Get is shorthand for a GET [Client.Request].
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, url, nil)
}
