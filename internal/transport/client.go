// Package transport provides the authenticated HTTP client used by order sources.
package transport

import (
	"context"
	"net/http"

	"github.com/agentstation/ordersync/pkg/constants"
	"github.com/agentstation/ordersync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http      *http.Client
	auth      Authenticator
	token     string
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New returns a client that applies token through auth. A nil auth sends no credential.
func New(auth Authenticator, token string, opts ...Option) *Client {
	if auth == nil {
		auth = NoAuth{}
	}
	c := &Client{
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		auth:      auth,
		token:     token,
		userAgent: "ordersync",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req with the credential, Accept and User-Agent headers set.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		c.auth.Apply(req, c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return c.http.Do(req)
}

// Get fetches url.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	return c.Do(req)
}
