// Package api implements the HTTP client for the chat endpoint.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"go.uber.org/zap"

	apierrors "github.com/evolvenxt/tarschat/internal/errors"
	"github.com/evolvenxt/tarschat/internal/models"
)

// DefaultTimeoutSeconds bounds a single chat request
const DefaultTimeoutSeconds = 300

// HTTPDoer is the part of tls_client.HttpClient used by Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sender sends one chat request and returns the parsed reply
type Sender interface {
	Send(ctx context.Context, req models.ChatRequest) (models.Reply, error)
}

// Client talks to the chat endpoint
type Client struct {
	endpoint   string
	httpClient HTTPDoer
	timeout    int
	logger     *zap.Logger
}

// Ensure Client implements Sender
var _ Sender = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying transport
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTimeoutSeconds sets the transport timeout used when the client builds
// its own transport. Zero or negative keeps the default.
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *Client) {
		if seconds > 0 {
			c.timeout = seconds
		}
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	endpoint, err := ChatEndpoint(baseURL)
	if err != nil {
		return nil, err
	}

	client := &Client{
		endpoint: endpoint,
		timeout:  DefaultTimeoutSeconds,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeout),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the full chat URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ChatEndpoint validates baseURL and appends the chat path
func ChatEndpoint(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", apierrors.ErrNoBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid api base url %q: missing host", baseURL)
	}

	return strings.TrimRight(baseURL, "/") + models.ChatPath, nil
}
