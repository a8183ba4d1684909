// Package customerapi talks to the external REST collection that owns
// customer records.
package customerapi

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

	"github.com/contactdesk/backend/internal/domain/customer"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultUserAgent = "contactdesk-custmgr"
	defaultTimeout   = 10 * time.Second
	// maxResponseSize caps how much of a response body is decoded
	maxResponseSize = 4 * 1024 * 1024
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d", e.Method, e.URL, e.StatusCode)
}

// Client implements the collection operations over HTTP.
type Client struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the collection at endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.ParseRequestURI(strings.TrimSpace(endpoint))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q must be http or https", endpoint)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	c := &Client{
		endpoint: u,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the collection URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// List fetches the full collection.
func (c *Client) List(ctx context.Context) ([]customer.Customer, error) {
	var out []customer.Customer
	if err := c.do(ctx, http.MethodGet, c.endpoint, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []customer.Customer{}
	}
	return out, nil
}

// Create posts a new record; the server assigns the identifier.
func (c *Client) Create(ctx context.Context, in customer.Customer) (customer.Customer, error) {
	in.ID = ""
	var out customer.Customer
	if err := c.do(ctx, http.MethodPost, c.endpoint, in, &out); err != nil {
		return customer.Customer{}, err
	}
	return out, nil
}

// Update replaces the record at {endpoint}/{id}.
func (c *Client) Update(ctx context.Context, id customer.ID, in customer.Customer) (customer.Customer, error) {
	if id.IsZero() {
		return customer.Customer{}, fmt.Errorf("customer id required")
	}
	in.ID = id
	var out customer.Customer
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), in, &out); err != nil {
		return customer.Customer{}, err
	}
	if out.ID.IsZero() {
		out.ID = id
	}
	return out, nil
}

// Delete removes the record at {endpoint}/{id}.
func (c *Client) Delete(ctx context.Context, id customer.ID) error {
	if id.IsZero() {
		return fmt.Errorf("customer id required")
	}
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id customer.ID) *url.URL {
	u := *c.endpoint
	u.Path = c.endpoint.Path + "/" + url.PathEscape(id.String())
	u.RawPath = ""
	return &u
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, body, dest any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return &StatusError{Method: method, URL: u.String(), StatusCode: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
