package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	xhttp "NeoFin/pkg/http"
)

const defaultTimeout = 30 * time.Second

// HTTPServiceBase is the shared plumbing of the JSON-over-HTTP adapters.
// Calls are made once; retrying is left to the caller.
type HTTPServiceBase struct {
	name    string
	baseURL string
	client  *xhttp.Client
	headers map[string]string
}

// BaseOption tweaks an HTTPServiceBase.
type BaseOption func(*baseOptions)

type baseOptions struct {
	timeout   time.Duration
	userAgent string
	client    *xhttp.Client
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) BaseOption {
	return func(o *baseOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithUserAgent(ua string) BaseOption {
	return func(o *baseOptions) { o.userAgent = ua }
}

// WithHTTPClient injects a prebuilt client (tests).
func WithHTTPClient(c *xhttp.Client) BaseOption {
	return func(o *baseOptions) { o.client = c }
}

func NewHTTPServiceBase(name, baseURL string, headers map[string]string, opts ...BaseOption) *HTTPServiceBase {
	o := baseOptions{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	client := o.client
	if client == nil {
		copts := []xhttp.ClientOption{xhttp.WithTimeout(o.timeout)}
		if o.userAgent != "" {
			copts = append(copts, xhttp.WithUserAgent(o.userAgent))
		}
		client = xhttp.NewClient(copts...)
	}
	return &HTTPServiceBase{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		headers: headers,
	}
}

// GetJSON issues a GET to path under baseURL and decodes the JSON reply into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	return b.do(ctx, xhttp.MethodGet, path, query, nil, dest)
}

// PostJSON posts payload to path under baseURL and decodes the JSON reply into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	return b.do(ctx, xhttp.MethodPost, path, nil, payload, dest)
}

func (b *HTTPServiceBase) do(ctx context.Context, method, path string, query url.Values, payload, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("%s: http client not initialized", b.name)
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      method,
		URL:         b.baseURL + path,
		Headers:     b.headers,
		QueryParams: query,
		Body:        payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("%s %s: %w", b.name, path, err)
	}
	return nil
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
