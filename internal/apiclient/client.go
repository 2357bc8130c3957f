package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/ecowork/domain"
)

const (
	DefaultTimeout       = 10 * time.Second
	DefaultHealthTimeout = 5 * time.Second
)

// Source tells where the body of a Result came from.
type Source string

const (
	SourceBackend  Source = "backend"
	SourceFallback Source = "fallback"
	SourceEmpty    Source = "empty"
)

// Result is the outcome of Do.
type Result struct {
	Body   []byte
	Source Source
	Status int
}

// Degraded reports whether the body did not come from the backend.
func (r Result) Degraded() bool {
	return r.Source != SourceBackend
}

// Fallback answers requests the backend could not serve. ok is false for
// unknown paths.
type Fallback interface {
	Resolve(method, path string, body []byte) (value any, ok bool, err error)
}

// TokenSource yields the bearer token attached to requests; empty means none.
type TokenSource func() string

// Client is the backend REST client.
type Client struct {
	baseURL       string
	http          *fasthttp.Client
	timeout       time.Duration
	healthTimeout time.Duration
	fallback      Fallback
	token         TokenSource
	validate      *validator.Validate
	logger        *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithFallback(fb Fallback) Option {
	return func(c *Client) { c.fallback = fb }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.healthTimeout = d
		}
	}
}

// New builds a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		timeout:       DefaultTimeout,
		healthTimeout: DefaultHealthTimeout,
		validate:      validator.New(),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &fasthttp.Client{
			Name:                "ecowork-client",
			ReadTimeout:         c.timeout,
			WriteTimeout:        c.timeout,
			MaxIdleConnDuration: 30 * time.Second,
		}
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request and substitutes fallback data when the backend cannot
// serve it: network failure, 404, 408, 429, 5xx, or 401/403 outside
// /api/auth. A 401/403 on /api/auth is InvalidCredentials and any other 4xx
// is Invalid. A non-JSON body yields an empty result. body is JSON-encoded
// when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body any) (Result, error) {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return Result{}, domain.WrapError(domain.ErrCodeInvalid, "encode request", err)
		}
		payload = raw
	}

	if err := ctx.Err(); err != nil {
		return c.substitute(method, path, payload, domain.WrapError(domain.ErrCodeNetworkUnavailable, "request cancelled", err))
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+tok)
		}
	}

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return c.substitute(method, path, payload, domain.WrapError(domain.ErrCodeNetworkUnavailable, domain.ErrNetworkUnavailable.Message, err))
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusNotFound:
		return c.substitute(method, path, payload, domain.ErrNotFound)
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		if isAuthPath(path) {
			return Result{Status: status, Source: SourceBackend}, domain.ErrInvalidCredentials
		}
		return c.substitute(method, path, payload, domain.NewError(domain.ErrCodeNetworkUnavailable,
			fmt.Sprintf("backend refused %s with status %d", path, status)))
	case status >= 500 || status == fasthttp.StatusRequestTimeout || status == fasthttp.StatusTooManyRequests:
		return c.substitute(method, path, payload, domain.NewError(domain.ErrCodeNetworkUnavailable,
			fmt.Sprintf("backend returned status %d", status)))
	case status < 200 || status >= 300:
		return Result{Status: status, Source: SourceBackend},
			domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("backend returned status %d", status))
	}

	respBody := append([]byte(nil), resp.Body()...)
	if len(respBody) == 0 || !json.Valid(respBody) {
		c.logger.Warn("backend returned non-JSON body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
		return Result{Status: status, Source: SourceEmpty}, nil
	}
	return Result{Body: respBody, Source: SourceBackend, Status: status}, nil
}

func isAuthPath(path string) bool {
	return path == pathAuth || strings.HasPrefix(path, pathAuth+"/")
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

// substitute answers from the fallback dataset. Errors produced by the
// fallback itself (bad credentials, unknown invite) are returned.
func (c *Client) substitute(method, path string, payload []byte, cause error) (Result, error) {
	c.logger.Warn("serving fallback data",
		zap.String("method", method),
		zap.String("path", path),
		zap.Error(cause),
	)
	if c.fallback == nil {
		return Result{Source: SourceEmpty}, nil
	}
	value, ok, err := c.fallback.Resolve(method, path, payload)
	if err != nil {
		return Result{Source: SourceFallback}, err
	}
	if !ok {
		return Result{Source: SourceEmpty}, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return Result{Source: SourceEmpty}, domain.WrapError(domain.ErrCodeInternal, "encode fallback value", err)
	}
	return Result{Body: raw, Source: SourceFallback, Status: fasthttp.StatusOK}, nil
}

// Combine reports the least trustworthy of several sources.
func Combine(sources ...Source) Source {
	out := SourceBackend
	for _, s := range sources {
		switch s {
		case SourceFallback:
			out = SourceFallback
		case SourceEmpty:
			if out == SourceBackend {
				out = SourceEmpty
			}
		}
	}
	return out
}
