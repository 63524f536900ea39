// Package client wraps the bookstore REST backend. Each wrapper performs one HTTP
// call and returns a Result; transport failures, non-2xx statuses and malformed
// bodies all become Result errors.
package client

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

	"github.com/Daveman-1/BookstoreFrontEnd/internal/metrics"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every backend call
const DefaultTimeout = 10 * time.Second

// TokenSource is the tab session as the client sees it
type TokenSource interface {
	Token(ctx context.Context) string
	SetToken(ctx context.Context, token string) error
	DropToken(ctx context.Context) error
}

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    *metrics.Metrics

	// Demo signs in the built-in accounts. DemoMode uses it for every login,
	// DemoFallback only when the backend cannot be reached.
	Demo         *DemoAuthenticator
	DemoMode     bool
	DemoFallback bool
}

// Client holds the shared transport. It carries no per-tab state; Bind attaches a
// tab's token source.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
	metrics    *metrics.Metrics
	demo       *demoSettings
}

// NewClient validates the base URL and builds the transport
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		log:        log,
		metrics:    opts.Metrics,
	}
	if opts.Demo != nil && (opts.DemoMode || opts.DemoFallback) {
		c.demo = &demoSettings{auth: opts.Demo, always: opts.DemoMode, fallback: opts.DemoFallback}
	}
	return c, nil
}

// Demo returns the demo authenticator, or nil when demo sign-in is off
func (c *Client) Demo() *DemoAuthenticator {
	if c.demo == nil {
		return nil
	}
	return c.demo.auth
}

// DemoMode reports whether every login goes to the demo authenticator
func (c *Client) DemoMode() bool {
	return c.demo != nil && c.demo.always
}

// BaseURL returns the configured backend root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one backend call
type request struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any
	fallback string
}

// reply is the raw outcome of a call. status is 0 when the backend was never reached.
type reply struct {
	status int
	body   []byte
}

func (r reply) ok() bool {
	return r.status >= 200 && r.status < 300
}

// conn is a Client bound to one tab's token source
type conn struct {
	c      *Client
	tokens TokenSource
}

func (cn conn) do(ctx context.Context, req request) reply {
	start := time.Now()
	rep, err := cn.send(ctx, req)
	cn.c.metrics.ObserveBackendCall(req.op, err == nil && rep.ok(), time.Since(start))

	if err != nil {
		cn.c.log.Warn("backend call failed",
			zap.String("operation", req.op),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return reply{}
	}

	if rep.status == http.StatusUnauthorized && cn.tokens != nil {
		if err := cn.tokens.DropToken(ctx); err != nil {
			cn.c.log.Warn("drop token after 401", zap.Error(err))
		}
	}
	return rep
}

func (cn conn) send(ctx context.Context, req request) (reply, error) {
	u := cn.c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return reply{}, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, bodyReader)
	if err != nil {
		return reply{}, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if cn.tokens != nil {
		if token := cn.tokens.Token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := cn.c.httpClient.Do(httpReq)
	if err != nil {
		return reply{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply{}, fmt.Errorf("reading response body: %w", err)
	}
	return reply{status: resp.StatusCode, body: body}, nil
}

// errorMessage prefers the backend's own "message" field
func errorMessage(rep reply, fallback string) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if len(rep.body) > 0 && json.Unmarshal(rep.body, &envelope) == nil && envelope.Message != "" {
		return envelope.Message
	}
	return fallback
}

// call runs req and decodes the field at path (or the whole body when path is
// empty) into T.
func call[T any](ctx context.Context, cn conn, req request, path ...string) Result[T] {
	rep := cn.do(ctx, req)
	if !rep.ok() {
		return Err[T](errorMessage(rep, req.fallback))
	}

	res := Result[T]{Success: true}
	if len(rep.body) == 0 {
		return res
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(rep.body, &top); err == nil {
		if raw, ok := top["message"]; ok {
			_ = json.Unmarshal(raw, &res.Message)
		}
	}

	raw, err := extract(rep.body, path)
	if err != nil {
		cn.c.log.Warn("unexpected backend payload", zap.String("operation", req.op), zap.Error(err))
		return Err[T](req.fallback)
	}
	if raw == nil {
		return res
	}
	if err := json.Unmarshal(raw, &res.Data); err != nil {
		cn.c.log.Warn("decode backend payload", zap.String("operation", req.op), zap.Error(err))
		return Err[T](req.fallback)
	}
	return res
}

// extract walks nested object keys. A missing key yields nil, a non-object on the
// way is an error.
func extract(body []byte, path []string) (json.RawMessage, error) {
	raw := json.RawMessage(body)
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		next, ok := obj[key]
		if !ok || string(next) == "null" {
			return nil, nil
		}
		raw = next
	}
	return raw, nil
}

// Backend exposes the wrappers for one tab
type Backend struct {
	Auth       AuthAPI
	Items      ItemsAPI
	Categories CategoriesAPI
	Sales      SalesAPI
	Approvals  ApprovalsAPI
	Users      UsersAPI
	Store      StoreAPI
	Analytics  AnalyticsAPI
}

// Bind attaches a tab's token source to the shared transport
func (c *Client) Bind(tokens TokenSource) *Backend {
	cn := conn{c: c, tokens: tokens}
	return &Backend{
		Auth:       AuthAPI{conn: cn, demo: c.demo},
		Items:      ItemsAPI{conn: cn},
		Categories: CategoriesAPI{conn: cn},
		Sales:      SalesAPI{conn: cn},
		Approvals:  ApprovalsAPI{conn: cn},
		Users:      UsersAPI{conn: cn},
		Store:      StoreAPI{conn: cn},
		Analytics:  AnalyticsAPI{conn: cn},
	}
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
