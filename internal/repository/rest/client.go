// Package rest implements the repository interfaces against the gym backend's
// JSON API.
package rest

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

	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/repository"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend expects amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 15 * time.Second

// Outcome labels reported to the Observer.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

// Observer receives one callback per backend call.
type Observer interface {
	ObserveBackendRequest(resource, outcome string, elapsed time.Duration)
}

type accessTokenKey struct{}

// WithAccessToken returns a context whose backend calls carry the given
// bearer token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func accessTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

// Client is a thin JSON client for the backend.
type Client struct {
	baseURL  string
	http     *http.Client
	log      *logger.Logger
	observer Observer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func NewClient(baseURL string, timeout time.Duration, log *logger.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends body (if any) as JSON and returns the raw response payload of a
// 2xx reply. Non-2xx replies become *repository.BackendError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	resource := resourceOf(path)
	start := time.Now()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := accessTokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(resource, OutcomeError, start)
		c.log.Warn(ctx, fmt.Sprintf("backend %s %s failed", method, path), err)
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, repository.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(resource, OutcomeError, start)
		return nil, fmt.Errorf("%s %s: reading body: %w: %v", method, path, repository.ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome := OutcomeRejected
		if resp.StatusCode >= 500 {
			outcome = OutcomeError
		}
		c.observe(resource, outcome, start)
		return nil, &repository.BackendError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    backendMessage(raw),
		}
	}

	c.observe(resource, OutcomeOK, start)
	return raw, nil
}

// get, post and patch decode a 2xx reply into out when out is non-nil.

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	raw, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.decodeInto(ctx, path, raw, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return c.decodeInto(ctx, path, raw, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	raw, err := c.do(ctx, http.MethodPatch, path, nil, body)
	if err != nil {
		return err
	}
	return c.decodeInto(ctx, path, raw, out)
}

func (c *Client) del(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func (c *Client) decodeInto(ctx context.Context, path string, raw []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := decode(raw, out); err != nil {
		c.observe(resourceOf(path), OutcomeMalformed, time.Now())
		c.log.Error(ctx, fmt.Sprintf("malformed backend response from %s", path), err)
		return err
	}
	return nil
}

func (c *Client) observe(resource, outcome string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendRequest(resource, outcome, time.Since(start))
}

// resourceOf keeps the first path segment so metric labels stay bounded.
func resourceOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "root"
	}
	return trimmed
}

func backendMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"message", "mensaje", "error"} {
			if msg, ok := body[key].(string); ok && msg != "" {
				return msg
			}
		}
		return ""
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func idPath(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}

// getList fetches an array and drops items that fail the schema, logging each
// one. Used for listings that carry no money.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	raw, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	items, dropped, err := decodeList[T](raw)
	if err != nil {
		c.observe(resourceOf(path), OutcomeMalformed, time.Now())
		c.log.Error(ctx, fmt.Sprintf("malformed backend response from %s", path), err)
		return nil, err
	}
	for _, q := range dropped {
		c.observe(resourceOf(path), OutcomeMalformed, time.Now())
		qctx := c.log.WithFields(ctx, map[string]any{"path": path, "index": q.Index})
		c.log.Warn(qctx, "quarantined backend item", q.Err)
	}
	return items, nil
}
