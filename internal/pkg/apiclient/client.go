// Package apiclient is the typed client for the remote attendance API. Every
// authenticated call takes the caller's session explicitly.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/validator"
	"golang.org/x/oauth2"
)

const maxBodyBytes = 4 << 20

// UnauthorizedHook runs when the upstream answers 401 to an authenticated call.
type UnauthorizedHook func(ctx context.Context, sess session.Session)

type Client struct {
	baseURL        string
	timeout        time.Duration
	transport      http.RoundTripper
	location       *time.Location
	onUnauthorized UnauthorizedHook
}

type Option func(*Client)

// WithTransport replaces the base round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithLocation sets the zone used for timestamps the upstream sends without an offset.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

func WithUnauthorizedHook(hook UnauthorizedHook) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   timeout,
		transport: http.DefaultTransport,
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUnauthorizedHook installs the 401 hook after construction, for wiring
// cycles where the hook's owner needs the client first.
func (c *Client) SetUnauthorizedHook(hook UnauthorizedHook) {
	c.onUnauthorized = hook
}

func (c *Client) publicClient() *http.Client {
	return &http.Client{Timeout: c.timeout, Transport: c.transport}
}

func (c *Client) sessionClient(sess session.Session) *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: sess.AccessToken,
				TokenType:   "Bearer",
			}),
			Base: c.transport,
		},
	}
}

// do performs one upstream call. sess nil means a public endpoint with no
// Authorization header.
func (c *Client) do(ctx context.Context, sess *session.Session, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.publicClient()
	if sess != nil {
		hc = c.sessionClient(*sess)
	}

	resp, err := hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		slog.Warn("upstream request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrTransport, path, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnexpectedResponse, path, err)
		}
		return nil
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if sess != nil && c.onUnauthorized != nil {
			c.onUnauthorized(ctx, *sess)
		}
		return ErrUnauthorized
	}

	return decodeError(resp.StatusCode, raw)
}

// decodeError turns an error body into an *APIError, or into field validation
// errors when a 400 carries only per-field messages.
func decodeError(status int, raw []byte) error {
	fallback := &APIError{Status: status, Message: http.StatusText(status)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fallback
	}

	for _, key := range []string{"error", "detail", "message"} {
		if v, ok := fields[key]; ok {
			if msg := firstMessage(v); msg != "" {
				return &APIError{Status: status, Message: msg}
			}
		}
	}

	if status == http.StatusBadRequest {
		messages := make(map[string][]string, len(fields))
		for field, v := range fields {
			if msg := firstMessage(v); msg != "" {
				messages[field] = []string{msg}
			}
		}
		if len(messages) > 0 {
			return validator.FromFieldMessages(messages)
		}
	}

	return fallback
}

// firstMessage reads either a string or the first string of an array.
func firstMessage(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(v, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
