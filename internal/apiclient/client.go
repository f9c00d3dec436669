// Package apiclient is the authenticated JSON transport for the ledger service.
//
// Every response is an envelope {status, data, error{code, message, details}}.
// Calls marked Auth carry a bearer token; a missing or expired access token,
// or a 401, triggers one shared token refresh and a single replay.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/http2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/mmynk/splitsync/internal/auth"
	"github.com/mmynk/splitsync/internal/middleware"
	"github.com/mmynk/splitsync/internal/session"
)

const (
	refreshPath = "/auth/refresh"
	refreshKey  = "refresh"

	// expiryLeeway refreshes slightly before exp so the token does not lapse in flight.
	expiryLeeway = 5 * time.Second

	maxBodySize = 8 << 20
)

// Config holds transport settings.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	HTTP2             bool
	RequestsPerSecond float64
	Burst             int
	Logger            *slog.Logger
	// Registerer receives the client's metrics. Nil disables registration.
	Registerer prometheus.Registerer
	// Transport overrides the base round tripper.
	Transport http.RoundTripper
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Auth attaches the access token and enables refresh on 401.
	Auth bool
	// NoRetry disables the refresh-and-replay on 401.
	NoRetry bool
}

// Client sends requests to the ledger service.
type Client struct {
	baseURL string
	http    *http.Client
	store   session.Store
	logger  *slog.Logger
	metrics *metrics
	refresh singleflight.Group
	now     func() time.Time
}

// New creates a Client that reads and writes tokens through store.
func New(cfg Config, store session.Store) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := cfg.Transport
	if transport == nil {
		t := newTransport()
		if cfg.HTTP2 {
			if _, err := http2.ConfigureTransports(t); err != nil {
				return nil, fmt.Errorf("failed to enable HTTP/2: %w", err)
			}
		}
		transport = t
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}

	return &Client{
		baseURL: base.String(),
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: middleware.Chain(transport,
				middleware.RateLimit(limiter),
				middleware.Logging(logger),
				middleware.Bearer(),
			),
		},
		store:   store,
		logger:  logger,
		metrics: newMetrics(cfg.Registerer),
		now:     time.Now,
	}, nil
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Store returns the session store backing the client.
func (c *Client) Store() session.Store {
	return c.store
}

// Do performs req and returns the envelope's data. A 204 yields nil data.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	var access string
	if req.Auth {
		token, err := c.validAccessToken(ctx)
		if err != nil {
			return nil, err
		}
		access = token
	}

	resp, err := c.send(ctx, req, access)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && req.Auth {
		if req.NoRetry {
			return nil, sessionExpired(nil)
		}
		// Free the connection before the replay.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

		if err := c.refreshAfter(ctx, access); err != nil {
			return nil, sessionExpired(err)
		}
		c.logger.Debug("Replaying request after token refresh", "method", req.Method, "path", req.Path)
		req.NoRetry = true
		return c.Do(ctx, req)
	}

	return decode(resp)
}

// Call performs req and decodes the envelope's data into T.
// Empty or null data yields the zero value.
func Call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	data, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &Error{
			Kind:    KindProtocol,
			Message: defaultMessage,
			Err:     fmt.Errorf("failed to decode %s %s: %w", req.Method, req.Path, err),
		}
	}
	return out, nil
}

func (c *Client) validAccessToken(ctx context.Context) (string, error) {
	tokens, err := c.store.Tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if tokens.Access != "" && !auth.Expired(tokens.Access, c.now(), expiryLeeway) {
		return tokens.Access, nil
	}

	if err := c.Refresh(ctx); err != nil {
		return "", sessionExpired(err)
	}
	tokens, err = c.store.Tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if tokens.Access == "" {
		return "", sessionExpired(nil)
	}
	return tokens.Access, nil
}

// refreshAfter refreshes unless another caller already replaced the token
// that was rejected.
func (c *Client) refreshAfter(ctx context.Context, rejected string) error {
	tokens, err := c.store.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if tokens.Access != "" && tokens.Access != rejected {
		return nil
	}
	return c.Refresh(ctx)
}

// Refresh exchanges the stored refresh token for a new access token.
// Concurrent callers share one request. A caller whose ctx ends stops
// waiting, but the refresh itself runs to completion.
func (c *Client) Refresh(ctx context.Context) error {
	ch := c.refresh.DoChan(refreshKey, func() (any, error) {
		return nil, c.doRefresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (c *Client) doRefresh(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			c.metrics.refreshes.WithLabelValues("failure").Inc()
			c.logger.Warn("Token refresh failed", "error", err)
			if clearErr := c.store.Clear(ctx); clearErr != nil {
				c.logger.Error("Failed to clear session", "error", clearErr)
			}
			return
		}
		c.metrics.refreshes.WithLabelValues("success").Inc()
	}()

	tokens, err := c.store.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if tokens.Refresh == "" {
		return fmt.Errorf("no refresh token")
	}

	resp, err := c.send(ctx, Request{
		Method:  http.MethodPost,
		Path:    refreshPath,
		Body:    map[string]string{"refresh_token": tokens.Refresh},
		NoRetry: true,
	}, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := decode(resp)
	if err != nil {
		return err
	}
	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(data, &result); err != nil || result.AccessToken == "" {
		return fmt.Errorf("refresh response has no access token")
	}

	if result.RefreshToken != "" {
		return c.store.SetTokens(ctx, session.Tokens{Access: result.AccessToken, Refresh: result.RefreshToken})
	}
	return c.store.SetAccessToken(ctx, result.AccessToken)
}

func (c *Client) send(ctx context.Context, req Request, access string) (*http.Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	if access != "" {
		ctx = middleware.WithAccessToken(ctx, access)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.requests.WithLabelValues(req.Method, statusClass(0)).Inc()
		return nil, networkError(err)
	}
	c.metrics.requests.WithLabelValues(req.Method, statusClass(resp.StatusCode)).Inc()
	return resp, nil
}

type envelope struct {
	Status bool            `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *envelopeError  `json:"error"`
}

type envelopeError struct {
	Code    string          `json:"code"`
	Message json.RawMessage `json:"message"`
	Details json.RawMessage `json:"details"`
}

// text flattens the message, which is either a string or a list of strings.
func (e *envelopeError) text() string {
	if e == nil || len(e.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Message, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(e.Message, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return ""
}

func decode(resp *http.Response) (json.RawMessage, error) {
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, networkError(fmt.Errorf("failed to read response: %w", err))
	}

	env, ok := parseEnvelope(resp.Header.Get("Content-Type"), raw)
	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	if ok && success && env.Status {
		return env.Data, nil
	}

	if !ok || env.Error == nil || env.Error.Code == "" {
		perr := &Error{
			Kind:       KindProtocol,
			StatusCode: resp.StatusCode,
			Message:    defaultMessage,
			RawMessage: defaultMessage,
		}
		if !ok {
			perr.Err = ErrMalformedEnvelope
		} else if text := env.Error.text(); text != "" {
			perr.Message, perr.RawMessage = text, text
		}
		return nil, perr
	}

	rawMessage := env.Error.text()
	if rawMessage == "" {
		rawMessage = defaultMessage
	}
	return nil, &Error{
		Kind:       KindDomain,
		StatusCode: resp.StatusCode,
		Code:       env.Error.Code,
		Message:    Message(env.Error.Code, rawMessage),
		RawMessage: rawMessage,
		Details:    env.Error.Details,
	}
}

func parseEnvelope(contentType string, raw []byte) (envelope, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return envelope{}, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, false
	}
	return env, true
}
