package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/logger"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// TokenSource supplies the bearer token for protected calls.
// ok is false when there is no valid session.
type TokenSource interface {
	Token() (token string, ok bool)
}

// Client talks to the remote habit API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit paces outgoing requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: constants.DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(constants.DefaultRateLimit), constants.DefaultRateBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokenSource returns a copy of the client that authenticates protected
// calls with tokens from ts.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// messageBody is the error envelope returned by the API.
type messageBody struct {
	Message string `json:"message"`
}

// call describes one API request.
type call struct {
	op        string
	method    string
	path      string
	body      interface{}
	protected bool
	// credentials marks login/register, where any 4xx means the credentials were rejected.
	credentials bool
}

func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	var token string
	if cl.protected {
		var ok bool
		if c.tokens != nil {
			token, ok = c.tokens.Token()
		}
		if !ok {
			return &Error{Op: cl.op, Kind: apperrors.ErrAuth, Message: "not logged in"}
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Op: cl.op, Kind: apperrors.ErrNetwork, Err: err}
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return &Error{Op: cl.op, Kind: apperrors.ErrNetwork, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return &Error{Op: cl.op, Kind: apperrors.ErrNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	requestID := uuid.NewString()
	log := logger.With("op", cl.op, "request_id", requestID)
	req.Header.Set(constants.RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("API request failed", "error", err)
		return &Error{Op: cl.op, Kind: apperrors.ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Op: cl.op, Status: resp.StatusCode, Kind: apperrors.ErrNetwork, Err: fmt.Errorf("read response: %w", err)}
	}

	log.Debug("API request",
		"method", cl.method,
		"path", cl.path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{
			Op:      cl.op,
			Status:  resp.StatusCode,
			Kind:    classify(resp.StatusCode, cl.credentials),
			Message: serverMessage(raw, resp.StatusCode),
		}
		log.Error("API request rejected", "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: cl.op, Status: resp.StatusCode, Kind: apperrors.ErrNetwork, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// serverMessage extracts the API's "message" field, falling back to the status text.
func serverMessage(raw []byte, status int) string {
	var m messageBody
	if err := json.Unmarshal(raw, &m); err == nil && m.Message != "" {
		return m.Message
	}
	return http.StatusText(status)
}
