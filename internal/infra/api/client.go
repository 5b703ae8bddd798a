// Package api provides the client for the streaming service's REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("resource not found")
	ErrRequestFailed = errors.New("api request failed")
)

// Config represents API client configuration.
type Config struct {
	BaseURL string
	Token   string // Optional bearer token for a resumed session
	Timeout time.Duration
}

// Client is a client for the streaming service's REST API. All calls
// return either a success value or a failure with a short message;
// reconciliation with local state happens in the app layer.
type Client struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration

	mu         sync.RWMutex
	httpClient *http.Client
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    cfg.BaseURL,
		timeout:    timeout,
		maxRetries: 3,
		retryDelay: time.Second,
	}
	c.SetToken(cfg.Token)
	return c, nil
}

// SetToken swaps the bearer token used for subsequent requests.
// An empty token yields an unauthenticated transport.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token == "" {
		c.httpClient = &http.Client{Timeout: c.timeout}
		return
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = c.timeout
	c.httpClient = client
}

// statusError is an API failure decoded from the error envelope.
type statusError struct {
	Status  int
	Code    string
	Message string
}

func (e *statusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// errorEnvelope mirrors the server's error response body.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// doJSON performs a request with retries, decoding the JSON response
// into out when non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
	}

	requestID := uuid.New().String()

	return c.retry(func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return errors.Wrap(err, "failed to build request")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-Id", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.mu.RLock()
		client := c.httpClient
		c.mu.RUnlock()

		resp, err := client.Do(req)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "%s %s failed", method, path), ErrRequestFailed)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 400 {
			return c.decodeError(resp, method, path)
		}

		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Mark(errors.Wrapf(err, "failed to decode %s %s response", method, path), ErrRequestFailed)
		}
		return nil
	})
}

// decodeError converts a non-2xx response into a marked error.
func (c *Client) decodeError(resp *http.Response, method, path string) error {
	se := &statusError{Status: resp.StatusCode}
	var env errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
		se.Code = env.Error.Code
		se.Message = env.Error.Message
	}

	wrapped := errors.Wrapf(se, "%s %s", method, path)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Mark(wrapped, ErrUnauthorized)
	case http.StatusNotFound:
		return errors.Mark(wrapped, ErrNotFound)
	default:
		return errors.Mark(wrapped, ErrRequestFailed)
	}
}

// retry executes fn with retries on transient failures.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			zlog.Debug().Msgf("api: retrying request (attempt %d/%d): %v", attempt, c.maxRetries, lastErr)
			time.Sleep(c.retryDelay)
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// isRetryable returns true for rate limits and server-side failures.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.Status == http.StatusTooManyRequests || se.Status >= 500
	}
	return false
}
