package smartthings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the SmartThings REST API root.
	DefaultBaseURL = "https://api.smartthings.com/v1"

	// DefaultTokenURL is the SmartThings OAuth token endpoint.
	DefaultTokenURL = "https://auth-global.api.smartthings.com/oauth/token"

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is how many times a 429 or timeout is retried.
	DefaultMaxRetries = 3

	// DefaultBackoffBase is the base of the exponential backoff schedule:
	// attempt n waits base * 2^n.
	DefaultBackoffBase = time.Second

	// DefaultMinCommandInterval is the minimum gap between two commands
	// sent to the same client.
	DefaultMinCommandInterval = 300 * time.Millisecond
)

// Config contains SmartThings client configuration.
type Config struct {
	BaseURL            string
	TokenURL           string
	Timeout            time.Duration
	MaxRetries         int
	BackoffBase        time.Duration
	MinCommandInterval time.Duration

	// OnTokenUpdate is invoked with the full session state every time the
	// token is refreshed or exchanged, so the owner can persist it.
	OnTokenUpdate func(Session)
}

// Client is an authenticated SmartThings API client for Samsung TVs.
// It owns the token lifecycle, retry/backoff behavior, command throttling
// and the in-memory device cache.
type Client struct {
	baseURL            string
	tokenURL           string
	timeout            time.Duration
	maxRetries         int
	backoffBase        time.Duration
	minCommandInterval time.Duration

	logger        *slog.Logger
	onTokenUpdate func(Session)

	mu          sync.Mutex // guards session, tokenGen, refreshDead, httpClient, closed
	session     Session
	tokenGen    uint64
	refreshDead bool
	httpClient  *http.Client
	closed      bool

	refreshMu sync.Mutex // serializes token refresh network calls

	cacheMu     sync.RWMutex
	deviceCache map[string]Device

	throttleMu  sync.Mutex // serializes command sends
	lastCommand time.Time
}

// NewClient creates a new SmartThings client with the given session.
// The HTTP connection pool is created lazily on first use.
func NewClient(config Config, session Session, logger *slog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.TokenURL == "" {
		config.TokenURL = DefaultTokenURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.BackoffBase <= 0 {
		config.BackoffBase = DefaultBackoffBase
	}
	if config.MinCommandInterval <= 0 {
		config.MinCommandInterval = DefaultMinCommandInterval
	}

	return &Client{
		baseURL:            config.BaseURL,
		tokenURL:           config.TokenURL,
		timeout:            config.Timeout,
		maxRetries:         config.MaxRetries,
		backoffBase:        config.BackoffBase,
		minCommandInterval: config.MinCommandInterval,
		logger:             logger.With("component", "smartthings"),
		onTokenUpdate:      config.OnTokenUpdate,
		session:            session,
		deviceCache:        make(map[string]Device),
	}
}

// Name returns the backend name.
func (c *Client) Name() string {
	return "smartthings"
}

// Close releases the HTTP connection pool. It is safe to call when the
// pool was never created and safe to call more than once. After Close
// every operation fails with ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
	return nil
}

// getHTTPClient lazily creates the shared HTTP client.
func (c *Client) getHTTPClient() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}
	return c.httpClient, nil
}

// httpResult carries one fully-read HTTP response.
type httpResult struct {
	status int
	body   []byte
}

// request performs one authenticated API call with bounded retries.
//
// 429 and per-attempt timeouts are retried with exponential backoff up to
// maxRetries. A 401 triggers at most one token refresh and retry. 403 and
// other non-2xx statuses fail immediately. The retry loop is explicit; the
// max-retry contract is a loop invariant, never recursion depth.
func (c *Client) request(ctx context.Context, method, path string, body any) ([]byte, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}
	if c.session.AccessToken == "" && !c.session.Refreshable() {
		c.mu.Unlock()
		return nil, ErrNoToken
	}
	c.mu.Unlock()

	if err := c.ensureValid(ctx); err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	retries := 0
	refreshed := false
	for {
		token, gen := c.currentToken()
		if token == "" {
			return nil, ErrNoToken
		}

		result, err := c.do(ctx, method, path, payload, token)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !isTimeout(err) {
				return nil, fmt.Errorf("request failed: %w", err)
			}
			if retries >= c.maxRetries {
				return nil, fmt.Errorf("%w after %d attempts", ErrRequestTimeout, retries+1)
			}
			c.logger.Warn("Request timed out, retrying",
				"path", path,
				"attempt", retries,
			)
			if err := c.backoff(ctx, retries); err != nil {
				return nil, err
			}
			retries++
			continue
		}

		switch {
		case result.status == http.StatusOK || result.status == http.StatusCreated:
			return result.body, nil

		case result.status == http.StatusUnauthorized:
			if refreshed {
				return nil, fmt.Errorf("%w: token rejected after refresh: %s", ErrAuthentication, truncateBody(result.body))
			}
			refreshed = true
			retry, err := c.onUnauthorized(ctx, gen)
			if err != nil {
				return nil, err
			}
			if !retry {
				return nil, fmt.Errorf("%w: %s", ErrAuthentication, truncateBody(result.body))
			}
			continue

		case result.status == http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s", ErrForbidden, truncateBody(result.body))

		case result.status == http.StatusTooManyRequests:
			if retries >= c.maxRetries {
				return nil, fmt.Errorf("%w after %d attempts", ErrRateLimited, retries+1)
			}
			c.logger.Warn("Rate limited, backing off",
				"path", path,
				"attempt", retries,
			)
			if err := c.backoff(ctx, retries); err != nil {
				return nil, err
			}
			retries++
			continue

		default:
			return nil, &APIError{Status: result.status, Body: truncateBody(result.body)}
		}
	}
}

// do performs a single HTTP attempt and reads the full response body.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, token string) (*httpResult, error) {
	httpClient, err := c.getHTTPClient()
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &httpResult{status: resp.StatusCode, body: body}, nil
}

// backoff waits base * 2^attempt, honoring context cancellation.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.backoffBase << uint(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Validate checks that the configured token can reach the devices listing.
// Transient network problems (DNS failures, timeouts) are treated as
// "assume valid" so a flaky network never blocks startup; a confirmed
// 401/403 from the provider returns false.
func (c *Client) Validate(ctx context.Context) bool {
	token, _ := c.currentToken()
	if token == "" {
		c.logger.Error("Token validation failed: no token configured")
		return false
	}

	result, err := c.do(ctx, http.MethodGet, "/devices", nil, token)
	if err != nil {
		if isTimeout(err) || isDNSError(err) {
			c.logger.Warn("Token validation could not complete, assuming valid",
				"error", err,
			)
			return true
		}
		c.logger.Error("Token validation failed",
			"error", err,
		)
		return false
	}

	switch result.status {
	case http.StatusOK:
		var listing struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := decodeJSON(result.body, &listing); err != nil {
			c.logger.Error("Token validation failed: unexpected response body",
				"error", err,
			)
			return false
		}
		return true
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.Error("Token validation failed",
			"status", result.status,
			"body", truncateBody(result.body),
		)
		return false
	default:
		c.logger.Error("Token validation failed",
			"status", result.status,
			"body", truncateBody(result.body),
		)
		return false
	}
}

// decodeJSON parses a response body, treating an empty body as an empty
// object so 201-with-no-content responses do not fail.
func decodeJSON(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// isTimeout reports whether an attempt failed due to a timeout rather than
// a hard transport error.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// isDNSError reports whether an attempt failed to resolve the API host.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
