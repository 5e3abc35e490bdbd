// Package tizen is a local-network client for Samsung Tizen TVs.
//
// Command dispatch is a stand-in: the real Tizen remote protocol runs over
// a pairing websocket that is not implemented here. Reachability checks
// hit the TV's info endpoint on port 8001, which every Tizen set exposes.
package tizen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tvbridge/internal/smartthings"
)

// ErrClientClosed is returned for any operation after Close.
var ErrClientClosed = errors.New("client is closed")

const (
	// DefaultPort is the Tizen TV info/service port.
	DefaultPort = 8001

	// DefaultTimeout bounds the reachability check.
	DefaultTimeout = 10 * time.Second

	// dispatchDelay simulates the round trip of a local key press.
	dispatchDelay = 100 * time.Millisecond
)

// Config contains local TV connection settings.
type Config struct {
	Host    string
	Port    int
	PSK     string // pre-shared key, unused until real pairing lands
	Timeout time.Duration
}

// Client talks to a TV on the local network.
type Client struct {
	host    string
	port    int
	psk     string
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.Mutex
	httpClient *http.Client
	closed     bool
}

// NewClient creates a local Tizen client.
func NewClient(config Config, logger *slog.Logger) *Client {
	if config.Port <= 0 {
		config.Port = DefaultPort
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{
		host:    config.Host,
		port:    config.Port,
		psk:     config.PSK,
		timeout: config.Timeout,
		logger:  logger.With("component", "tizen"),
	}
}

// Name returns the backend name.
func (c *Client) Name() string {
	return "tizen"
}

// SendCommand simulates dispatching a key press to the TV. The deviceID is
// ignored; a local client is bound to one TV.
func (c *Client) SendCommand(ctx context.Context, deviceID, command string) bool {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		c.logger.Error("Cannot send command on closed client")
		return false
	}

	key := smartthings.TranslateKey(command)
	c.logger.Debug("Sending local command",
		"host", c.host,
		"command", command,
		"key", key,
	)

	timer := time.NewTimer(dispatchDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Validate checks that the TV's info endpoint answers on the local network.
func (c *Client) Validate(ctx context.Context) bool {
	httpClient, err := c.getHTTPClient()
	if err != nil {
		return false
	}

	url := fmt.Sprintf("http://%s:%d/ms/version", c.host, c.port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("Failed to create validation request", "error", err)
		return false
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger.Error("Connection validation failed", "host", c.host, "error", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Close releases the HTTP connection pool. Safe to call more than once.
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

func (c *Client) getHTTPClient() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c.httpClient, nil
}
