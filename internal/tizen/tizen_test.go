package tizen

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serverConfig points a client at a httptest server instead of a real TV.
func serverConfig(t *testing.T, server *httptest.Server) Config {
	t.Helper()
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)
	return Config{Host: parsed.Hostname(), Port: port}
}

func TestClient_Name(t *testing.T) {
	client := NewClient(Config{Host: "192.168.1.50"}, testLogger())
	assert.Equal(t, "tizen", client.Name())
}

func TestClient_SendCommand(t *testing.T) {
	client := NewClient(Config{Host: "192.168.1.50"}, testLogger())
	defer client.Close()

	assert.True(t, client.SendCommand(context.Background(), "", "POWER"))
	assert.True(t, client.SendCommand(context.Background(), "", "VOLUP"))
}

func TestClient_SendCommandCanceled(t *testing.T) {
	client := NewClient(Config{Host: "192.168.1.50"}, testLogger())
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.False(t, client.SendCommand(ctx, "", "POWER"))
}

func TestClient_Validate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ms/version", r.URL.Path)
		w.Write([]byte(`{"version": "2.0.25"}`))
	}))
	defer server.Close()

	client := NewClient(serverConfig(t, server), testLogger())
	defer client.Close()

	assert.True(t, client.Validate(context.Background()))
}

func TestClient_ValidateUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	config := serverConfig(t, server)
	server.Close() // connection refused from here on

	client := NewClient(config, testLogger())
	defer client.Close()

	assert.False(t, client.Validate(context.Background()))
}

func TestClient_Close(t *testing.T) {
	client := NewClient(Config{Host: "192.168.1.50"}, testLogger())

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	assert.False(t, client.SendCommand(context.Background(), "", "POWER"))
	assert.False(t, client.Validate(context.Background()))

	_, err := client.getHTTPClient()
	assert.ErrorIs(t, err, ErrClientClosed)
}
