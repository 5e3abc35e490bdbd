package smartthings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, calls *atomic.Int32, response map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusOK, response)
	}))
}

func TestEnsureValid_StaticTokenNeverRefreshes(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenServer := newTokenServer(t, &tokenCalls, map[string]any{"access_token": "x"})
	defer tokenServer.Close()

	// No refresh token: the expiry is ignored and refresh is a no-op.
	client := testClient(t, Config{TokenURL: tokenServer.URL}, Session{
		AccessToken: "pat-token",
		ExpiresAt:   time.Now().Add(-time.Hour),
	})

	require.NoError(t, client.ensureValid(context.Background()))
	assert.Equal(t, int32(0), tokenCalls.Load())
	assert.Equal(t, "pat-token", client.Session().AccessToken)
}

func TestEnsureValid_FreshTokenSkipsNetwork(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenServer := newTokenServer(t, &tokenCalls, map[string]any{"access_token": "x"})
	defer tokenServer.Close()

	client := testClient(t, Config{TokenURL: tokenServer.URL}, Session{
		AccessToken:  "current-token",
		RefreshToken: "refresh-1",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		ExpiresAt:    time.Now().Add(time.Hour),
	})

	require.NoError(t, client.ensureValid(context.Background()))
	assert.Equal(t, int32(0), tokenCalls.Load())
}

func TestEnsureValid_RefreshesExpiringToken(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.Form.Get("refresh_token"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))
		assert.Equal(t, "client-secret", r.Form.Get("client_secret"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token":  "new-token",
			"refresh_token": "refresh-2",
			"expires_in":    86400,
		})
	}))
	defer tokenServer.Close()

	var updates []Session
	client := testClient(t, Config{
		TokenURL: tokenServer.URL,
		OnTokenUpdate: func(s Session) {
			updates = append(updates, s)
		},
	}, Session{
		AccessToken:  "old-token",
		RefreshToken: "refresh-1",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		ExpiresAt:    time.Now().Add(time.Minute), // inside the 5-minute window
	})

	require.NoError(t, client.ensureValid(context.Background()))
	assert.Equal(t, int32(1), tokenCalls.Load())

	session := client.Session()
	assert.Equal(t, "new-token", session.AccessToken)
	assert.Equal(t, "refresh-2", session.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(86400*time.Second), session.ExpiresAt, 5*time.Second)

	// The persistence callback saw the refreshed state.
	require.Len(t, updates, 1)
	assert.Equal(t, "new-token", updates[0].AccessToken)
	assert.Equal(t, "refresh-2", updates[0].RefreshToken)
}

func TestEnsureValid_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenServer := newTokenServer(t, &tokenCalls, map[string]any{
		"access_token": "new-token",
		"expires_in":   3600,
	})
	defer tokenServer.Close()

	client := testClient(t, Config{TokenURL: tokenServer.URL}, Session{
		AccessToken:  "old-token",
		RefreshToken: "refresh-1",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})

	require.NoError(t, client.ensureValid(context.Background()))
	assert.Equal(t, "refresh-1", client.Session().RefreshToken)
}

func TestEnsureValid_SingleFlightUnderConcurrency(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		time.Sleep(50 * time.Millisecond) // hold concurrent callers on the refresh lock
		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token": "new-token",
			"expires_in":   86400,
		})
	}))
	defer tokenServer.Close()

	client := testClient(t, Config{TokenURL: tokenServer.URL}, Session{
		AccessToken:  "old-token",
		RefreshToken: "refresh-1",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.ensureValid(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), tokenCalls.Load(), "exactly one refresh network call")
	assert.Equal(t, "new-token", client.Session().AccessToken)
}

func TestEnsureValid_MissingClientCredentialsIsFatal(t *testing.T) {
	client := testClient(t, Config{}, Session{
		AccessToken:  "old-token",
		RefreshToken: "refresh-1",
	})

	err := client.ensureValid(context.Background())
	assert.ErrorIs(t, err, ErrReauthRequired)

	// The session is dead now; later calls fail without trying again.
	err = client.ensureValid(context.Background())
	assert.ErrorIs(t, err, ErrReauthRequired)
}

func TestEnsureValid_RejectedRefreshTokenIsFatal(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer tokenServer.Close()

	client := testClient(t, Config{TokenURL: tokenServer.URL}, Session{
		AccessToken:  "old-token",
		RefreshToken: "revoked",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})

	err := client.ensureValid(context.Background())
	assert.ErrorIs(t, err, ErrReauthRequired)
	assert.Equal(t, int32(1), tokenCalls.Load())

	// No further auto-refresh attempts without new credentials.
	err = client.ensureValid(context.Background())
	assert.ErrorIs(t, err, ErrReauthRequired)
	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestEnsureValid_TransientRefreshFailureKeepsOldToken(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer tokenServer.Close()

	client := testClient(t, Config{TokenURL: tokenServer.URL}, Session{
		AccessToken:  "old-token",
		RefreshToken: "refresh-1",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})

	// Transient failure: the old token stays in place and no error surfaces.
	require.NoError(t, client.ensureValid(context.Background()))
	assert.Equal(t, "old-token", client.Session().AccessToken)

	// The next call tries the refresh again.
	require.NoError(t, client.ensureValid(context.Background()))
	assert.Equal(t, int32(2), tokenCalls.Load())
}

func TestExchangeCode(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "auth-code", r.Form.Get("code"))
		assert.Equal(t, "https://example.com/callback", r.Form.Get("redirect_uri"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token":  "first-token",
			"refresh_token": "first-refresh",
			"expires_in":    86400,
		})
	}))
	defer tokenServer.Close()

	var updates []Session
	client := testClient(t, Config{
		TokenURL: tokenServer.URL,
		OnTokenUpdate: func(s Session) {
			updates = append(updates, s)
		},
	}, Session{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})

	session, err := client.ExchangeCode(context.Background(), "auth-code", "https://example.com/callback")
	require.NoError(t, err)
	assert.Equal(t, "first-token", session.AccessToken)
	assert.Equal(t, "first-refresh", session.RefreshToken)
	require.Len(t, updates, 1)
}

func TestExchangeCode_RequiresClientCredentials(t *testing.T) {
	client := testClient(t, Config{}, Session{})

	_, err := client.ExchangeCode(context.Background(), "auth-code", "https://example.com/callback")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionJSONRoundTrip(t *testing.T) {
	session := Session{
		AccessToken:  "token",
		RefreshToken: "refresh",
		ClientID:     "id",
		ClientSecret: "secret",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second),
	}

	raw, err := MarshalCredentials(session)
	require.NoError(t, err)

	var decoded json.RawMessage = raw
	got, err := NormalizeCredentials(decoded)
	require.NoError(t, err)
	assert.Equal(t, session.AccessToken, got.AccessToken)
	assert.Equal(t, session.RefreshToken, got.RefreshToken)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))
}
