package smartthings

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCredentials_BareToken(t *testing.T) {
	session, err := NormalizeCredentials(json.RawMessage(`"  pat-token-abc  "`))
	require.NoError(t, err)
	assert.Equal(t, "pat-token-abc", session.AccessToken)
	assert.Empty(t, session.RefreshToken)
	assert.False(t, session.Refreshable())
}

func TestNormalizeCredentials_StructuredSession(t *testing.T) {
	raw := json.RawMessage(`{
		"access_token": "access-1",
		"refresh_token": "refresh-1",
		"client_id": "client-id",
		"client_secret": "client-secret",
		"expires_at": "2026-09-01T12:00:00Z"
	}`)

	session, err := NormalizeCredentials(raw)
	require.NoError(t, err)
	assert.Equal(t, "access-1", session.AccessToken)
	assert.Equal(t, "refresh-1", session.RefreshToken)
	assert.Equal(t, "client-id", session.ClientID)
	assert.True(t, session.Refreshable())

	want := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, session.ExpiresAt.Equal(want))
}

func TestNormalizeCredentials_RefreshOnly(t *testing.T) {
	raw := json.RawMessage(`{"refresh_token": "refresh-1", "client_id": "a", "client_secret": "b"}`)
	session, err := NormalizeCredentials(raw)
	require.NoError(t, err)
	assert.Empty(t, session.AccessToken)
	assert.True(t, session.Refreshable())
}

func TestNormalizeCredentials_Rejected(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty blob", ``},
		{"empty string", `""`},
		{"whitespace token", `"   "`},
		{"number", `42`},
		{"array", `["token"]`},
		{"empty object", `{}`},
		{"unknown fields", `{"token": "x"}`},
		{"bad expires_at", `{"access_token": "x", "expires_at": "tomorrow"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeCredentials(json.RawMessage(tt.raw))
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}
