package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tvbridge/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetCredentials_Empty(t *testing.T) {
	store := newTestStore(t)

	creds, err := store.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestSaveAndGetCredentials(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	err := store.SaveCredentials(ctx, &storage.Credentials{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		ExpiresAt:    &expiresAt,
	})
	require.NoError(t, err)

	creds, err := store.GetCredentials(ctx)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "access-1", creds.AccessToken)
	assert.Equal(t, "refresh-1", creds.RefreshToken)
	assert.Equal(t, "client-id", creds.ClientID)
	require.NotNil(t, creds.ExpiresAt)
	assert.True(t, expiresAt.Equal(creds.ExpiresAt.UTC()))
	assert.False(t, creds.UpdatedAt.IsZero())
}

func TestSaveCredentials_Overwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCredentials(ctx, &storage.Credentials{
		AccessToken: "first",
	}))
	require.NoError(t, store.SaveCredentials(ctx, &storage.Credentials{
		AccessToken:  "second",
		RefreshToken: "rotated",
	}))

	creds, err := store.GetCredentials(ctx)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "second", creds.AccessToken)
	assert.Equal(t, "rotated", creds.RefreshToken)
}

func TestSaveCredentials_PATWithoutExpiry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCredentials(ctx, &storage.Credentials{
		AccessToken: "pat-token",
	}))

	creds, err := store.GetCredentials(ctx)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "pat-token", creds.AccessToken)
	assert.Empty(t, creds.RefreshToken)
	assert.Nil(t, creds.ExpiresAt)
}

func TestStore_ImplementsInterface(t *testing.T) {
	var _ storage.CredentialStore = (*SQLiteStore)(nil)
}
