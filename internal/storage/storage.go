package storage

import (
	"context"
	"time"
)

// Credentials is the persisted SmartThings credential state. A record with
// no refresh token is a static PAT.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	ExpiresAt    *time.Time
	UpdatedAt    time.Time
}

// CredentialStore defines the interface for credential persistence.
// The SmartThings client reports every token rotation through its update
// callback; the service writes the new state here so a restart picks up
// the rotated tokens instead of the originally configured ones.
type CredentialStore interface {
	// GetCredentials returns the stored credentials, or nil when none
	// have been stored yet.
	GetCredentials(ctx context.Context) (*Credentials, error)

	// SaveCredentials replaces the stored credentials.
	SaveCredentials(ctx context.Context, creds *Credentials) error

	// Lifecycle
	Close() error
}
