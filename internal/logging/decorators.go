package logging

import (
	"context"
	"log/slog"
	"time"

	"tvbridge/internal/storage"
)

// CredentialStoreLogger wraps a CredentialStore and logs all method calls
type CredentialStoreLogger struct {
	store  storage.CredentialStore
	logger *slog.Logger
}

// NewCredentialStoreLogger creates a new logging decorator for CredentialStore
func NewCredentialStoreLogger(store storage.CredentialStore, logger *slog.Logger) storage.CredentialStore {
	return &CredentialStoreLogger{
		store:  store,
		logger: logger.With("interface", "CredentialStore"),
	}
}

func (l *CredentialStoreLogger) GetCredentials(ctx context.Context) (*storage.Credentials, error) {
	start := time.Now()
	l.logger.Debug("GetCredentials called")

	creds, err := l.store.GetCredentials(ctx)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("GetCredentials failed",
			"duration", duration,
			"error", err)
		return nil, err
	}

	l.logger.Debug("GetCredentials completed",
		"found", creds != nil,
		"duration", duration)

	return creds, nil
}

func (l *CredentialStoreLogger) SaveCredentials(ctx context.Context, creds *storage.Credentials) error {
	start := time.Now()
	l.logger.Info("SaveCredentials called",
		"has_refresh_token", creds.RefreshToken != "")

	err := l.store.SaveCredentials(ctx, creds)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("SaveCredentials failed",
			"duration", duration,
			"error", err)
		return err
	}

	l.logger.Info("SaveCredentials completed",
		"duration", duration)

	return nil
}

func (l *CredentialStoreLogger) Close() error {
	return l.store.Close()
}
