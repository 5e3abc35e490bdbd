package smartthings

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// sessionJSON is the structured credential shape: a full OAuth session
// with optional refresh state.
type sessionJSON struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"` // RFC 3339
}

// NormalizeCredentials converts a stored credential blob into a Session.
//
// Exactly two shapes are accepted: a bare JSON string holding a personal
// access token, or an object with access_token/refresh_token/client_id/
// client_secret/expires_at fields. Anything else is a configuration error;
// there is no duck-typed fallback parsing anywhere else in the client.
func NormalizeCredentials(raw json.RawMessage) (Session, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return Session{}, fmt.Errorf("%w: empty credential blob", ErrInvalidCredentials)
	}

	if strings.HasPrefix(trimmed, `"`) {
		var token string
		if err := json.Unmarshal(raw, &token); err != nil {
			return Session{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return Session{}, fmt.Errorf("%w: token is empty", ErrInvalidCredentials)
		}
		return Session{AccessToken: token}, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var stored sessionJSON
		decoder := json.NewDecoder(strings.NewReader(trimmed))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&stored); err != nil {
			return Session{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}

		session := Session{
			AccessToken:  strings.TrimSpace(stored.AccessToken),
			RefreshToken: strings.TrimSpace(stored.RefreshToken),
			ClientID:     strings.TrimSpace(stored.ClientID),
			ClientSecret: strings.TrimSpace(stored.ClientSecret),
		}
		if session.AccessToken == "" && session.RefreshToken == "" {
			return Session{}, fmt.Errorf("%w: neither access_token nor refresh_token present", ErrInvalidCredentials)
		}
		if stored.ExpiresAt != "" {
			expiresAt, err := time.Parse(time.RFC3339, stored.ExpiresAt)
			if err != nil {
				return Session{}, fmt.Errorf("%w: bad expires_at: %v", ErrInvalidCredentials, err)
			}
			session.ExpiresAt = expiresAt
		}
		return session, nil
	}

	return Session{}, fmt.Errorf("%w: expected a token string or a credential object", ErrInvalidCredentials)
}

// MarshalCredentials serializes a session into the structured credential
// shape accepted by NormalizeCredentials.
func MarshalCredentials(session Session) (json.RawMessage, error) {
	stored := sessionJSON{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ClientID:     session.ClientID,
		ClientSecret: session.ClientSecret,
	}
	if !session.ExpiresAt.IsZero() {
		stored.ExpiresAt = session.ExpiresAt.Format(time.RFC3339)
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return data, nil
}
