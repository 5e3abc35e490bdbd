package smartthings

import (
	"errors"
	"fmt"
)

var (
	// ErrNoToken means the client has neither an access token nor a refresh
	// token, so no request can be attempted.
	ErrNoToken = errors.New("no SmartThings token configured")

	// ErrAuthentication means the API rejected the token with 401 and a
	// refresh (if possible) did not resolve it.
	ErrAuthentication = errors.New("authentication failed (401)")

	// ErrForbidden means the token lacks the required scopes (403).
	// Scope problems do not self-resolve, so this is never retried.
	ErrForbidden = errors.New("permission denied (403) - token is missing required scopes")

	// ErrRateLimited means the API kept returning 429 after all retries.
	ErrRateLimited = errors.New("rate limited by SmartThings API")

	// ErrRequestTimeout means the request timed out on every attempt.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrReauthRequired means the refresh token itself was rejected.
	// The session cannot recover without new credentials.
	ErrReauthRequired = errors.New("refresh token rejected - re-authentication required")

	// ErrClientClosed is returned for any operation after Close.
	ErrClientClosed = errors.New("client is closed")

	// ErrInvalidCredentials means the stored credential blob had an
	// unrecognized shape.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// APIError is returned for non-2xx responses that have no dedicated
// classification (not 401/403/429).
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("SmartThings API error %d: %s", e.Status, e.Body)
}

// maxErrorBodyLen limits how much of an error response body is carried in
// error messages and logs.
const maxErrorBodyLen = 200

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyLen {
		return string(body[:maxErrorBodyLen])
	}
	return string(body)
}
