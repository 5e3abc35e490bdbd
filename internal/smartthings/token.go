package smartthings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// tokenFreshnessWindow is how much remaining lifetime a token needs before
// a proactive refresh is triggered.
const tokenFreshnessWindow = 5 * time.Minute

// Session holds the OAuth state for one client instance. A session without
// a refresh token is a static PAT: it is never refreshed and is assumed
// valid until a real request proves otherwise.
type Session struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	ExpiresAt    time.Time // zero when the expiry is unknown
}

// Refreshable reports whether the session carries a refresh token.
func (s Session) Refreshable() bool {
	return s.RefreshToken != ""
}

// tokenResponse is the provider's token endpoint response for both the
// refresh_token and authorization_code grants.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Session returns a copy of the current session state.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// currentToken returns the access token together with the token generation
// it was read at. The generation lets a 401 handler detect that another
// caller already refreshed while the failed request was in flight.
func (c *Client) currentToken() (string, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.AccessToken, c.tokenGen
}

// ensureValid guarantees the session token is usable at send time.
//
// Static sessions always pass. Refreshable sessions with more than five
// minutes of lifetime left pass without a network call. Otherwise one
// refresh is performed; concurrent callers serialize on the refresh lock
// and all observe the single refreshed token.
//
// A transient refresh failure (network, 5xx) is logged and swallowed: the
// caller keeps using the old token and refresh is retried on the next call.
// A permanent failure (the provider rejected the refresh token) is returned
// and marks the session dead.
func (c *Client) ensureValid(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if !c.session.Refreshable() {
		c.mu.Unlock()
		return nil
	}
	if c.refreshDead {
		c.mu.Unlock()
		return ErrReauthRequired
	}
	if !c.session.ExpiresAt.IsZero() && time.Until(c.session.ExpiresAt) > tokenFreshnessWindow {
		c.mu.Unlock()
		return nil
	}
	gen := c.tokenGen
	c.mu.Unlock()

	err := c.refreshToken(ctx, gen)
	if err == nil || isReauthRequired(err) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Transient failure: keep the old token and let the request surface
	// any real authentication problem.
	c.logger.Warn("Token refresh failed, keeping current token",
		"error", err,
	)
	return nil
}

// onUnauthorized handles a 401 from a request. It reports whether the
// request should be retried with a refreshed token. Retry is permitted at
// most once per original request; the caller enforces that.
func (c *Client) onUnauthorized(ctx context.Context, seenGen uint64) (bool, error) {
	c.mu.Lock()
	refreshable := c.session.Refreshable()
	dead := c.refreshDead
	c.mu.Unlock()

	if !refreshable {
		return false, nil
	}
	if dead {
		return false, ErrReauthRequired
	}

	if err := c.refreshToken(ctx, seenGen); err != nil {
		if isReauthRequired(err) {
			return false, err
		}
		// The old token was already rejected and the refresh attempt
		// failed transiently; retrying the request would just 401 again.
		return false, nil
	}
	return true, nil
}

// refreshToken performs the refresh_token exchange. The refresh lock keeps
// at most one network refresh in flight; callers that waited on the lock
// while another refresh completed return without a second call, detected
// through the generation counter.
func (c *Client) refreshToken(ctx context.Context, seenGen uint64) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if c.tokenGen != seenGen {
		// Another caller refreshed while we waited on the lock.
		c.mu.Unlock()
		return nil
	}
	if c.refreshDead {
		c.mu.Unlock()
		return ErrReauthRequired
	}
	sess := c.session
	c.mu.Unlock()

	if sess.ClientID == "" || sess.ClientSecret == "" {
		c.markRefreshDead()
		return fmt.Errorf("%w: client credentials are required for token refresh", ErrReauthRequired)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {sess.RefreshToken},
		"client_id":     {sess.ClientID},
		"client_secret": {sess.ClientSecret},
	}

	token, err := c.postTokenForm(ctx, form)
	if err != nil {
		if isReauthRequired(err) {
			c.markRefreshDead()
		}
		return err
	}

	c.applyToken(token, sess.RefreshToken)
	return nil
}

// ExchangeCode performs the one-shot authorization_code exchange used
// during initial setup. On success the client adopts the new session and
// reports it through the token-update callback.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (Session, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Session{}, ErrClientClosed
	}
	sess := c.session
	c.mu.Unlock()

	if sess.ClientID == "" || sess.ClientSecret == "" {
		return Session{}, fmt.Errorf("%w: client credentials are required for code exchange", ErrInvalidCredentials)
	}

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"client_id":     {sess.ClientID},
		"client_secret": {sess.ClientSecret},
	}

	token, err := c.postTokenForm(ctx, form)
	if err != nil {
		return Session{}, err
	}

	c.applyToken(token, "")
	return c.Session(), nil
}

// postTokenForm sends a form-encoded request to the token endpoint and
// classifies the outcome. A 400/401 means the grant itself is invalid;
// anything else is transient.
func (c *Client) postTokenForm(ctx context.Context, form url.Values) (*tokenResponse, error) {
	httpClient, err := c.getHTTPClient()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var token tokenResponse
		if err := decodeJSON(body, &token); err != nil {
			return nil, fmt.Errorf("failed to parse token response: %w", err)
		}
		if token.AccessToken == "" {
			return nil, fmt.Errorf("token endpoint returned no access token")
		}
		return &token, nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: token endpoint returned %d: %s", ErrReauthRequired, resp.StatusCode, truncateBody(body))
	default:
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, truncateBody(body))
	}
}

// applyToken atomically installs a refreshed token and notifies the
// persistence callback with the new session state.
func (c *Client) applyToken(token *tokenResponse, previousRefreshToken string) {
	c.mu.Lock()
	c.session.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		c.session.RefreshToken = token.RefreshToken
	} else if previousRefreshToken != "" {
		c.session.RefreshToken = previousRefreshToken
	}
	if token.ExpiresIn > 0 {
		c.session.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	} else {
		c.session.ExpiresAt = time.Time{}
	}
	c.tokenGen++
	sess := c.session
	onUpdate := c.onTokenUpdate
	c.mu.Unlock()

	c.logger.Debug("Token updated",
		"expires_at", sess.ExpiresAt,
	)

	if onUpdate != nil {
		onUpdate(sess)
	}
}

func (c *Client) markRefreshDead() {
	c.mu.Lock()
	c.refreshDead = true
	c.mu.Unlock()
}

func isReauthRequired(err error) bool {
	return errors.Is(err, ErrReauthRequired)
}
