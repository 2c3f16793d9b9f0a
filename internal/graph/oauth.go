package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultLoginBase = "https://login.microsoftonline.com"

// Token is the token endpoint's response.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// OAuth performs the Microsoft identity authorization-code handshake.
type OAuth struct {
	clientID     string
	clientSecret string
	tenantID     string
	redirectURI  string
	loginBase    string
	client       *http.Client
}

// NewOAuth creates an OAuth helper. An empty loginBase selects the production
// Microsoft login endpoint; tests pass an httptest server URL.
func NewOAuth(clientID, clientSecret, tenantID, redirectURI, loginBase string) *OAuth {
	if loginBase == "" {
		loginBase = defaultLoginBase
	}

	return &OAuth{
		clientID:     clientID,
		clientSecret: clientSecret,
		tenantID:     tenantID,
		redirectURI:  redirectURI,
		loginBase:    loginBase,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AuthorizeURL builds the login URL. The Telegram user id travels in the
// state parameter and comes back on the callback.
func (o *OAuth) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", o.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", o.redirectURI)
	q.Set("response_mode", "query")
	q.Set("scope", "User.Read Mail.Read Mail.Send")
	q.Set("state", state)

	return fmt.Sprintf("%s/%s/oauth2/v2.0/authorize?%s", o.loginBase, o.tenantID, q.Encode())
}

// Exchange trades an authorization code for an access token
func (o *OAuth) Exchange(ctx context.Context, code string) (Token, error) {
	form := url.Values{}
	form.Set("client_id", o.clientID)
	form.Set("client_secret", o.clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", o.redirectURI)
	form.Set("grant_type", "authorization_code")

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", o.loginBase, o.tenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("failed to exchange code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Token{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return Token{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return Token{}, fmt.Errorf("token response missing access_token")
	}

	return token, nil
}

// TTL returns how long the token stays valid, defaulting to one hour when
// the response carried no expires_in.
func (t Token) TTL() time.Duration {
	if t.ExpiresIn <= 0 {
		return time.Hour
	}
	return time.Duration(t.ExpiresIn) * time.Second
}
