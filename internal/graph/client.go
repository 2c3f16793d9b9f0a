package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// Profile is the subset of the /me resource the bot cares about.
type Profile struct {
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	DisplayName       string `json:"displayName"`
}

// EmailAddress returns the user's address, falling back to the principal name.
func (p Profile) EmailAddress() string {
	if p.Mail != "" {
		return p.Mail
	}
	return p.UserPrincipalName
}

// Message is a mailbox message as returned by the messages endpoints.
type Message struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
}

// Sender returns the sender address, empty when the message carries none.
func (m Message) Sender() string {
	return m.From.EmailAddress.Address
}

// Client calls the Microsoft Graph mail endpoints with a per-call bearer token.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new Graph API client. An empty baseURL selects the
// production endpoint; tests pass an httptest server URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// get performs an authenticated GET and decodes the JSON response
func (c *Client) get(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Profile returns the profile of the token's owner
func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	var profile Profile
	if err := c.get(ctx, token, "/me", &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// ListInbox returns the most recent inbox messages, newest first
func (c *Client) ListInbox(ctx context.Context, token string, top int) ([]Message, error) {
	path := fmt.Sprintf("/me/messages?$top=%d&$orderby=%s",
		top, url.QueryEscape("receivedDateTime DESC"))

	var result struct {
		Value []Message `json:"value"`
	}
	if err := c.get(ctx, token, path, &result); err != nil {
		return nil, err
	}
	return result.Value, nil
}

// GetMessage returns a single message by its Graph id
func (c *Client) GetMessage(ctx context.Context, token, id string) (Message, error) {
	var message Message
	if err := c.get(ctx, token, "/me/messages/"+url.PathEscape(id), &message); err != nil {
		return Message{}, err
	}
	return message, nil
}

// SendMail sends a plain-text email on behalf of the token's owner.
// Graph answers 202 Accepted on success.
func (c *Client) SendMail(ctx context.Context, token, to, subject, body string) error {
	payload := map[string]any{
		"message": map[string]any{
			"subject": subject,
			"body": map[string]any{
				"contentType": "Text",
				"content":     body,
			},
			"toRecipients": []map[string]any{
				{"emailAddress": map[string]string{"address": to}},
			},
		},
		"saveToSentItems": "true",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/me/sendMail", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
