package helpdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"helpdesk/internal/models"
)

// Client calls the university helpdesk REST API (content lists and medical
// requests). The API is a fixed external contract.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new helpdesk API client
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:5001"
	}

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// getList fetches and decodes a JSON list endpoint
func (c *Client) getList(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

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

// Instructions returns all published instructions
func (c *Client) Instructions(ctx context.Context) ([]models.Instruction, error) {
	var instructions []models.Instruction
	if err := c.getList(ctx, "/api/instructions", &instructions); err != nil {
		return nil, err
	}
	return instructions, nil
}

// Events returns all upcoming events
func (c *Client) Events(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.getList(ctx, "/api/events", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FAQs returns all FAQ entries
func (c *Client) FAQs(ctx context.Context) ([]models.FAQ, error) {
	var faqs []models.FAQ
	if err := c.getList(ctx, "/api/faqs", &faqs); err != nil {
		return nil, err
	}
	return faqs, nil
}

// Clubs returns all student clubs
func (c *Client) Clubs(ctx context.Context) ([]models.Club, error) {
	var clubs []models.Club
	if err := c.getList(ctx, "/api/clubs", &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}

// Contacts returns all department contacts
func (c *Client) Contacts(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := c.getList(ctx, "/api/contacts", &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// CreateMedicalRequest files a new medical request and returns its id
func (c *Client) CreateMedicalRequest(ctx context.Context, userID int64, reason string, date time.Time) (int64, error) {
	payload := map[string]any{
		"user_id": userID,
		"reason":  reason,
		"date":    date.Format("2006-01-02T15:04:05"),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/medical_requests", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to create medical request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.ID, nil
}

// MedicalRequests returns all medical requests filed by the user
func (c *Client) MedicalRequests(ctx context.Context, userID int64) ([]models.MedicalRequest, error) {
	var requests []models.MedicalRequest
	path := fmt.Sprintf("/api/medical_requests/%d", userID)
	if err := c.getList(ctx, path, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// UploadMedicalFile attaches a file to an existing medical request and returns
// the stored file name
func (c *Client) UploadMedicalFile(ctx context.Context, requestID int64, filename, mimeType string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	url := fmt.Sprintf("%s/api/medical_requests/%d/upload_file", c.baseURL, requestID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		FileName string `json:"file_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return result.FileName, nil
}
