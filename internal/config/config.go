package config

import (
	"fmt"
	"os"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string

	// Helpdesk content/medical API
	HelpdeskAPIURL string

	// Microsoft identity platform
	ClientID     string
	ClientSecret string
	TenantID     string
	RedirectURI  string

	// Fixed recipient for support and ID-card requests
	SupportEmail string

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)

	// OAuth callback service listen address
	CallbackAddr string

	// Token store configuration
	PostgresDSN  string
	UseMockStore bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	config.HelpdeskAPIURL = getEnv("HELPDESK_API_URL", "http://localhost:5001")

	// Microsoft identity configuration (required for mail features)
	config.ClientID = os.Getenv("CLIENT_ID")
	if config.ClientID == "" {
		return nil, fmt.Errorf("CLIENT_ID is required")
	}
	config.ClientSecret = os.Getenv("CLIENT_SECRET")
	if config.ClientSecret == "" {
		return nil, fmt.Errorf("CLIENT_SECRET is required")
	}
	config.TenantID = os.Getenv("TENANT_ID")
	if config.TenantID == "" {
		return nil, fmt.Errorf("TENANT_ID is required")
	}
	config.RedirectURI = os.Getenv("REDIRECT_URI")
	if config.RedirectURI == "" {
		return nil, fmt.Errorf("REDIRECT_URI is required")
	}

	config.SupportEmail = os.Getenv("SUPPORT_EMAIL")
	if config.SupportEmail == "" {
		return nil, fmt.Errorf("SUPPORT_EMAIL is required")
	}

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	config.CallbackAddr = getEnv("CALLBACK_ADDR", ":5000")

	// Use in-memory token store (default: false)
	config.UseMockStore = os.Getenv("USE_MOCK_STORE") == "true"

	// Postgres configuration (required unless using the mock store)
	if !config.UseMockStore {
		config.PostgresDSN = os.Getenv("POSTGRES_DSN")
		if config.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required when USE_MOCK_STORE is not set")
		}
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns the default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
