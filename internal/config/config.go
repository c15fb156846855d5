package config

import (
	"fmt"
	"os"
)

// Config holds the configuration for the application.
type Config struct {
	USDAAPIKey   string
	USDAAPIURL   string
	GeminiAPIKey string
	GeminiModel  string

	Port          string
	DatabasePath  string
	SessionSecret string

	// Telegram Config (bot binary only)
	TelegramBotToken    string
	TelegramWebhookURL  string
	TelegramAllowUserID int64
	AdminTelegramID     int64
}

// NewFromEnv creates a new Config object from environment variables.
// The two API keys are required; the process must not start without them.
func NewFromEnv() (*Config, error) {
	usdaKey := os.Getenv("USDA_API_KEY")
	if usdaKey == "" {
		return nil, fmt.Errorf("USDA_API_KEY environment variable not set")
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "models/gemini-2.5-flash"
	}

	usdaURL := os.Getenv("USDA_API_URL")
	if usdaURL == "" {
		usdaURL = "https://api.nal.usda.gov/fdc/v1/foods/search"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/diet-assistant.db"
	}

	// Telegram Config (optional for the web server, required for the bot)
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	var telegramAllowUserID int64
	if s := os.Getenv("TELEGRAM_ALLOW_USER_ID"); s != "" {
		fmt.Sscanf(s, "%d", &telegramAllowUserID)
	}
	var adminTelegramID int64
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		fmt.Sscanf(s, "%d", &adminTelegramID)
	}

	return &Config{
		USDAAPIKey:          usdaKey,
		USDAAPIURL:          usdaURL,
		GeminiAPIKey:        geminiKey,
		GeminiModel:         geminiModel,
		Port:                port,
		DatabasePath:        dbPath,
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		TelegramBotToken:    telegramBotToken,
		TelegramWebhookURL:  telegramWebhookURL,
		TelegramAllowUserID: telegramAllowUserID,
		AdminTelegramID:     adminTelegramID,
	}, nil
}
