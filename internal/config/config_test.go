package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Success", func(t *testing.T) {
		setEnv("USDA_API_KEY", "usda_key")
		setEnv("GEMINI_API_KEY", "gemini_key")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.USDAAPIKey != "usda_key" {
			t.Errorf("Expected USDAAPIKey to be 'usda_key', got '%s'", cfg.USDAAPIKey)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		setEnv("USDA_API_KEY", "usda_key")
		setEnv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("GEMINI_MODEL")
		os.Unsetenv("PORT")
		os.Unsetenv("DB_PATH")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiModel != "models/gemini-2.5-flash" {
			t.Errorf("Expected default Gemini model, got '%s'", cfg.GeminiModel)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected default port 8080, got '%s'", cfg.Port)
		}
		if cfg.DatabasePath != "data/diet-assistant.db" {
			t.Errorf("Expected default database path, got '%s'", cfg.DatabasePath)
		}
	})

	t.Run("MissingUSDAAPIKey", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("USDA_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing USDA_API_KEY, got nil")
		}
		expectedError := "USDA_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		setEnv("USDA_API_KEY", "usda_key")
		os.Unsetenv("GEMINI_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("TelegramIDs", func(t *testing.T) {
		setEnv("USDA_API_KEY", "usda_key")
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("TELEGRAM_ALLOW_USER_ID", "12345")
		setEnv("ADMIN_TELEGRAM_ID", "678")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.TelegramAllowUserID != 12345 {
			t.Errorf("Expected TelegramAllowUserID 12345, got %d", cfg.TelegramAllowUserID)
		}
		if cfg.AdminTelegramID != 678 {
			t.Errorf("Expected AdminTelegramID 678, got %d", cfg.AdminTelegramID)
		}
	})
}
