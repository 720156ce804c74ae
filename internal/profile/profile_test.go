package profile

import (
	"os"
	"testing"
)

var profileEnvVars = []string{
	"EVERYDAYPDA_LLM_PROVIDER",
	"EVERYDAYPDA_LLM_API_KEY",
	"EVERYDAYPDA_LLM_BASE_URL",
	"EVERYDAYPDA_LLM_MODEL",
	"EVERYDAYPDA_LLM_TIMEOUT_SECONDS",
	"EVERYDAYPDA_TWELVE_DATA_API_KEY",
	"EVERYDAYPDA_NEWS_API_KEY",
	"EVERYDAYPDA_WEATHER_API_KEY",
	"EVERYDAYPDA_OPENROUTESERVICE_API_KEY",
	"EVERYDAYPDA_AMADEUS_CLIENT_ID",
	"EVERYDAYPDA_AMADEUS_CLIENT_SECRET",
	"EVERYDAYPDA_RAPLA_URL",
	"EVERYDAYPDA_TELEGRAM_BOT_TOKEN",
	"EVERYDAYPDA_MORNING_CRON",
	"EVERYDAYPDA_PROACTIVITY_CRON",
}

func clearProfileEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range profileEnvVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestProfileDefaults(t *testing.T) {
	clearProfileEnvVars(t)

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"LLMProvider default", "openai", profile.LLMProvider},
		{"LLMBaseURL default", "https://api.openai.com/v1", profile.LLMBaseURL},
		{"LLMModel default", "gpt-4o-mini", profile.LLMModel},
		{"LLMAPIKey default", "", profile.LLMAPIKey},
		{"MorningCron default", "0 7 * * *", profile.MorningCron},
		{"ProactivityCron default", "0 * * * *", profile.ProactivityCron},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}

	if profile.LLMTimeout != 120 {
		t.Errorf("LLMTimeout default: expected 120, got %d", profile.LLMTimeout)
	}
	if profile.IsAIEnabled() {
		t.Error("IsAIEnabled should be false without an API key")
	}
}

func TestProfileFromEnv(t *testing.T) {
	clearProfileEnvVars(t)
	t.Setenv("EVERYDAYPDA_LLM_PROVIDER", "deepseek")
	t.Setenv("EVERYDAYPDA_LLM_API_KEY", "test-key")
	t.Setenv("EVERYDAYPDA_TWELVE_DATA_API_KEY", "td-key")
	t.Setenv("EVERYDAYPDA_MORNING_CRON", "30 6 * * *")

	profile := &Profile{}
	profile.FromEnv()

	if profile.LLMProvider != "deepseek" {
		t.Errorf("LLMProvider: expected %q, got %q", "deepseek", profile.LLMProvider)
	}
	if profile.LLMBaseURL != "https://api.deepseek.com" {
		t.Errorf("LLMBaseURL: expected provider default, got %q", profile.LLMBaseURL)
	}
	if !profile.IsAIEnabled() {
		t.Error("IsAIEnabled should be true with an API key")
	}
	if profile.TwelveDataAPIKey != "td-key" {
		t.Errorf("TwelveDataAPIKey: expected %q, got %q", "td-key", profile.TwelveDataAPIKey)
	}
	if profile.MorningCron != "30 6 * * *" {
		t.Errorf("MorningCron: expected override, got %q", profile.MorningCron)
	}
}

func TestProfileUnknownProviderFallsBack(t *testing.T) {
	clearProfileEnvVars(t)
	t.Setenv("EVERYDAYPDA_LLM_PROVIDER", "mystery")

	profile := &Profile{}
	profile.FromEnv()

	if profile.LLMProvider != "openai" {
		t.Errorf("LLMProvider: expected fallback to openai, got %q", profile.LLMProvider)
	}
}

func TestValidateModeFallback(t *testing.T) {
	profile := &Profile{Mode: "weird", Data: t.TempDir()}
	if err := profile.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if profile.Mode != "demo" {
		t.Errorf("Mode: expected demo fallback, got %q", profile.Mode)
	}
}

func TestValidateSQLiteDSN(t *testing.T) {
	profile := &Profile{Mode: "dev", Driver: "sqlite", Data: t.TempDir()}
	if err := profile.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if profile.DSN == "" {
		t.Error("DSN: expected a derived sqlite path")
	}
}
