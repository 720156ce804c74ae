package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start main server.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol)
	LLMProvider string // Provider identifier: openai, deepseek, ollama
	LLMAPIKey   string
	LLMBaseURL  string // Optional, has default per provider
	LLMModel    string
	LLMTimeout  int // LLM request timeout in seconds (default: 120)

	// Data source credentials
	TwelveDataAPIKey       string // Stock quotes
	NewsAPIKey             string // Headlines
	WeatherAPIKey          string // Forecasts
	OpenRouteServiceAPIKey string // Routing
	AmadeusClientID        string // Flight offers
	AmadeusClientSecret    string
	RaplaURL               string // Published class schedule calendar

	// Frontend configuration
	TelegramBotToken string

	// Scheduler configuration, cron expressions
	MorningCron     string
	ProactivityCron string

	// Server configurations
	Mode    string
	Addr    string
	Port    int
	Data    string
	Driver  string
	DSN     string
	Version string
}

// Provider default configurations for LLM.
// Used when the base URL or model is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if an LLM API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("EVERYDAYPDA_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("EVERYDAYPDA_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("EVERYDAYPDA_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("EVERYDAYPDA_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("EVERYDAYPDA_LLM_TIMEOUT_SECONDS", 120)

	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		slog.Warn("Unknown LLM provider, using default: openai", "provider", p.LLMProvider)
		p.LLMProvider = "openai"
	}
	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
	}

	p.TwelveDataAPIKey = getEnvOrDefault("EVERYDAYPDA_TWELVE_DATA_API_KEY", "")
	p.NewsAPIKey = getEnvOrDefault("EVERYDAYPDA_NEWS_API_KEY", "")
	p.WeatherAPIKey = getEnvOrDefault("EVERYDAYPDA_WEATHER_API_KEY", "")
	p.OpenRouteServiceAPIKey = getEnvOrDefault("EVERYDAYPDA_OPENROUTESERVICE_API_KEY", "")
	p.AmadeusClientID = getEnvOrDefault("EVERYDAYPDA_AMADEUS_CLIENT_ID", "")
	p.AmadeusClientSecret = getEnvOrDefault("EVERYDAYPDA_AMADEUS_CLIENT_SECRET", "")
	p.RaplaURL = getEnvOrDefault("EVERYDAYPDA_RAPLA_URL", "")

	p.TelegramBotToken = getEnvOrDefault("EVERYDAYPDA_TELEGRAM_BOT_TOKEN", "")

	p.MorningCron = getEnvOrDefault("EVERYDAYPDA_MORNING_CRON", "0 7 * * *")
	p.ProactivityCron = getEnvOrDefault("EVERYDAYPDA_PROACTIVITY_CRON", "0 * * * *")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "everyday-pda")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/everyday-pda"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("everyday_pda_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
