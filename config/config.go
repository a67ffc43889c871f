package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"btcSignalBot/internal/adapters/logger"
	"btcSignalBot/internal/ports"
)

// Signal policy names accepted by SIGNAL_POLICY.
const (
	PolicyThreshold = "threshold"
	PolicyCrossover = "crossover"
)

// Config holds all application configuration. It is constructed once at
// process start and passed explicitly into the collaborators; nothing
// reads the environment after startup.
type Config struct {
	// Email (required; absence is startup-fatal)
	EmailAddress   string // sender identity, EMAIL_ADDRESS
	AppPassword    string // sender credential, APP_PASSWORD
	RecipientEmail string // destination, RECIPIENT_EMAIL
	SMTPHost       string
	SMTPPort       int

	// Market data
	Symbol          string        // e.g., "BTCUSDT"
	ScanInterval    string        // fine-grained candles for the scanner, e.g., "5m"
	ContextInterval string        // coarse candles for the hourly bot, e.g., "1h"
	Lookback        int           // candles fetched per evaluation
	FetchTimeout    time.Duration // bound on a single price fetch

	// Indicator parameters
	RSIPeriod      int
	EMAShortPeriod int
	EMALongPeriod  int
	RSIOverbought  float64
	RSIOversold    float64

	// Classification
	SignalPolicy  string // "threshold" or "crossover"
	SwingLookback int    // candles scanned for a target price

	// Scanner loop
	PollInterval time.Duration

	// Signal log
	DBPath string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	// Email settings. Credentials and recipient are required; the bot is
	// useless if it cannot deliver alerts.
	cfg.EmailAddress = getEnv("EMAIL_ADDRESS", "")
	if cfg.EmailAddress == "" {
		errs = append(errs, "EMAIL_ADDRESS must be set")
	}
	cfg.AppPassword = getEnv("APP_PASSWORD", "")
	if cfg.AppPassword == "" {
		errs = append(errs, "APP_PASSWORD must be set")
	}
	cfg.RecipientEmail = getEnv("RECIPIENT_EMAIL", "")
	if cfg.RecipientEmail == "" {
		errs = append(errs, "RECIPIENT_EMAIL must be set")
	}

	cfg.SMTPHost = getEnv("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTPPort, err = getEnvAsIntRequired("SMTP_PORT", 587)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SMTP_PORT: %v", err))
	} else if cfg.SMTPPort <= 0 {
		errs = append(errs, "SMTP_PORT must be positive")
	}

	// Market data
	cfg.Symbol = getEnv("SYMBOL", "BTCUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.ScanInterval = getEnv("SCAN_INTERVAL", "5m")
	cfg.ContextInterval = getEnv("CONTEXT_INTERVAL", "1h")

	cfg.Lookback, err = getEnvAsIntRequired("LOOKBACK", 300)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LOOKBACK: %v", err))
	}

	fetchTimeoutSeconds := getEnvAsInt("FETCH_TIMEOUT_SECONDS", 30)
	if fetchTimeoutSeconds <= 0 {
		errs = append(errs, "FETCH_TIMEOUT_SECONDS must be positive")
	}
	cfg.FetchTimeout = time.Duration(fetchTimeoutSeconds) * time.Second

	// Indicator parameters (using defaults if not set)
	cfg.RSIPeriod = getEnvAsInt("RSI_PERIOD", 14)
	cfg.EMAShortPeriod = getEnvAsInt("EMA_SHORT_PERIOD", 9)
	cfg.EMALongPeriod = getEnvAsInt("EMA_LONG_PERIOD", 21)
	cfg.RSIOverbought = getEnvAsFloat("RSI_OVERBOUGHT", 70.0)
	cfg.RSIOversold = getEnvAsFloat("RSI_OVERSOLD", 30.0)

	if cfg.RSIPeriod <= 0 || cfg.EMAShortPeriod <= 0 || cfg.EMALongPeriod <= 0 {
		errs = append(errs, "indicator periods (RSI, EMA) must be positive")
	}
	if cfg.EMAShortPeriod >= cfg.EMALongPeriod {
		errs = append(errs, "EMA_SHORT_PERIOD must be less than EMA_LONG_PERIOD")
	}
	if cfg.RSIOverbought <= cfg.RSIOversold || cfg.RSIOverbought > 100 || cfg.RSIOversold < 0 {
		errs = append(errs, "invalid RSI thresholds (RSI_OVERBOUGHT must be > RSI_OVERSOLD, between 0-100)")
	}
	if cfg.Lookback <= cfg.EMALongPeriod || cfg.Lookback <= cfg.RSIPeriod {
		errs = append(errs, "LOOKBACK must exceed the longest indicator period to satisfy warm-up")
	}

	// Classification
	cfg.SignalPolicy = strings.ToLower(getEnv("SIGNAL_POLICY", PolicyCrossover))
	if cfg.SignalPolicy != PolicyThreshold && cfg.SignalPolicy != PolicyCrossover {
		errs = append(errs, fmt.Sprintf("SIGNAL_POLICY must be %q or %q", PolicyThreshold, PolicyCrossover))
	}
	cfg.SwingLookback = getEnvAsInt("SWING_LOOKBACK", 48)
	if cfg.SwingLookback <= 0 {
		errs = append(errs, "SWING_LOOKBACK must be positive")
	}

	// Scanner loop
	pollSeconds := getEnvAsInt("POLL_SECONDS", 300)
	if pollSeconds <= 0 {
		errs = append(errs, "POLL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	// Signal log
	cfg.DBPath = getEnv("DB_PATH", "./data/signals.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrConfiguration, strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
