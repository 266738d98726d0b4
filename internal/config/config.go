package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the full runtime configuration for the risk monitor and
// the order executor. Values come from the environment (optionally via a
// .env file loaded by the entrypoints).
type Config struct {
	Environment string

	Alpaca struct {
		APIKey    string
		SecretKey string
		Paper     bool
	}

	Risk struct {
		TrailPct     float64       // trailing stop offset from the extreme price
		HardStopPct  float64       // fixed stop offset from the entry price
		DataFile     string        // persisted risk record store
		PassInterval time.Duration // cadence of the monitoring loop
	}

	Execution struct {
		CashBufferPct float64 // fraction of cash/qty held back on BUY and COVER
		DecisionsFile string  // upstream decision batch (JSON)
		AuditDir      string  // xlsx audit output directory
	}

	Monitoring struct {
		PrometheusPort int
		HealthPort     int
	}

	Notifications struct {
		TelegramToken  string
		TelegramChatID string
	}
}

// Load reads configuration from the environment, applying defaults that
// match the paper-trading setup.
func Load() *Config {
	cfg := &Config{
		Environment: getEnv("ENV", "development"),
	}

	cfg.Alpaca.APIKey = getEnv("ALPACA_API_KEY", "")
	cfg.Alpaca.SecretKey = getEnv("ALPACA_SECRET_KEY", "")
	cfg.Alpaca.Paper = getEnvBool("ALPACA_PAPER", true)

	cfg.Risk.TrailPct = getEnvFloat("TRAIL_PCT", 0.05)
	cfg.Risk.HardStopPct = getEnvFloat("HARD_STOP_PCT", 0.08)
	cfg.Risk.DataFile = getEnv("RISK_DATA_FILE", "database/risk_data.json")
	cfg.Risk.PassInterval = getEnvDuration("MONITOR_INTERVAL", 5*time.Minute)

	cfg.Execution.CashBufferPct = getEnvFloat("CASH_BUFFER_PCT", 0.05)
	cfg.Execution.DecisionsFile = getEnv("DECISIONS_FILE", "database/decisions.json")
	cfg.Execution.AuditDir = getEnv("AUDIT_DIR", "database")

	cfg.Monitoring.PrometheusPort = getEnvInt("PROMETHEUS_PORT", 8080)
	cfg.Monitoring.HealthPort = getEnvInt("HEALTH_PORT", 8081)

	cfg.Notifications.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.Notifications.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")

	return cfg
}

// Validate checks that the configuration is usable for live operation.
func (c *Config) Validate() error {
	if c.Alpaca.APIKey == "" || c.Alpaca.SecretKey == "" {
		return fmt.Errorf("ALPACA_API_KEY and ALPACA_SECRET_KEY are required")
	}
	if c.Risk.TrailPct <= 0 || c.Risk.TrailPct >= 1 {
		return fmt.Errorf("TRAIL_PCT must be in (0, 1), got %.4f", c.Risk.TrailPct)
	}
	if c.Risk.HardStopPct <= 0 || c.Risk.HardStopPct >= 1 {
		return fmt.Errorf("HARD_STOP_PCT must be in (0, 1), got %.4f", c.Risk.HardStopPct)
	}
	if c.Execution.CashBufferPct < 0 || c.Execution.CashBufferPct >= 1 {
		return fmt.Errorf("CASH_BUFFER_PCT must be in [0, 1), got %.4f", c.Execution.CashBufferPct)
	}
	if c.Risk.PassInterval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
