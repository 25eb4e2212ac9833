// Package config loads server and agent configuration from the environment.
//
// A .env file is honored when present; every value has a sensible default
// so `go run ./cmd/server` works with no setup.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Config is the full runtime configuration.
type Config struct {
	// HTTP server
	Port   int
	DBPath string

	// When true, the insufficient-balance check on PTO requests is
	// advisory: violations are logged and the balance may go negative.
	AllowBalanceOverride bool

	// Working-time policy
	HoursPerDay         decimal.Decimal
	MonthlyAccrualHours decimal.Decimal

	// Agent
	APIBaseURL  string
	GeminiModel string
}

// Load reads configuration from the environment, loading .env first if
// one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not load .env file")
	}

	return &Config{
		Port:                 getEnvAsInt("PTO_PORT", 8080),
		DBPath:               getEnv("PTO_DB_PATH", "pto.db"),
		AllowBalanceOverride: getEnvAsBool("PTO_ALLOW_BALANCE_OVERRIDE", false),
		HoursPerDay:          getEnvAsDecimal("PTO_HOURS_PER_DAY", decimal.NewFromInt(8)),
		MonthlyAccrualHours:  getEnvAsDecimal("PTO_ACCRUAL_HOURS_MONTHLY", decimal.NewFromInt(10)),
		APIBaseURL:           getEnv("PTO_API_BASE_URL", "http://localhost:8080"),
		GeminiModel:          getEnv("PTO_AGENT_MODEL", "gemini-2.0-flash"),
	}
}

// getEnv treats empty-but-set variables as unset.
func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(name string, defaultVal int) int {
	if val, err := strconv.Atoi(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	if val, err := strconv.ParseBool(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDecimal(name string, defaultVal decimal.Decimal) decimal.Decimal {
	if val, err := decimal.NewFromString(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}
