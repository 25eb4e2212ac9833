package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PTO_PORT", "PTO_DB_PATH", "PTO_ALLOW_BALANCE_OVERRIDE",
		"PTO_HOURS_PER_DAY", "PTO_ACCRUAL_HOURS_MONTHLY",
		"PTO_API_BASE_URL", "PTO_AGENT_MODEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "pto.db", cfg.DBPath)
	assert.False(t, cfg.AllowBalanceOverride)
	assert.Equal(t, "8", cfg.HoursPerDay.String())
	assert.Equal(t, "10", cfg.MonthlyAccrualHours.String())
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PTO_PORT", "9090")
	t.Setenv("PTO_DB_PATH", "/tmp/test.db")
	t.Setenv("PTO_ALLOW_BALANCE_OVERRIDE", "true")
	t.Setenv("PTO_HOURS_PER_DAY", "7.5")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.True(t, cfg.AllowBalanceOverride)
	assert.Equal(t, "7.5", cfg.HoursPerDay.String())
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("PTO_PORT", "not-a-port")
	t.Setenv("PTO_HOURS_PER_DAY", "eight")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "8", cfg.HoursPerDay.String())
}
