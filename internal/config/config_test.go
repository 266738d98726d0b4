package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults checks the paper-trading defaults.
func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.True(t, cfg.Alpaca.Paper)
	assert.Equal(t, 0.05, cfg.Risk.TrailPct)
	assert.Equal(t, 0.08, cfg.Risk.HardStopPct)
	assert.Equal(t, 0.05, cfg.Execution.CashBufferPct)
	assert.Equal(t, 5*time.Minute, cfg.Risk.PassInterval)
}

// TestLoad_EnvironmentOverrides checks env vars win over defaults.
func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TRAIL_PCT", "0.03")
	t.Setenv("HARD_STOP_PCT", "0.10")
	t.Setenv("MONITOR_INTERVAL", "1m")
	t.Setenv("ALPACA_PAPER", "false")

	cfg := Load()

	assert.Equal(t, 0.03, cfg.Risk.TrailPct)
	assert.Equal(t, 0.10, cfg.Risk.HardStopPct)
	assert.Equal(t, time.Minute, cfg.Risk.PassInterval)
	assert.False(t, cfg.Alpaca.Paper)
}

// TestLoad_GarbageValuesFallBack checks unparseable values keep defaults.
func TestLoad_GarbageValuesFallBack(t *testing.T) {
	t.Setenv("TRAIL_PCT", "five percent")
	t.Setenv("MONITOR_INTERVAL", "whenever")

	cfg := Load()

	assert.Equal(t, 0.05, cfg.Risk.TrailPct)
	assert.Equal(t, 5*time.Minute, cfg.Risk.PassInterval)
}

// TestValidate checks the live-operation guardrails.
func TestValidate(t *testing.T) {
	t.Setenv("ALPACA_API_KEY", "key")
	t.Setenv("ALPACA_SECRET_KEY", "secret")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	cfg.Risk.TrailPct = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Execution.CashBufferPct = -0.1
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Alpaca.APIKey = ""
	assert.Error(t, cfg.Validate())
}
