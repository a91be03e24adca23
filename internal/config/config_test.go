package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "AUDUSD=X", cfg.DataSource.Symbol)
	assert.Equal(t, "USDAUD (inverted)", cfg.DataSource.InvertedSymbol)
	assert.Equal(t, "audusd", cfg.DataSource.Tag)
	assert.Equal(t, "usdaud", cfg.DataSource.InvertedTag)
	assert.Equal(t, Window{Period: "1d", Interval: "15m", FileTag: "15m"}, cfg.Intraday.Window())
	assert.Equal(t, Window{Period: "2y", Interval: "1d", FileTag: "daily"}, cfg.Daily.Window())
	assert.False(t, cfg.Forecast.Disabled)
	assert.Equal(t, 5, cfg.Forecast.Horizon)
	assert.Equal(t, 30, cfg.Forecast.MinPoints)
	assert.Equal(t, "data", cfg.Output.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
data_source:
  symbol: NZDUSD=X
  tag: nzdusd
  inverted_tag: usdnzd
  inverted_symbol: USDNZD (inverted)
daily:
  period: 1y
  interval: 1d
  file_tag: daily
forecast:
  horizon: 10
output:
  dir: out
`)
	t.Setenv("PAIRFEED_OUTPUT_DIR", "/tmp/feeds")
	t.Setenv("PAIRFEED_HORIZON", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "NZDUSD=X", cfg.DataSource.Symbol)
	assert.Equal(t, "usdnzd", cfg.DataSource.InvertedTag)
	assert.Equal(t, "1y", cfg.Daily.Period)
	assert.Equal(t, "15m", cfg.Intraday.Interval, "unset window keeps its default")
	assert.Equal(t, "/tmp/feeds", cfg.Output.Dir)
	assert.Equal(t, 3, cfg.Forecast.Horizon)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_PartialWindowKeepsFieldDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
intraday:
  period: 5d
daily:
  file_tag: d1
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, Window{Period: "5d", Interval: "15m", FileTag: "15m"}, cfg.Intraday.Window())
	assert.Equal(t, Window{Period: "2y", Interval: "1d", FileTag: "d1"}, cfg.Daily.Window())
}

func TestLoad_BadHorizonEnv(t *testing.T) {
	t.Setenv("PAIRFEED_HORIZON", "five")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAIRFEED_HORIZON")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "data_source: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"same tags", func(c *Config) { c.DataSource.InvertedTag = c.DataSource.Tag }},
		{"zero horizon", func(c *Config) { c.Forecast.Horizon = 0 }},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }},
		{"telegram without chat", func(c *Config) { c.Telegram.BotToken = "token" }},
		{"partial window", func(c *Config) { c.Daily.FileTag = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
