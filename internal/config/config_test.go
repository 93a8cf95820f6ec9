package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StrategyLocal, cfg.Strategy)
	assert.Equal(t, "https://dummyimage.com", cfg.Remote.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 10, cfg.Local.FontDivisor)
	assert.Equal(t, 1, cfg.Local.MinFontSize)
}

func TestLoadConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `
strategy: remote
remote:
  base_url: "http://localhost:9000"
  timeout: 5s
local:
  font_divisor: 8
watch:
  workers: 2
  settle: 100ms
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, StrategyRemote, cfg.Strategy)
	assert.Equal(t, "http://localhost:9000", cfg.Remote.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "eeeeee", cfg.Remote.Background, "unset keys keep defaults")
	assert.Equal(t, 8, cfg.Local.FontDivisor)
	assert.Equal(t, 2, cfg.Watch.Workers)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Settle)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FAKEIMG_STRATEGY", "remote")
	t.Setenv("FAKEIMG_REMOTE_URL", "http://example.test")
	t.Setenv("FAKEIMG_REMOTE_TIMEOUT", "750ms")
	t.Setenv("FAKEIMG_WORKERS", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StrategyRemote, cfg.Strategy)
	assert.Equal(t, "http://example.test", cfg.Remote.BaseURL)
	assert.Equal(t, 750*time.Millisecond, cfg.Remote.Timeout)
	assert.Equal(t, 3, cfg.Watch.Workers)
}

func TestLoadEnvBadNumber(t *testing.T) {
	t.Setenv("FAKEIMG_WORKERS", "many")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown strategy", func(c *Config) { c.Strategy = "magic" }},
		{"zero divisor", func(c *Config) { c.Local.FontDivisor = 0 }},
		{"zero min font", func(c *Config) { c.Local.MinFontSize = 0 }},
		{"quality out of range", func(c *Config) { c.Local.JPEGQuality = 101 }},
		{"no workers", func(c *Config) { c.Watch.Workers = 0 }},
		{"remote without url", func(c *Config) {
			c.Strategy = StrategyRemote
			c.Remote.BaseURL = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")), "missing file is ignored")

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FAKEIMG_TEST_DOTENV=loaded\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("FAKEIMG_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "loaded", os.Getenv("FAKEIMG_TEST_DOTENV"))
}
