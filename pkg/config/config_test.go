package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "i.instagram.com", cfg.APIDomain)
	assert.Equal(t, "https://www.instagram.com/", cfg.PublicURL)
	assert.Equal(t, 25*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 1, cfg.RetriesCount)
	assert.Equal(t, 2*time.Second, cfg.RetriesTimeout)
	assert.Empty(t, cfg.DelayRange)
	assert.NoError(t, cfg.Validate())
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"retries count at cap", func(c *Config) { c.RetriesCount = MaxRetriesCount }, false},
		{"retries count beyond cap", func(c *Config) { c.RetriesCount = MaxRetriesCount + 1 }, true},
		{"negative retries count", func(c *Config) { c.RetriesCount = -1 }, true},
		{"retries timeout at cap", func(c *Config) { c.RetriesTimeout = MaxRetriesTimeout }, false},
		{"retries timeout beyond cap", func(c *Config) { c.RetriesTimeout = MaxRetriesTimeout + time.Second }, true},
		{"valid delay range", func(c *Config) { c.DelayRange = []float64{1, 3} }, false},
		{"inverted delay range", func(c *Config) { c.DelayRange = []float64{3, 1} }, true},
		{"negative delay range", func(c *Config) { c.DelayRange = []float64{-1, 3} }, true},
		{"one-element delay range", func(c *Config) { c.DelayRange = []float64{1} }, true},
		{"empty api domain", func(c *Config) { c.APIDomain = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Proxy = "http://127.0.0.1:8080"
	cfg.DelayRange = []float64{1, 3}
	cfg.RetriesCount = 3
	cfg.Locale = "de_DE"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Proxy, loaded.Proxy)
	assert.Equal(t, cfg.DelayRange, loaded.DelayRange)
	assert.Equal(t, cfg.RetriesCount, loaded.RetriesCount)
	assert.Equal(t, cfg.Locale, loaded.Locale)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGCLIENT_API_DOMAIN", "i.example.com")
	t.Setenv("IGCLIENT_PROXY", "socks5://127.0.0.1:1080")
	t.Setenv("IGCLIENT_RETRIES_COUNT", "5")
	t.Setenv("IGCLIENT_RETRIES_TIMEOUT", "7s")
	t.Setenv("IGCLIENT_DELAY_RANGE", "1,3")
	t.Setenv("IGCLIENT_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, "i.example.com", cfg.APIDomain)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.Proxy)
	assert.Equal(t, 5, cfg.RetriesCount)
	assert.Equal(t, 7*time.Second, cfg.RetriesTimeout)
	assert.Equal(t, []float64{1, 3}, cfg.DelayRange)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("IGCLIENT_RETRIES_COUNT", "many")
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}
