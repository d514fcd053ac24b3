package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("CSRF_KEY", testSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.GoEnv)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 20*time.Second, cfg.IndexCacheTTL)
	assert.Equal(t, "/media/", cfg.MediaURL)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxSize)
	assert.True(t, cfg.CSRFEnabled)
	assert.Empty(t, cfg.TrustedProxies)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsPostgres())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_TrustedProxies(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.1, ,192.168.0.0/16 ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.TrustedProxies)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	t.Run("bad int", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "eighty")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("INDEX_CACHE_TTL", "soon")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("bad bool", func(t *testing.T) {
		t.Setenv("CSRF_ENABLED", "maybe")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:      8000,
			LogLevel:      "info",
			SessionSecret: testSecret,
			CSRFEnabled:   true,
			CSRFKey:       testSecret,
			PageSize:      10,
			IndexCacheTTL: 20 * time.Second,
			UploadMaxSize: 1024,
			MediaURL:      "/media/",
		}
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port out of range", func(c *Config) { c.HTTPPort = 70000 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
		{"short secret", func(c *Config) { c.SessionSecret = "short" }},
		{"csrf key length", func(c *Config) { c.CSRFKey = "abc" }},
		{"zero page size", func(c *Config) { c.PageSize = 0 }},
		{"media url", func(c *Config) { c.MediaURL = "media" }},
		{"media url at root", func(c *Config) { c.MediaURL = "/" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestIsPostgres(t *testing.T) {
	tests := map[string]bool{
		"postgres://u:p@localhost:5432/yatube": true,
		"postgresql://localhost/yatube":        true,
		"host=localhost user=u dbname=yatube":  true,
		"yatube.db":                            false,
		"file:test?mode=memory&cache=shared":   false,
	}
	for dsn, want := range tests {
		cfg := &Config{DatabaseURL: dsn}
		assert.Equal(t, want, cfg.IsPostgres(), dsn)
	}
}
