package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, CatalogEmbedded, cfg.Catalog.Source)
	assert.Equal(t, "212665358533", cfg.Checkout.WhatsAppNumber)
	assert.Equal(t, 24*time.Hour, cfg.Session.IdleTTL)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SESSION_STORE", StoreRedis)
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSION_IDLE_TTL", "bogus")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Session.Store)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 24*time.Hour, cfg.Session.IdleTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"SESSION_STORE": "disk"}},
		{"unknown source", map[string]string{"CATALOG_SOURCE": "ftp"}},
		{"file without path", map[string]string{"CATALOG_SOURCE": CatalogFile}},
		{"s3 without bucket", map[string]string{"CATALOG_SOURCE": CatalogS3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
