package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "mongo", cfg.StorageDriver)
	assert.Equal(t, "direct", cfg.NotifyMode)
	assert.Equal(t, 10*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.ExposeErrorDetail())
	assert.False(t, cfg.SMTPEnabled())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("ENV", "production")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("NOTIFY_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.ExposeErrorDetail())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"driver":   {"STORAGE_DRIVER": "cassandra"},
		"postgres": {"STORAGE_DRIVER": "postgres"},
		"timezone": {"TIMEZONE": "Mars/Olympus"},
		"mode":     {"NOTIFY_MODE": "pigeon"},
		"queue":    {"NOTIFY_MODE": "queue"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestExposeErrorDetailOnlyInDevelopment(t *testing.T) {
	cases := map[string]bool{
		"development": true,
		"staging":     false,
		"test":        false,
		"production":  false,
	}
	for env, want := range cases {
		cfg := &Config{Env: env}
		assert.Equal(t, want, cfg.ExposeErrorDetail(), env)
	}
}
