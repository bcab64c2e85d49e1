package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                  "development",
		Port:                 "4000",
		SessionSecret:        "secure-secret-at-least-32-chars-long",
		SessionTTLHours:      24,
		SessionCookie:        "qid",
		DBPassword:           "secure-password",
		DBSSLMode:            "require",
		MediaBackend:         MediaBackendLocal,
		MediaLocalDir:        "./uploads",
		MediaMaxUploadSizeMB: 10,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRejectsDefaultSecretInProduction(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.SessionSecret = defaultSessionSecret

	assert.ErrorContains(t, c.Validate(), "SESSION_SECRET")
}

func TestConfig_ValidateMediaBackend(t *testing.T) {
	c := validConfig()
	c.MediaBackend = MediaBackendS3
	assert.ErrorContains(t, c.Validate(), "S3_BUCKET")

	c.S3Bucket = "media"
	assert.NoError(t, c.Validate())

	c.MediaBackend = "ftp"
	assert.ErrorContains(t, c.Validate(), "unsupported MEDIA_BACKEND")
}

func TestConfig_Durations(t *testing.T) {
	c := validConfig()
	c.MediaURLTTLMinutes = 15

	assert.Equal(t, 24*time.Hour, c.SessionTTL())
	assert.Equal(t, 15*time.Minute, c.MediaURLTTL())
}

func TestLoadConfig_EnvNormalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("MEDIA_BACKEND", " Local ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, MediaBackendLocal, c.MediaBackend)
	assert.Equal(t, "qid", c.SessionCookie)
	assert.Equal(t, "ws_notifications=on", c.FeatureFlags)
}
