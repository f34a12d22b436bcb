package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.JWTExpiresMinutes)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 60, cfg.LoginWindowSeconds)
	assert.Equal(t, []string{"en", "ua", "ru"}, cfg.SupportedLanguages)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.False(t, cfg.OTLPInsecure)
}

func TestLoadTelemetryKeys(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	cfg := Load()

	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.True(t, cfg.OTLPInsecure)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_EXPIRES_MINUTES", "30")
	t.Setenv("SUPPORTED_LANGUAGES", "de, fr ,en")
	t.Setenv("DEFAULT_LANGUAGE", "fr")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30, cfg.JWTExpiresMinutes)
	assert.Equal(t, []string{"de", "fr", "en"}, cfg.SupportedLanguages)
	assert.Equal(t, "fr", cfg.DefaultLanguage)
	assert.True(t, cfg.IsProduction())
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRES_MINUTES", "not-a-number")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "")

	cfg := Load()

	assert.Equal(t, 15, cfg.JWTExpiresMinutes)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
}

func TestDefaultLanguageMustBeSupported(t *testing.T) {
	t.Setenv("SUPPORTED_LANGUAGES", "de,fr")
	t.Setenv("DEFAULT_LANGUAGE", "ru")

	cfg := Load()

	assert.Equal(t, "en", cfg.DefaultLanguage)
}
