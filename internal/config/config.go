package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret         string
	JWTExpiresMinutes int

	LoginMaxAttempts   int
	LoginWindowSeconds int
	RedisAddr          string

	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	Environment string

	SupportedLanguages []string
	DefaultLanguage    string

	UploadDir      string
	MaxUploadBytes int64

	OTLPEndpoint string
	OTLPInsecure bool
}

func Load() Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cfg := Config{
		Port:        port,
		DatabaseURL: os.Getenv("DB_DSN"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTExpiresMinutes: readInt("JWT_EXPIRES_MINUTES", 15),

		LoginMaxAttempts:   readInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindowSeconds: readInt("LOGIN_WINDOW_SECONDS", 60),
		RedisAddr:          os.Getenv("REDIS_ADDR"),

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),

		Environment: readString("ENVIRONMENT", "development"),

		SupportedLanguages: readList("SUPPORTED_LANGUAGES", []string{"en", "ua", "ru"}),
		DefaultLanguage:    readString("DEFAULT_LANGUAGE", "en"),

		UploadDir:      readString("UPLOAD_DIR", "data/uploads"),
		MaxUploadBytes: readInt64("MAX_UPLOAD_BYTES", 5<<20),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure: readBool("OTEL_EXPORTER_OTLP_INSECURE", false),
	}

	if !contains(cfg.SupportedLanguages, cfg.DefaultLanguage) {
		cfg.DefaultLanguage = "en"
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func readString(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func readList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
