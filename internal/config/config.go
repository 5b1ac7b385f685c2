package config

import (
	"crypto/rand"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     string
	MySQLDSN string

	// RedisAddr enables the idempotency/alert-dedup cache when set.
	RedisAddr string

	// AMQPURL switches notifications to broker events when set.
	AMQPURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	JWTSecret []byte
	TokenTTL  time.Duration

	AdminUsername string
	AdminPassword string
	AdminEmail    string

	UploadDir string

	// MemoryStore runs without MySQL; data is lost on restart.
	MemoryStore bool
}

func Load() *Config {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		MySQLDSN:      getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/inventory?parseTime=true"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		AMQPURL:       os.Getenv("AMQP_URL"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
		TokenTTL:      time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 30)) * time.Minute,
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@inventory.com"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads/products"),
		MemoryStore:   getEnv("MEMORY_STORE", "false") == "true",
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Warn("JWT_SECRET not set, generating a random key; tokens will be invalid after restart. Set JWT_SECRET in production.")
		cfg.JWTSecret = randomBytes(32)
	} else {
		cfg.JWTSecret = []byte(secret)
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("invalid PORT, falling back to default", "PORT", cfg.Port)
		cfg.Port = "8080"
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer env var, using default", "key", key, "value", raw)
		return fallback
	}
	return value
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to read random bytes", "error", err)
		os.Exit(1)
	}
	return b
}
