package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         string `env:"PORT" envDefault:"8585"`
	DBPath       string `env:"DB_PATH" envDefault:"./portfolio.db"`
	CookieDomain string `env:"COOKIE_DOMAIN"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"debug"`

	// Base64 encoded; random keys are generated when missing.
	CSRFKeyB64    string `env:"CSRF_KEY"`
	SessionKeyB64 string `env:"SESSION_KEY"`
	CSRFKey       []byte
	SessionKey    []byte

	// AdminPassword is either the plain passcode or a bcrypt hash of it.
	AdminPassword string `env:"ADMIN_PASSWORD"`

	EmailJSEndpoint   string `env:"EMAILJS_ENDPOINT" envDefault:"https://api.emailjs.com/api/v1.0/email/send"`
	EmailJSServiceID  string `env:"EMAILJS_SERVICE_ID"`
	EmailJSTemplateID string `env:"EMAILJS_TEMPLATE_ID"`
	EmailJSPublicKey  string `env:"EMAILJS_PUBLIC_KEY"`

	CarouselInterval time.Duration `env:"CAROUSEL_INTERVAL" envDefault:"4s"`
}

// LoadConfig reads .env files (if any) and then the process environment.
// Variables already set in the environment win over .env values.
func LoadConfig(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
			slog.Debug("No dotenv file", "file", f)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.CSRFKey = decodeKey("CSRF_KEY", cfg.CSRFKeyB64)
	cfg.SessionKey = decodeKey("SESSION_KEY", cfg.SessionKeyB64)

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", cfg.Port)
		cfg.Port = "8585"
	}

	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD not set. The admin panel cannot be unlocked.")
	}
	if cfg.EmailJSServiceID == "" || cfg.EmailJSTemplateID == "" || cfg.EmailJSPublicKey == "" {
		slog.Warn("EmailJS identifiers incomplete. Contact form submissions will fail.")
	}
	if cfg.CarouselInterval <= 0 {
		cfg.CarouselInterval = 4 * time.Second
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to debug.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelDebug
}

func decodeKey(name, value string) []byte {
	if value == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return GenerateKey(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes). Generating a random key for development. PLEASE SET A SECURE " + name + " IN PRODUCTION!")
		return GenerateKey(32)
	}
	return decoded
}

// GenerateKey returns n random bytes from crypto/rand.
func GenerateKey(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform is broken.
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return b
}
