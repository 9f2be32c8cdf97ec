package config

import (
	"os"
	"time"
)

// Config carries all runtime settings. It is built once in main and handed to
// components at construction time; nothing re-reads the environment after
// startup except the JWT helper at the HTTP boundary.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string

	// Optional. Idempotency middleware is mounted only when RedisAddr is set.
	RedisAddr     string
	RedisPassword string

	// Base URL embedded in registration links sent to approved vendors.
	FrontendBaseURL string

	TemplatesDir string

	RegistrationTokenTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port: getenv("PORT", "8080"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "postgres"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		SMTPHost: getenv("SMTP_HOST", ""),
		SMTPPort: getenv("SMTP_PORT", "587"),
		SMTPUser: getenv("SMTP_USER", ""),
		SMTPPass: getenv("SMTP_PASS", ""),

		TwilioAccountSID:     getenv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getenv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber:    getenv("TWILIO_PHONE_NUMBER", ""),
		TwilioWhatsAppNumber: getenv("TWILIO_WHATSAPP_NUMBER", ""),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		FrontendBaseURL: getenv("FRONTEND_BASE_URL", "http://localhost:5173"),

		TemplatesDir: getenv("TEMPLATES_DIR", "templates"),

		RegistrationTokenTTL: getdur("REGISTRATION_TOKEN_TTL", 168*time.Hour),
	}
}

// DSN assembles the PostgreSQL connection string
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort +
		"/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getdur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return d
}
