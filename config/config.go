package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	EventsTable        string
	UsersTable         string
	RegistrationsTable string
	AssetsBucket       string

	MailProvider    string
	MailFromAddress string
	MailFromName    string

	JWTSecret   string
	TokenExpiry time.Duration

	RequestTimeout time.Duration
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production the .env file usually does not exist; rely on system
	// environment variables instead.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:        env,
		Port:               getEnv("PORT", "8080"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		EventsTable:        getEnv("EVENTS_TABLE", "eventdesk-events"),
		UsersTable:         getEnv("USERS_TABLE", "eventdesk-users"),
		RegistrationsTable: getEnv("REGISTRATIONS_TABLE", "eventdesk-registrations"),
		AssetsBucket:       getEnv("ASSETS_BUCKET", "eventdesk-assets"),
		MailProvider:       getEnv("MAIL_PROVIDER", "noop"),
		MailFromAddress:    getEnv("MAIL_FROM_ADDRESS", "no-reply@eventdesk.local"),
		MailFromName:       getEnv("MAIL_FROM_NAME", "Eventdesk"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-do-not-use-in-production"),
		TokenExpiry:        getDuration("TOKEN_EXPIRY", 24*time.Hour),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 10*time.Second),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Warning: invalid duration for %s: %v, using default", key, err)
		return fallback
	}
	return d
}
