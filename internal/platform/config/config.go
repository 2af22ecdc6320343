package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config captures everything main needs to wire the service.
type Config struct {
	Addr          string
	DatabaseDSN   string
	RedisURL      string
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
	UploadDir     string
}

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() Config {
	_ = godotenv.Load()

	addr := os.Getenv("MATCHPORT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	uploadDir := os.Getenv("MATCHPORT_UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	tokenTTL := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			tokenTTL = d
		}
	}

	return Config{
		Addr:          addr,
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     "matchport",
		TokenTTL:      tokenTTL,
		UploadDir:     uploadDir,
	}
}
