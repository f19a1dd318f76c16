package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string
	JWTTTL    time.Duration

	CloudinaryUploadFolder string

	ApplySubmitCooldown time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "jobmarket_jobs"),
	}

	var err error
	cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.ApplySubmitCooldown, err = time.ParseDuration(getEnv("APPLY_SUBMIT_COOLDOWN", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid APPLY_SUBMIT_COOLDOWN: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
