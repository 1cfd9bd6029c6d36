package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Env             string        `validate:"oneof=development production test"`
	ServerPort      int           `validate:"min=1,max=65535"`
	DatabaseDriver  string        `validate:"oneof=sqlite postgres"`
	DatabaseURL     string        `validate:"required"`
	JWTSecret       string        `validate:"required,min=32"`
	ClientOrigin    string        `validate:"omitempty,url"`
	BcryptCost      int           `validate:"min=4,max=31"`
	LogLevel        string        `validate:"oneof=trace debug info warn error fatal panic disabled"`
	RateLimitMax    int           `validate:"min=1"`
	RateLimitWindow time.Duration `validate:"min=1s"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file, then builds the configuration from the
// process environment.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load()
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds the configuration from the given lookup function, applying
// defaults and validating the result.
func LoadFrom(lookup func(string) (string, bool)) (*Config, error) {
	getEnv := func(key, fallback string) string {
		if value, exists := lookup(key); exists && value != "" {
			return value
		}
		return fallback
	}

	port, err := strconv.Atoi(getEnv("PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		return nil, fmt.Errorf("BCRYPT_COST: %w", err)
	}
	rateMax, err := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "200"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_MAX: %w", err)
	}
	rateWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err)
	}

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	defaultURL := ""
	if driver == "sqlite" {
		defaultURL = "./itemdesk.db"
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		ServerPort:      port,
		DatabaseDriver:  driver,
		DatabaseURL:     getEnv("DATABASE_URL", defaultURL),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		ClientOrigin:    getEnv("CLIENT_ORIGIN", ""),
		BcryptCost:      cost,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RateLimitMax:    rateMax,
		RateLimitWindow: rateWindow,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
