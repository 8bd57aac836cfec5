// Package config reads the client configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const prefix = "booknest"

const (
	BackendFirebase = "firebase"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Backend   string `envconfig:"BACKEND" default:"memory" validate:"oneof=firebase postgres memory"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	CachePath string `envconfig:"CACHE_PATH" default:".booknest/storage.json" validate:"required"`

	Firebase    Firebase    `envconfig:"FIREBASE"`
	Postgres    Postgres    `envconfig:"POSTGRES"`
	Local       Local       `envconfig:"LOCAL"`
	OpenLibrary OpenLibrary `envconfig:"OPENLIBRARY"`
}

type Firebase struct {
	APIKey       string        `envconfig:"API_KEY"`
	ProjectID    string        `envconfig:"PROJECT_ID"`
	DatabaseID   string        `envconfig:"DATABASE_ID" default:"(default)"`
	AuthURL      string        `envconfig:"AUTH_URL"`
	FirestoreURL string        `envconfig:"FIRESTORE_URL"`
	RPS          int           `envconfig:"RPS" default:"10" validate:"gte=1"`
	MaxRetries   int           `envconfig:"MAX_RETRIES" default:"2" validate:"gte=0"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"15s" validate:"gt=0"`
}

type Postgres struct {
	DSN     string        `envconfig:"DSN"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"3s" validate:"gt=0"`
}

// Local configures the self-hosted identity provider used with the
// postgres and memory backends.
type Local struct {
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"1h" validate:"gt=0"`
}

type OpenLibrary struct {
	BaseURL   string        `envconfig:"URL" default:"https://openlibrary.org" validate:"url"`
	UserAgent string        `envconfig:"USER_AGENT" default:"booknest/1.0"`
	RPS       int           `envconfig:"RPS" default:"1" validate:"gte=1"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"15s" validate:"gt=0"`
}

var (
	ErrMissingFirebase  = errors.New("firebase backend needs BOOKNEST_FIREBASE_API_KEY and BOOKNEST_FIREBASE_PROJECT_ID")
	ErrMissingDSN       = errors.New("postgres backend needs BOOKNEST_POSTGRES_DSN")
	ErrMissingJWTSecret = errors.New("postgres backend needs BOOKNEST_LOCAL_JWT_SECRET")
)

// LoadEnvFiles reads .env and .env.local from the working directory.
// Variables already set in the environment win.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads the .env files and then the BOOKNEST_* environment.
func Load() (Config, error) {
	LoadEnvFiles()
	return FromEnv()
}

// FromEnv decodes and validates the BOOKNEST_* environment without touching
// any files.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Backend {
	case BackendFirebase:
		if c.Firebase.APIKey == "" || c.Firebase.ProjectID == "" {
			return ErrMissingFirebase
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return ErrMissingDSN
		}
		if c.Local.JWTSecret == "" {
			return ErrMissingJWTSecret
		}
	}
	return nil
}

// MigrationsDir is where cmd/migrate looks for goose files.
func MigrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}
