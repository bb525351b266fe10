package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an optional YAML file layered between defaults and env.
const ConfigPathEnvVar = "CONFIG_PATH"

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	GO_ENV       string `koanf:"go_env"`
	PORT         int    `koanf:"port"`
	DB_USER_NAME string `koanf:"db_user_name"`
	DB_PASSWORD  string `koanf:"db_password"`
	DB_NAME      string `koanf:"db_name"`
	DB_HOST      string `koanf:"db_host"`
	DB_PORT      string `koanf:"db_port"`
	DB_SSL_MODE  string `koanf:"db_ssl_mode"`
	// JWT Configuration
	JWT_SECRET string        `koanf:"jwt_secret"`
	JWT_ISSUER string        `koanf:"jwt_issuer"`
	JWT_EXPIRY time.Duration `koanf:"jwt_expiry"`
	// Uploads: files land in PUBLIC_DIR, clients read them from UPLOAD_BASE_URL
	PUBLIC_DIR      string `koanf:"public_dir"`
	UPLOAD_BASE_URL string `koanf:"upload_base_url"`
	// Redis Configuration
	REDIS_URL string        `koanf:"redis_url"`
	CACHE_TTL time.Duration `koanf:"cache_ttl"`
	// S3-compatible mirror for uploaded files
	SPACES_ACCESS_KEY string `koanf:"spaces_access_key"`
	SPACES_SECRET_KEY string `koanf:"spaces_secret_key"`
	SPACES_BUCKET     string `koanf:"spaces_bucket"`
	SPACES_REGION     string `koanf:"spaces_region"`
	SPACES_ENDPOINT   string `koanf:"spaces_endpoint"`
	SPACES_CDN_URL    string `koanf:"spaces_cdn_url"`
	// Scheduling
	CRON_ENABLED      bool          `koanf:"cron_enabled"`
	ARCHIVE_RETENTION time.Duration `koanf:"archive_retention"`
	// HTTP
	ALLOWED_ORIGINS     string `koanf:"allowed_origins"`
	RATE_LIMIT_REQUESTS int    `koanf:"rate_limit_requests"`
	// Logging
	LOG_LEVEL  string `koanf:"log_level"`
	LOG_FORMAT string `koanf:"log_format"`
}

func defaults() EnviornmentVariable {
	return EnviornmentVariable{
		GO_ENV:              "development",
		PORT:                8080,
		DB_HOST:             "localhost",
		DB_PORT:             "5432",
		DB_SSL_MODE:         "disable",
		JWT_ISSUER:          "campus-events-api",
		JWT_EXPIRY:          24 * time.Hour,
		PUBLIC_DIR:          "public",
		UPLOAD_BASE_URL:     "http://localhost:8080",
		REDIS_URL:           "redis://localhost:6379/0",
		CACHE_TTL:           5 * time.Minute,
		CRON_ENABLED:        true,
		ALLOWED_ORIGINS:     "http://localhost:3000",
		RATE_LIMIT_REQUESTS: 100,
		LOG_LEVEL:           "info",
		LOG_FORMAT:          "json",
	}
}

// Get builds the configuration from struct defaults, an optional YAML file and
// finally the process environment, in increasing priority.
func Get() (*EnviornmentVariable, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// DB_HOST -> db_host
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	envVariables := &EnviornmentVariable{}
	if err := k.Unmarshal("", envVariables); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return envVariables, nil
}

// Validate checks the settings the server cannot start without
func (e *EnviornmentVariable) Validate() error {
	if e.JWT_SECRET == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}
	if e.PUBLIC_DIR == "" {
		return errors.New("PUBLIC_DIR must not be empty")
	}
	return nil
}

// IsProduction reports whether GO_ENV is production
func (e *EnviornmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

// SpacesConfigured reports whether the S3 mirror has enough settings to run
func (e *EnviornmentVariable) SpacesConfigured() bool {
	return e.SPACES_BUCKET != "" && e.SPACES_REGION != "" &&
		e.SPACES_ACCESS_KEY != "" && e.SPACES_SECRET_KEY != ""
}
