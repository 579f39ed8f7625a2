package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver      string
	DBSQLitePath  string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	MigrationsDir string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret        string
	JWTAlgorithm     string
	AccessTokenHours int

	// OpenRouter configuration
	OpenRouterAPIKey string
	OpenRouterAPIURL string
	TextModel        string
	ImageModel       string
	MockMode         bool
	AnalysisTimeout  time.Duration
	RecipeTimeout    time.Duration
	ConnectTimeout   time.Duration

	// CORS
	AllowedOrigins []string

	// Uploads
	MaxImageSize      int64
	AllowedImageTypes []string
	ImageResizeMax    int

	// Usage limits
	MaxRequestsPerDay int

	// Object storage, optional
	S3BucketName string
	AWSRegion    string
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// LoadConfig builds the configuration from .env, environment variables and Docker secrets
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	env := GetEnvironment()
	cfg := &Config{
		Environment: env,

		ServerPort: getEnv("SERVER_PORT", "8000"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBSQLitePath:  getEnv("DB_SQLITE_PATH", "fridgechef.db"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        lookupSecret("DB_USER", "db_user"),
		DBPassword:    lookupSecret("DB_PASSWORD", "db_password"),
		DBName:        getEnv("DB_NAME", "fridgechef"),
		DBSSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),

		RedisURL:      lookupSecret("REDIS_URL", "redis_url"),
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: lookupSecret("REDIS_PASSWORD", "redis_password"),

		JWTSecret:    lookupSecret("JWT_SECRET_KEY", "jwt_secret"),
		JWTAlgorithm: getEnv("JWT_ALGORITHM", "HS256"),

		OpenRouterAPIKey: lookupSecret("OPENROUTER_API_KEY", "openrouter_api_key"),
		OpenRouterAPIURL: getEnv("OPENROUTER_API_URL", "https://openrouter.ai/api/v1/chat/completions"),
		TextModel:        getEnv("TEXT_MODEL", "upstage/solar-pro-3:free"),
		ImageModel:       getEnv("IMAGE_MODEL", "google/gemma-3-12b-it:free"),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
			"http://127.0.0.1:5173",
		}),
		AllowedImageTypes: getEnvList("ALLOWED_IMAGE_TYPES", []string{
			"image/jpeg",
			"image/png",
			"image/jpg",
		}),

		S3BucketName: getEnv("S3_BUCKET_NAME", ""),
		AWSRegion:    getEnv("AWS_REGION", ""),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.AccessTokenHours, err = getEnvInt("ACCESS_TOKEN_EXPIRE_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.MockMode, err = getEnvBool("MOCK_MODE", false); err != nil {
		return nil, err
	}
	if cfg.AnalysisTimeout, err = getEnvDuration("ANALYSIS_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RecipeTimeout, err = getEnvDuration("RECIPE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout, err = getEnvDuration("CONNECT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	maxSize, err := getEnvInt("MAX_IMAGE_SIZE", 10*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxImageSize = int64(maxSize)
	if cfg.ImageResizeMax, err = getEnvInt("IMAGE_RESIZE_MAX", 1024); err != nil {
		return nil, err
	}
	if cfg.MaxRequestsPerDay, err = getEnvInt("MAX_REQUESTS_PER_DAY", 50); err != nil {
		return nil, err
	}

	// Local runs get a throwaway signing key so the server can start without secrets.
	if cfg.JWTSecret == "" && env.AllowsInsecureDefaults() {
		cfg.JWTSecret = "dev-secret-key-change-in-production"
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr returns the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds the lib/pq style connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// AccessTokenTTL is the lifetime of issued access tokens
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenHours) * time.Hour
}

// HasAPIKey reports whether an OpenRouter key is configured
func (c *Config) HasAPIKey() bool {
	return c.OpenRouterAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// lookupSecret prefers the environment variable and falls back to the Docker secret file
func lookupSecret(envKey, secretName string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return readSecret(secretName)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
