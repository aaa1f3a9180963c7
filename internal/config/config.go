package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Auth0
	Auth0Domain   string
	Auth0Audience string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// S3 upload archive
	S3 S3Config

	// Training service
	Training TrainingConfig

	// Imports
	DocumentPolicy domain.DocumentPolicy
	MaxUploadBytes int64

	// Rate limiting of import and training routes, per owner
	RateLimitPerMinute int
	RateLimitBurst     int

	// Live workspace feed
	WebSocketEnabled bool
	EventRetention   time.Duration
}

// S3Config holds AWS S3 configuration. An empty Bucket disables archiving.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// TrainingConfig holds the endpoints of the external training service
type TrainingConfig struct {
	TrainURL      string
	TrainMethod   string
	MetricsURL    string
	MetricsMethod string
	HostHeader    string
	Timeout       time.Duration
}

var allowedTrainingMethods = map[string]bool{
	http.MethodGet:   true,
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("TRAINING_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("TRAINING_TIMEOUT is invalid: %w", err)
	}
	policy, err := domain.ParseDocumentPolicy(getEnv("DOCUMENT_POLICY", string(domain.DocumentPolicyReplace)))
	if err != nil {
		return nil, fmt.Errorf("DOCUMENT_POLICY is invalid: %w", err)
	}
	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES is invalid: %w", err)
	}
	perMinute, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "30"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE is invalid: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST is invalid: %w", err)
	}
	wsEnabled, err := strconv.ParseBool(getEnv("WS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("WS_ENABLED is invalid: %w", err)
	}
	retention, err := time.ParseDuration(getEnv("WS_EVENT_RETENTION", "10m"))
	if err != nil {
		return nil, fmt.Errorf("WS_EVENT_RETENTION is invalid: %w", err)
	}

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:           getEnv("ENV", "development"),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
		Training: TrainingConfig{
			TrainURL:      getEnv("TRAIN_ENDPOINT_URL", "http://localhost:8000/train"),
			TrainMethod:   strings.ToUpper(getEnv("TRAIN_ENDPOINT_METHOD", http.MethodPost)),
			MetricsURL:    getEnv("METRICS_ENDPOINT_URL", "http://localhost:8000/metrics"),
			MetricsMethod: strings.ToUpper(getEnv("METRICS_ENDPOINT_METHOD", http.MethodPost)),
			HostHeader:    getEnv("TRAINING_HOST_HEADER", "api.clasifica.io.localhost"),
			Timeout:       timeout,
		},
		DocumentPolicy:     policy,
		MaxUploadBytes:     maxUpload,
		RateLimitPerMinute: perMinute,
		RateLimitBurst:     burst,
		WebSocketEnabled:   wsEnabled,
		EventRetention:     retention,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if !allowedTrainingMethods[c.Training.TrainMethod] {
		return fmt.Errorf("TRAIN_ENDPOINT_METHOD %q is not allowed", c.Training.TrainMethod)
	}
	if !allowedTrainingMethods[c.Training.MetricsMethod] {
		return fmt.Errorf("METRICS_ENDPOINT_METHOD %q is not allowed", c.Training.MetricsMethod)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("TRAINING_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	if c.EventRetention < 0 {
		return fmt.Errorf("WS_EVENT_RETENTION must not be negative")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
