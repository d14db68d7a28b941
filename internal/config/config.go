package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// MongoDB configuration
	MongoURI            string `json:"mongo_uri"`
	MongoDatabase       string `json:"mongo_database"`
	CandidateCollection string `json:"mongo_candidate_collection"`

	// Redis configuration
	RedisURI      string `json:"redis_uri"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// Scheduler configuration
	TickInterval          time.Duration `json:"tick_interval"`
	TickParallelism       int           `json:"tick_parallelism"`
	ReminderRetryInterval time.Duration `json:"reminder_retry_interval"`
	CandidateLockTTL      time.Duration `json:"candidate_lock_ttl"`

	// Document folder storage (S3-compatible)
	S3Bucket        string `json:"s3_bucket"`
	S3Region        string `json:"s3_region"`
	S3Endpoint      string `json:"s3_endpoint"`
	S3AccessKey     string `json:"s3_access_key"`
	S3SecretKey     string `json:"s3_secret_key"`
	S3BrowseBaseURL string `json:"s3_browse_base_url"`

	// Mail gateway configuration
	MailGatewayBaseURL  string `json:"mail_gateway_base_url"`
	MailGatewayUsername string `json:"mail_gateway_username"`
	MailGatewayPassword string `json:"mail_gateway_password"`
	MailFromAddress     string `json:"mail_from_address"`
	OperatorEmail       string `json:"operator_email"`

	// Required-document configuration, resolved once at startup and
	// frozen per candidate at provisioning time.
	Documents *DocumentConfig `json:"documents"`

	// Tracing configuration
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables. Any
// configuration error returned here is fatal at startup.
func LoadConfig() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	tickInterval, err := time.ParseDuration(getEnvOrDefault("TICK_INTERVAL", "5m"))
	if err != nil {
		return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
	}

	tickParallelism, err := strconv.Atoi(getEnvOrDefault("TICK_PARALLELISM", "4"))
	if err != nil {
		return fmt.Errorf("invalid TICK_PARALLELISM: %w", err)
	}
	if tickParallelism < 1 {
		return fmt.Errorf("TICK_PARALLELISM must be at least 1")
	}

	reminderInterval, err := time.ParseDuration(getEnvOrDefault("REMINDER_RETRY_INTERVAL", "24h"))
	if err != nil {
		return fmt.Errorf("invalid REMINDER_RETRY_INTERVAL: %w", err)
	}
	if reminderInterval <= 0 {
		return fmt.Errorf("REMINDER_RETRY_INTERVAL must be positive")
	}

	lockTTL, err := time.ParseDuration(getEnvOrDefault("CANDIDATE_LOCK_TTL", "5m"))
	if err != nil {
		return fmt.Errorf("invalid CANDIDATE_LOCK_TTL: %w", err)
	}

	s3Bucket := os.Getenv("S3_BUCKET")
	if s3Bucket == "" {
		return fmt.Errorf("S3_BUCKET environment variable is required")
	}

	mailGatewayURL := os.Getenv("MAIL_GATEWAY_BASE_URL")
	if mailGatewayURL == "" {
		return fmt.Errorf("MAIL_GATEWAY_BASE_URL environment variable is required")
	}

	documents, err := LoadDocumentConfig(os.Getenv("DOCUMENT_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("invalid document configuration: %w", err)
	}

	AppConfig = &Config{
		// Server configuration
		Port:        port,
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// MongoDB configuration
		MongoURI:            getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnvOrDefault("MONGODB_DATABASE", "onboarding"),
		CandidateCollection: getEnvOrDefault("MONGODB_CANDIDATE_COLLECTION", "candidates"),

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		// Scheduler configuration
		TickInterval:          tickInterval,
		TickParallelism:       tickParallelism,
		ReminderRetryInterval: reminderInterval,
		CandidateLockTTL:      lockTTL,

		// Document folder storage
		S3Bucket:        s3Bucket,
		S3Region:        getEnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:      getEnvOrDefault("S3_ENDPOINT", ""),
		S3AccessKey:     getEnvOrDefault("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnvOrDefault("S3_SECRET_KEY", ""),
		S3BrowseBaseURL: getEnvOrDefault("S3_BROWSE_BASE_URL", ""),

		// Mail gateway configuration
		MailGatewayBaseURL:  mailGatewayURL,
		MailGatewayUsername: getEnvOrDefault("MAIL_GATEWAY_USERNAME", ""),
		MailGatewayPassword: getEnvOrDefault("MAIL_GATEWAY_PASSWORD", ""),
		MailFromAddress:     getEnvOrDefault("MAIL_FROM_ADDRESS", "hr@hireflow.dev"),
		OperatorEmail:       getEnvOrDefault("OPERATOR_EMAIL", ""),

		Documents: documents,

		// Tracing configuration
		TracingEnabled:  getEnvOrDefault("TRACING_ENABLED", "false") == "true",
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
