package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	Extractor ExtractorConfig
	Queue     QueueConfig
	Email     EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for the scan image archive.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExtractorConfig holds vision extraction provider settings.
type ExtractorConfig struct {
	Provider      string `mapstructure:"provider"`
	APIKey        string `mapstructure:"api_key"`
	DefaultModel  string `mapstructure:"default_model"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
	MaxAttempts   int    `mapstructure:"max_attempts"`
	BackoffBaseMS int    `mapstructure:"backoff_base_ms"`
}

// Timeout returns the per-call provider timeout.
func (e *ExtractorConfig) Timeout() time.Duration {
	if e.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(e.TimeoutSecs) * time.Second
}

// BackoffBase returns the initial retry backoff delay.
func (e *ExtractorConfig) BackoffBase() time.Duration {
	if e.BackoffBaseMS <= 0 {
		return time.Second
	}
	return time.Duration(e.BackoffBaseMS) * time.Millisecond
}

// QueueConfig holds scan queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
}

// EmailConfig holds review alert delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ReviewerTo  string `mapstructure:"reviewer_to"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// Load reads configuration from environment variables with the SHELFSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHELFSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "shelfscan")
	v.SetDefault("db.password", "shelfscan_secret")
	v.SetDefault("db.name", "shelfscan_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "shelfscan-scans")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Extractor defaults
	v.SetDefault("extractor.provider", "gemini")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "gemini-2.0-flash")
	v.SetDefault("extractor.timeout_secs", 120)
	v.SetDefault("extractor.max_attempts", 3)
	v.SetDefault("extractor.backoff_base_ms", 1000)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.concurrency", 4)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@shelfscan.io")
	v.SetDefault("email.from_name", "Shelfscan")
	v.SetDefault("email.reviewer_to", "")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "SHELFSCAN_SERVER_PORT",
		"server.read_timeout":       "SHELFSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "SHELFSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":        "SHELFSCAN_SERVER_ENVIRONMENT",
		"db.host":                   "SHELFSCAN_DB_HOST",
		"db.port":                   "SHELFSCAN_DB_PORT",
		"db.user":                   "SHELFSCAN_DB_USER",
		"db.password":               "SHELFSCAN_DB_PASSWORD",
		"db.name":                   "SHELFSCAN_DB_NAME",
		"db.sslmode":                "SHELFSCAN_DB_SSLMODE",
		"db.max_open":               "SHELFSCAN_DB_MAX_OPEN",
		"db.max_idle":               "SHELFSCAN_DB_MAX_IDLE",
		"s3.region":                 "SHELFSCAN_S3_REGION",
		"s3.bucket":                 "SHELFSCAN_S3_BUCKET",
		"s3.endpoint":               "SHELFSCAN_S3_ENDPOINT",
		"s3.access_key":             "SHELFSCAN_S3_ACCESS_KEY",
		"s3.secret_key":             "SHELFSCAN_S3_SECRET_KEY",
		"log.level":                 "SHELFSCAN_LOG_LEVEL",
		"log.format":                "SHELFSCAN_LOG_FORMAT",
		"cors.allowed_origins":      "SHELFSCAN_CORS_ALLOWED_ORIGINS",
		"extractor.provider":        "SHELFSCAN_EXTRACTOR_PROVIDER",
		"extractor.api_key":         "SHELFSCAN_EXTRACTOR_API_KEY",
		"extractor.default_model":   "SHELFSCAN_EXTRACTOR_DEFAULT_MODEL",
		"extractor.timeout_secs":    "SHELFSCAN_EXTRACTOR_TIMEOUT_SECS",
		"extractor.max_attempts":    "SHELFSCAN_EXTRACTOR_MAX_ATTEMPTS",
		"extractor.backoff_base_ms": "SHELFSCAN_EXTRACTOR_BACKOFF_BASE_MS",
		"queue.poll_interval_secs":  "SHELFSCAN_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":         "SHELFSCAN_QUEUE_CONCURRENCY",
		"email.provider":            "SHELFSCAN_EMAIL_PROVIDER",
		"email.region":              "SHELFSCAN_EMAIL_REGION",
		"email.from_address":        "SHELFSCAN_EMAIL_FROM_ADDRESS",
		"email.from_name":           "SHELFSCAN_EMAIL_FROM_NAME",
		"email.reviewer_to":         "SHELFSCAN_EMAIL_REVIEWER_TO",
		"email.frontend_url":        "SHELFSCAN_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SHELFSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SHELFSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Extractor = ExtractorConfig{
		Provider:      v.GetString("extractor.provider"),
		APIKey:        v.GetString("extractor.api_key"),
		DefaultModel:  v.GetString("extractor.default_model"),
		TimeoutSecs:   v.GetInt("extractor.timeout_secs"),
		MaxAttempts:   v.GetInt("extractor.max_attempts"),
		BackoffBaseMS: v.GetInt("extractor.backoff_base_ms"),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ReviewerTo:  v.GetString("email.reviewer_to"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	return cfg, nil
}
