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
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Log    LogConfig
	OCR    OCRConfig
	Eval   EvalConfig
	Batch  BatchConfig
	CORS   CORSConfig
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

// S3Config holds settings for the bucket of original document scans.
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

// ProviderConfig holds settings for a single OCR/extraction provider.
type ProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	MaxRetries  int    `mapstructure:"max_retries"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// OCRConfig holds the OCR/extraction collaborator settings.
type OCRConfig struct {
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary provider config, or nil if unset.
func (o *OCRConfig) SecondaryConfig() *ProviderConfig {
	if o.Secondary.Provider != "" {
		return &o.Secondary
	}
	return nil
}

// EvalConfig holds evaluation engine settings.
type EvalConfig struct {
	SizeBudgetBytes  int     `mapstructure:"size_budget_bytes"`
	MaxErrorFraction float64 `mapstructure:"max_error_fraction"`
	GroundTruthDir   string  `mapstructure:"ground_truth_dir"`
	WordlistPath     string  `mapstructure:"wordlist_path"`
	ModelPath        string  `mapstructure:"model_path"`
	TokenizerPath    string  `mapstructure:"tokenizer_path"`
	OrtLibraryPath   string  `mapstructure:"ort_library_path"`
	MaxModelTokens   int     `mapstructure:"max_model_tokens"`
}

// BatchConfig holds batch evaluation settings.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the SCANSCORE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCANSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "scanscore")
	v.SetDefault("db.password", "scanscore_secret")
	v.SetDefault("db.name", "scanscore_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "scanscore-documents")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// OCR provider defaults
	v.SetDefault("ocr.primary.provider", "gemini")
	v.SetDefault("ocr.primary.api_key", "")
	v.SetDefault("ocr.primary.model", "gemini-1.5-flash")
	v.SetDefault("ocr.primary.max_retries", 2)
	v.SetDefault("ocr.primary.timeout_secs", 120)
	v.SetDefault("ocr.secondary.provider", "")
	v.SetDefault("ocr.secondary.api_key", "")
	v.SetDefault("ocr.secondary.model", "")
	v.SetDefault("ocr.secondary.max_retries", 2)
	v.SetDefault("ocr.secondary.timeout_secs", 120)

	// Eval defaults
	v.SetDefault("eval.size_budget_bytes", 4_000_000)
	v.SetDefault("eval.max_error_fraction", 0.1)
	v.SetDefault("eval.ground_truth_dir", "")
	v.SetDefault("eval.wordlist_path", "")
	v.SetDefault("eval.model_path", "")
	v.SetDefault("eval.tokenizer_path", "")
	v.SetDefault("eval.ort_library_path", "")
	v.SetDefault("eval.max_model_tokens", 512)

	// Batch defaults
	v.SetDefault("batch.concurrency", 4)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "SCANSCORE_SERVER_PORT",
		"server.read_timeout":        "SCANSCORE_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "SCANSCORE_SERVER_WRITE_TIMEOUT",
		"server.environment":         "SCANSCORE_SERVER_ENVIRONMENT",
		"db.host":                    "SCANSCORE_DB_HOST",
		"db.port":                    "SCANSCORE_DB_PORT",
		"db.user":                    "SCANSCORE_DB_USER",
		"db.password":                "SCANSCORE_DB_PASSWORD",
		"db.name":                    "SCANSCORE_DB_NAME",
		"db.sslmode":                 "SCANSCORE_DB_SSLMODE",
		"db.max_open":                "SCANSCORE_DB_MAX_OPEN",
		"db.max_idle":                "SCANSCORE_DB_MAX_IDLE",
		"s3.region":                  "SCANSCORE_S3_REGION",
		"s3.bucket":                  "SCANSCORE_S3_BUCKET",
		"s3.endpoint":                "SCANSCORE_S3_ENDPOINT",
		"s3.access_key":              "SCANSCORE_S3_ACCESS_KEY",
		"s3.secret_key":              "SCANSCORE_S3_SECRET_KEY",
		"log.level":                  "SCANSCORE_LOG_LEVEL",
		"log.format":                 "SCANSCORE_LOG_FORMAT",
		"ocr.primary.provider":       "SCANSCORE_OCR_PRIMARY_PROVIDER",
		"ocr.primary.api_key":        "SCANSCORE_OCR_PRIMARY_API_KEY",
		"ocr.primary.model":          "SCANSCORE_OCR_PRIMARY_MODEL",
		"ocr.primary.max_retries":    "SCANSCORE_OCR_PRIMARY_MAX_RETRIES",
		"ocr.primary.timeout_secs":   "SCANSCORE_OCR_PRIMARY_TIMEOUT_SECS",
		"ocr.secondary.provider":     "SCANSCORE_OCR_SECONDARY_PROVIDER",
		"ocr.secondary.api_key":      "SCANSCORE_OCR_SECONDARY_API_KEY",
		"ocr.secondary.model":        "SCANSCORE_OCR_SECONDARY_MODEL",
		"ocr.secondary.max_retries":  "SCANSCORE_OCR_SECONDARY_MAX_RETRIES",
		"ocr.secondary.timeout_secs": "SCANSCORE_OCR_SECONDARY_TIMEOUT_SECS",
		"eval.size_budget_bytes":     "SCANSCORE_EVAL_SIZE_BUDGET_BYTES",
		"eval.max_error_fraction":    "SCANSCORE_EVAL_MAX_ERROR_FRACTION",
		"eval.ground_truth_dir":      "SCANSCORE_EVAL_GROUND_TRUTH_DIR",
		"eval.wordlist_path":         "SCANSCORE_EVAL_WORDLIST_PATH",
		"eval.model_path":            "SCANSCORE_EVAL_MODEL_PATH",
		"eval.tokenizer_path":        "SCANSCORE_EVAL_TOKENIZER_PATH",
		"eval.ort_library_path":      "SCANSCORE_EVAL_ORT_LIBRARY_PATH",
		"eval.max_model_tokens":      "SCANSCORE_EVAL_MAX_MODEL_TOKENS",
		"batch.concurrency":          "SCANSCORE_BATCH_CONCURRENCY",
		"cors.allowed_origins":       "SCANSCORE_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SCANSCORE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SCANSCORE_SERVER_PORT") == "" {
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
	cfg.OCR = OCRConfig{
		Primary: ProviderConfig{
			Provider:    v.GetString("ocr.primary.provider"),
			APIKey:      v.GetString("ocr.primary.api_key"),
			Model:       v.GetString("ocr.primary.model"),
			MaxRetries:  v.GetInt("ocr.primary.max_retries"),
			TimeoutSecs: v.GetInt("ocr.primary.timeout_secs"),
		},
		Secondary: ProviderConfig{
			Provider:    v.GetString("ocr.secondary.provider"),
			APIKey:      v.GetString("ocr.secondary.api_key"),
			Model:       v.GetString("ocr.secondary.model"),
			MaxRetries:  v.GetInt("ocr.secondary.max_retries"),
			TimeoutSecs: v.GetInt("ocr.secondary.timeout_secs"),
		},
	}
	cfg.Eval = EvalConfig{
		SizeBudgetBytes:  v.GetInt("eval.size_budget_bytes"),
		MaxErrorFraction: v.GetFloat64("eval.max_error_fraction"),
		GroundTruthDir:   v.GetString("eval.ground_truth_dir"),
		WordlistPath:     v.GetString("eval.wordlist_path"),
		ModelPath:        v.GetString("eval.model_path"),
		TokenizerPath:    v.GetString("eval.tokenizer_path"),
		OrtLibraryPath:   v.GetString("eval.ort_library_path"),
		MaxModelTokens:   v.GetInt("eval.max_model_tokens"),
	}
	cfg.Batch = BatchConfig{
		Concurrency: v.GetInt("batch.concurrency"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
