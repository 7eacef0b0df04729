// Package config provides configuration management and environment variable handling for the application
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Server      ServerConfig      `json:"server"`
	Static      StaticConfig      `json:"static"`
	Logging     LoggingConfig     `json:"logging"`
	Metrics     MetricsConfig     `json:"metrics"`
	Provisioner ProvisionerConfig `json:"provisioner"`
	Deployment  DeploymentConfig  `json:"deployment"`
}

type ServerConfig struct {
	Host              string        `json:"host" validate:"required"`
	Port              int           `json:"port" validate:"min=1,max=65535"`
	ReadTimeout       time.Duration `json:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `json:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `json:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" validate:"gt=0"`
	BodyLimit         int           `json:"body_limit" validate:"gt=0"`
	Concurrency       int           `json:"concurrency" validate:"gt=0"`
	Prefork           bool          `json:"prefork"`
	HideServerHeader  bool          `json:"hide_server_header"`
	EnableCompression bool          `json:"enable_compression"`
}

type StaticConfig struct {
	Dir    string        `json:"dir" validate:"required"`
	Prefix string        `json:"prefix" validate:"required,startswith=/"`
	MaxAge time.Duration `json:"max_age" validate:"gte=0"`
}

type LoggingConfig struct {
	Level      string `json:"level" validate:"oneof=debug info warn error"`
	Output     string `json:"output" validate:"oneof=stdout file both"` // stdout, file, both
	FilePath   string `json:"file_path" validate:"required_unless=Output stdout"`
	MaxSize    int    `json:"max_size" validate:"gte=0"` // MB
	MaxBackups int    `json:"max_backups" validate:"gte=0"`
	MaxAge     int    `json:"max_age" validate:"gte=0"` // days
	Compress   bool   `json:"compress"`

	EnableAccessLog bool `json:"enable_access_log"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path" validate:"required,startswith=/"`
}

// ProvisionerConfig drives the one-off animal image download
type ProvisionerConfig struct {
	ImagesDir string        `json:"images_dir" validate:"required"`
	Timeout   time.Duration `json:"timeout" validate:"gt=0"`
	MaxWidth  int           `json:"max_width" validate:"gt=0"`
	MaxHeight int           `json:"max_height" validate:"gt=0"`
}

type DeploymentConfig struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	CommitHash  string `json:"commit_hash"`
	BuildTime   string `json:"build_time"`
}

// ImagesDir is where the animal pictures live under the static directory
func (c StaticConfig) ImagesDir() string {
	return filepath.Join(c.Dir, "images")
}

// EnsureImagesDir creates the images directory, parents included.
func (c StaticConfig) EnsureImagesDir() error {
	if err := os.MkdirAll(c.ImagesDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create images directory %s: %w", c.ImagesDir(), err)
	}
	return nil
}

func (d DeploymentConfig) String() string {
	return fmt.Sprintf("env=%s, version=%s, commit=%s, built=%s", d.Environment, d.Version, d.CommitHash, d.BuildTime)
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	static := StaticConfig{
		Dir:    getEnvString("STATIC_DIR", "static"),
		Prefix: getEnvString("STATIC_PREFIX", "/static"),
		MaxAge: getEnvDuration("STATIC_MAX_AGE", time.Hour),
	}

	cfg := &ProductionConfig{
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8001),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 30*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 100*1024*1024), // 100MB
			Concurrency:       getEnvInt("SERVER_CONCURRENCY", 1000),
			Prefork:           getEnvBool("SERVER_PREFORK", false),
			HideServerHeader:  getEnvBool("SERVER_HIDE_HEADER", true),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
		},
		Static: static,
		Logging: LoggingConfig{
			Level:           getEnvString("LOG_LEVEL", "info"),
			Output:          getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:        getEnvString("LOG_FILE_PATH", "logs/app.log"),
			MaxSize:         getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups:      getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:          getEnvInt("LOG_MAX_AGE", 30),
			Compress:        getEnvBool("LOG_COMPRESS", true),
			EnableAccessLog: getEnvBool("LOG_ENABLE_ACCESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Provisioner: ProvisionerConfig{
			ImagesDir: getEnvString("IMAGES_DIR", static.ImagesDir()),
			Timeout:   getEnvDuration("IMAGES_DOWNLOAD_TIMEOUT", 10*time.Second),
			MaxWidth:  getEnvInt("IMAGES_MAX_WIDTH", 400),
			MaxHeight: getEnvInt("IMAGES_MAX_HEIGHT", 300),
		},
		Deployment: DeploymentConfig{
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("VERSION", "1.0.0"),
			CommitHash:  getEnvString("COMMIT_HASH", "unknown"),
			BuildTime:   getEnvString("BUILD_TIME", "unknown"),
		},
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads environment variables from the given file if it exists.
// Variables already present in the environment win.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	if cfg == nil {
		return errors.New("configuration validation failed: config is nil")
	}

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, validationMessage(fe))
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(messages, "; "))
}

func validationMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "ProductionConfig.")
	switch fe.Tag() {
	case "required", "required_unless":
		return field + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
