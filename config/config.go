package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment variable the service reads
const EnvPrefix = "NUTRITRACKER"

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	FDC        FDCConfig        `mapstructure:"fdc"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// FDCConfig holds FoodData Central API configuration
type FDCConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	BaseURL         string  `mapstructure:"base_url"`
	RequestsPerHour float64 `mapstructure:"requests_per_hour"`
	Burst           int     `mapstructure:"burst"`
	Debug           bool    `mapstructure:"debug"`
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds FDC payload cache configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// PaginationConfig bounds list and search page sizes
type PaginationConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// keys lists every setting so each can be bound to its environment variable,
// including the ones without defaults.
var keys = []string{
	"server.port", "server.environment", "server.allowed_origins", "server.shutdown_timeout",
	"fdc.api_key", "fdc.base_url", "fdc.requests_per_hour", "fdc.burst", "fdc.debug",
	"mongo.uri", "mongo.database", "mongo.timeout",
	"cache.ttl", "cache.cleanup_interval",
	"pagination.default_page_size", "pagination.max_page_size",
	"log.level", "log.file",
}

// Load loads configuration from a .env file, environment variables and an
// optional config.yaml, in increasing order of precedence: file, then env.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutritracker/")

	// NUTRITRACKER_FDC_API_KEY -> fdc.api_key
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// FDC defaults: the public quota is 1000 requests per hour
	v.SetDefault("fdc.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("fdc.requests_per_hour", 1000)
	v.SetDefault("fdc.burst", 10)
	v.SetDefault("fdc.debug", false)

	// Mongo defaults
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "nutritracker")
	v.SetDefault("mongo.timeout", "10s")

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Pagination defaults
	v.SetDefault("pagination.default_page_size", 25)
	v.SetDefault("pagination.max_page_size", 100)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.FDC.APIKey == "" {
		return fmt.Errorf("FDC API key is required (set %s_FDC_API_KEY)", EnvPrefix)
	}

	if config.Mongo.URI == "" {
		return fmt.Errorf("Mongo URI is required (set %s_MONGO_URI)", EnvPrefix)
	}

	if config.Pagination.DefaultPageSize <= 0 || config.Pagination.MaxPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive, got default %d and max %d",
			config.Pagination.DefaultPageSize, config.Pagination.MaxPageSize)
	}

	if config.Pagination.DefaultPageSize > config.Pagination.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d",
			config.Pagination.DefaultPageSize, config.Pagination.MaxPageSize)
	}

	if _, err := zapcore.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}
