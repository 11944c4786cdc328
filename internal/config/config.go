package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonarrate/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Paths    PathConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Charts   ChartConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
	// AdminToken guards cache administration routes; empty disables them
	AdminToken string
}

// PathConfig holds file system paths
type PathConfig struct {
	PageFile  string
	DataDir   string
	StaticDir string
}

// DatabaseConfig holds the optional connection used by table-backed datasets
type DatabaseConfig struct {
	URL string
}

// CacheConfig controls dataset cache population
type CacheConfig struct {
	Warm bool
}

// ChartConfig controls static chart export
type ChartConfig struct {
	Format    string
	OutputDir string
	WidthIn   float64
	HeightIn  float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Paths:    *loadPathConfig(),
		Database: DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Cache:    CacheConfig{Warm: getEnvBoolOrDefault("WARM_CACHE", false)},
		Charts:   *loadChartConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:       getEnvOrDefault("PORT", "8080"),
		GinMode:    getEnvOrDefault("GIN_MODE", "release"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		PageFile:  getEnvOrDefault("PAGE_FILE", filepath.Join("pages", "appendix.yaml")),
		DataDir:   getEnvOrDefault("DATA_DIR", "data"),
		StaticDir: getEnvOrDefault("STATIC_DIR", "static"),
	}
}

func loadChartConfig() *ChartConfig {
	return &ChartConfig{
		Format:    strings.ToLower(getEnvOrDefault("CHART_FORMAT", "png")),
		OutputDir: getEnvOrDefault("CHART_DIR", filepath.Join("static", "charts")),
		WidthIn:   getEnvFloatOrDefault("CHART_WIDTH_IN", 6),
		HeightIn:  getEnvFloatOrDefault("CHART_HEIGHT_IN", 4),
	}
}

func validateConfig(config *Config) error {
	if config.Paths.PageFile == "" {
		return errors.ConfigInvalid("PAGE_FILE is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric, got " + config.Server.Port)
	}
	switch config.Charts.Format {
	case "png", "svg":
	default:
		return errors.ConfigInvalid("CHART_FORMAT must be png or svg")
	}
	if config.Charts.WidthIn <= 0 || config.Charts.HeightIn <= 0 {
		return errors.ConfigInvalid("chart dimensions must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
