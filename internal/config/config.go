package config

import (
	"os"
	"strconv"

	"landtrend/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Analysis AnalysisConfig
	Paths    PathConfig
}

// DatabaseConfig holds the product-store database settings. An empty URL
// selects the in-memory store.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds the exploration API settings
type ServerConfig struct {
	Addr string
}

// AnalysisConfig holds the trend-analysis parameters
type AnalysisConfig struct {
	StartYear     int
	EndYear       int
	WindowYears   int
	MaxCloudCover float64
	Workers       int
}

// PathConfig holds file system paths
type PathConfig struct {
	RegionGeoJSON string
	TractsGeoJSON string
	ZonalWorkbook string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8080"),
		},
		Analysis: AnalysisConfig{
			StartYear:     getEnvInt("ANALYSIS_START_YEAR", 1990),
			EndYear:       getEnvInt("ANALYSIS_END_YEAR", 2019),
			WindowYears:   getEnvInt("ANALYSIS_WINDOW_YEARS", 3),
			MaxCloudCover: getEnvFloat("ANALYSIS_MAX_CLOUD_COVER", 50),
			Workers:       getEnvInt("ANALYSIS_WORKERS", 0),
		},
		Paths: PathConfig{
			RegionGeoJSON: os.Getenv("REGION_GEOJSON"),
			TractsGeoJSON: os.Getenv("TRACTS_GEOJSON"),
			ZonalWorkbook: getEnv("ZONAL_WORKBOOK", "zonal_stats.xlsx"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.Analysis.StartYear > c.Analysis.EndYear {
		return errors.ConfigInvalid("analysis start year is after end year")
	}
	if c.Analysis.WindowYears < 1 {
		return errors.ConfigInvalid("window width must be at least 1 year")
	}
	if c.Analysis.MaxCloudCover < 0 || c.Analysis.MaxCloudCover > 100 {
		return errors.ConfigInvalid("max cloud cover must be a percentage")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
