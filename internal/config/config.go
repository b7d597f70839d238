package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the schoolkeuze configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Search   SearchConfig   `yaml:"search"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Database drivers.
const (
	DriverRedis = "redis"
	DriverFile  = "file"
)

// Level policies.
const (
	PolicyExcludeBelowMin = "exclude_below_min"
	PolicyExcludeBelowMax = "exclude_below_max"
)

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, file (default: file)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// DatasetConfig points at the flat-file school dataset.
type DatasetConfig struct {
	Path        string `yaml:"path"`
	DefaultCity string `yaml:"default_city"`
}

// SearchConfig tunes the filter engine.
type SearchConfig struct {
	DefaultTake     int    `yaml:"default_take"`
	MaxTake         int    `yaml:"max_take"`
	FetchMultiplier int    `yaml:"fetch_multiplier"`
	MaxCandidates   int    `yaml:"max_candidates"`
	LevelPolicy     string `yaml:"level_policy"`
}

// GeocoderConfig holds postal-code geocoding settings.
type GeocoderConfig struct {
	Enabled           bool    `yaml:"enabled"`
	BaseURL           string  `yaml:"base_url"`
	UserAgent         string  `yaml:"user_agent"`
	Suffix            string  `yaml:"suffix"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	CacheTTLHours     int     `yaml:"cache_ttl_hours"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 15
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverFile
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "schoolkeuze:"
	}
	if c.Dataset.Path == "" {
		c.Dataset.Path = "data/schools.sample.json"
	}
	if c.Dataset.DefaultCity == "" {
		c.Dataset.DefaultCity = "Amsterdam"
	}
	if c.Search.DefaultTake <= 0 {
		c.Search.DefaultTake = 50
	}
	if c.Search.MaxTake <= 0 {
		c.Search.MaxTake = 200
	}
	if c.Search.FetchMultiplier <= 0 {
		c.Search.FetchMultiplier = 4
	}
	if c.Search.MaxCandidates <= 0 {
		c.Search.MaxCandidates = 800
	}
	if c.Search.LevelPolicy == "" {
		c.Search.LevelPolicy = PolicyExcludeBelowMin
	}
	if c.Geocoder.BaseURL == "" {
		c.Geocoder.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.Geocoder.UserAgent == "" {
		c.Geocoder.UserAgent = "AmsterdamSchoolChoice/1.0 (geocoding zip)"
	}
	if c.Geocoder.Suffix == "" {
		c.Geocoder.Suffix = "Amsterdam Netherlands"
	}
	if c.Geocoder.RequestsPerSecond <= 0 {
		c.Geocoder.RequestsPerSecond = 1
	}
	if c.Geocoder.Burst <= 0 {
		c.Geocoder.Burst = 1
	}
	if c.Geocoder.TimeoutSec <= 0 {
		c.Geocoder.TimeoutSec = 10
	}
	if c.Geocoder.CacheTTLHours <= 0 {
		c.Geocoder.CacheTTLHours = 30 * 24
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the redis driver")
		}
	case DriverFile:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverFile, c.Database.Driver)
	}
	switch c.Search.LevelPolicy {
	case PolicyExcludeBelowMin, PolicyExcludeBelowMax:
	default:
		return fmt.Errorf(
			"search.level_policy must be %q or %q, got %q",
			PolicyExcludeBelowMin, PolicyExcludeBelowMax, c.Search.LevelPolicy,
		)
	}
	if c.Search.MaxTake < c.Search.DefaultTake {
		return fmt.Errorf("search.max_take (%d) must not be below search.default_take (%d)",
			c.Search.MaxTake, c.Search.DefaultTake)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
