package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable read by LoadConfig
const EnvPrefix = "EVENTOPS_"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Storage   StorageConfig   `yaml:"storage" envPrefix:"STORAGE_"`
	Views     ViewsConfig     `yaml:"views" envPrefix:"VIEWS_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOG_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
	Metrics   MetricsConfig   `yaml:"metrics" envPrefix:"METRICS_"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr           string        `yaml:"addr" env:"ADDR"`
	MaxBodySize    int64         `yaml:"max_body_size" env:"MAX_BODY_SIZE"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

// StorageConfig contains storage engine settings
type StorageConfig struct {
	// badger or memory
	Type            string        `yaml:"type" env:"TYPE"`
	DataDir         string        `yaml:"data_dir" env:"DATA_DIR"`
	InMemory        bool          `yaml:"in_memory" env:"IN_MEMORY"`
	SyncWrites      bool          `yaml:"sync_writes" env:"SYNC_WRITES"`
	GCInterval      time.Duration `yaml:"gc_interval" env:"GC_INTERVAL"`
	CacheEnabled    bool          `yaml:"cache_enabled" env:"CACHE_ENABLED"`
	CacheSize       int           `yaml:"cache_size" env:"CACHE_SIZE"`
	CacheExpiration time.Duration `yaml:"cache_expiration" env:"CACHE_EXPIRATION"`
}

// ViewsConfig contains view manager settings
type ViewsConfig struct {
	MaxMounted       int           `yaml:"max_mounted" env:"MAX_MOUNTED"`
	RefreshQueueSize int           `yaml:"refresh_queue_size" env:"REFRESH_QUEUE_SIZE"`
	RefreshWorkers   int           `yaml:"refresh_workers" env:"REFRESH_WORKERS"`
	LoadTimeout      time.Duration `yaml:"load_timeout" env:"LOAD_TIMEOUT"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level         string            `yaml:"level" env:"LEVEL"`
	Format        string            `yaml:"format" env:"FORMAT"`
	IncludeCaller bool              `yaml:"include_caller" env:"INCLUDE_CALLER"`
	IncludeTrace  bool              `yaml:"include_trace" env:"INCLUDE_TRACE"`
	GlobalFields  map[string]string `yaml:"global_fields" env:"GLOBAL_FIELDS"`
}

// TelemetryConfig contains OpenTelemetry settings
type TelemetryConfig struct {
	Enabled       bool              `yaml:"enabled" env:"ENABLED"`
	ServiceName   string            `yaml:"service_name" env:"SERVICE_NAME"`
	Endpoint      string            `yaml:"endpoint" env:"ENDPOINT"`
	SamplingRatio float64           `yaml:"sampling_ratio" env:"SAMPLING_RATIO"`
	Timeout       time.Duration     `yaml:"timeout" env:"TIMEOUT"`
	Attributes    map[string]string `yaml:"attributes" env:"ATTRIBUTES"`
}

// MetricsConfig contains metrics settings
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled" env:"ENABLED"`
	Requests int           `yaml:"requests" env:"REQUESTS"`
	Window   time.Duration `yaml:"window" env:"WINDOW"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MaxBodySize:    1 << 20, // 1MB
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    120 * time.Second,
			RequestTimeout: 30 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Type:            "badger",
			DataDir:         "./data",
			GCInterval:      5 * time.Minute,
			CacheEnabled:    true,
			CacheSize:       10000,
			CacheExpiration: 30 * time.Second,
		},
		Views: ViewsConfig{
			MaxMounted:       1024,
			RefreshQueueSize: 256,
			RefreshWorkers:   4,
			LoadTimeout:      10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "json",
			IncludeCaller: true,
			IncludeTrace:  true,
			GlobalFields:  map[string]string{},
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			ServiceName:   "eventops",
			Endpoint:      "localhost:4317",
			SamplingRatio: 0.1,
			Timeout:       5 * time.Second,
			Attributes:    map[string]string{},
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		RateLimit: RateLimitConfig{
			Enabled:  false,
			Requests: 600,
			Window:   time.Minute,
		},
	}
}

// LoadConfigFromFile loads configuration from a YAML file on top of the defaults
func LoadConfigFromFile(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("file", filePath).Msg("Configuration file not found, using defaults")
			return config, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Flags win over the environment, which wins over the file.
func LoadConfig(configFile string, dataDir string, serverAddr string, logLevel string) (*Config, error) {
	var config *Config
	var err error

	if configFile != "" {
		config, err = LoadConfigFromFile(configFile)
		if err != nil {
			return nil, err
		}
	} else {
		config = DefaultConfig()
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}

	if dataDir != "" {
		absDataDir, err := filepath.Abs(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for data directory: %w", err)
		}
		config.Storage.DataDir = absDataDir
	}

	if serverAddr != "" {
		config.Server.Addr = serverAddr
	}

	if logLevel != "" {
		config.Logging.Level = logLevel
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnv overrides config with any EVENTOPS_* variables that are set
func ApplyEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the values that would otherwise fail late at startup
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Storage.Type {
	case "", "badger":
		if c.Storage.DataDir == "" && !c.Storage.InMemory {
			errs = append(errs, errors.New("storage.data_dir is required for badger storage"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.type %q is not one of badger, memory", c.Storage.Type))
	}
	if c.Views.RefreshWorkers < 0 {
		errs = append(errs, errors.New("views.refresh_workers must not be negative"))
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		errs = append(errs, errors.New("telemetry.sampling_ratio must be between 0 and 1"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("rate_limit.requests and rate_limit.window must be positive"))
	}

	return errors.Join(errs...)
}
