package config

import (
	"os"

	"github.com/nkkko/eventops/internal/api"
	"github.com/nkkko/eventops/internal/logging"
	"github.com/nkkko/eventops/internal/storage"
	"github.com/nkkko/eventops/internal/storage/badger"
	"github.com/nkkko/eventops/internal/telemetry"
	"github.com/nkkko/eventops/internal/views"
)

// ToAPIConfig converts to API config
func (c *Config) ToAPIConfig() api.Config {
	return api.Config{
		Addr:              c.Server.Addr,
		ReadTimeout:       c.Server.ReadTimeout,
		WriteTimeout:      c.Server.WriteTimeout,
		IdleTimeout:       c.Server.IdleTimeout,
		RequestTimeout:    c.Server.RequestTimeout,
		MaxBodySize:       c.Server.MaxBodySize,
		AllowedOrigins:    c.Server.AllowedOrigins,
		RateLimitEnabled:  c.RateLimit.Enabled,
		RateLimitRequests: c.RateLimit.Requests,
		RateLimitWindow:   c.RateLimit.Window,
		MetricsEnabled:    c.Metrics.Enabled,
		ServiceName:       c.Telemetry.ServiceName,
	}
}

// ToStorageConfig converts to storage factory config
func (c *Config) ToStorageConfig() storage.FactoryConfig {
	return storage.FactoryConfig{
		Type: storage.StorageType(c.Storage.Type),
		Badger: badger.Config{
			DataDir:         c.Storage.DataDir,
			InMemory:        c.Storage.InMemory,
			SyncWrites:      c.Storage.SyncWrites,
			GCInterval:      c.Storage.GCInterval,
			CacheEnabled:    c.Storage.CacheEnabled,
			CacheSize:       c.Storage.CacheSize,
			CacheExpiration: c.Storage.CacheExpiration,
		},
	}
}

// ToViewsConfig converts to view manager config
func (c *Config) ToViewsConfig() views.Config {
	return views.Config{
		MaxMounted:       c.Views.MaxMounted,
		RefreshQueueSize: c.Views.RefreshQueueSize,
		RefreshWorkers:   c.Views.RefreshWorkers,
		LoadTimeout:      c.Views.LoadTimeout,
	}
}

// ToLoggingConfig converts to logging config
func (c *Config) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:             logging.LogLevel(c.Logging.Level),
		Format:            logging.LogFormat(c.Logging.Format),
		IncludeCaller:     c.Logging.IncludeCaller,
		IncludeStacktrace: c.Logging.IncludeTrace,
		Output:            os.Stdout,
		GlobalFields:      c.Logging.GlobalFields,
	}
}

// ToTelemetryConfig converts to telemetry config
func (c *Config) ToTelemetryConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:       c.Telemetry.Enabled,
		ServiceName:   c.Telemetry.ServiceName,
		Endpoint:      c.Telemetry.Endpoint,
		SamplingRatio: c.Telemetry.SamplingRatio,
		Timeout:       c.Telemetry.Timeout,
		Attributes:    c.Telemetry.Attributes,
	}
}
