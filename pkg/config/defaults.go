package config

import (
	"strings"
	"time"

	"github.com/marmos91/rootshare/pkg/adapter/connpool"
	"github.com/marmos91/rootshare/pkg/adapter/ftp"
	"github.com/marmos91/rootshare/pkg/adapter/web"
	"github.com/marmos91/rootshare/pkg/adapter/webdav"
)

// Default ports of the three services.
const (
	DefaultHTTPPort    = 8080
	DefaultFTPPort     = 2121
	DefaultWebDAVPort  = 8081
	DefaultMetricsPort = 9090
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//
// Consequently a port of 0 cannot be requested through configuration; the
// adapters themselves accept 0 for ephemeral ports.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyHTTPDefaults(&cfg.Adapters.HTTP)
	applyFTPDefaults(&cfg.Adapters.FTP)
	applyWebDAVDefaults(&cfg.Adapters.WebDAV)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.BindAddress == "" {
		cfg.BindAddress = "0.0.0.0"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = DefaultMetricsPort
	}
}

func applyHTTPDefaults(cfg *web.Config) {
	if cfg.Port == 0 {
		cfg.Port = DefaultHTTPPort
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = connpool.DefaultPoolSize
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 5 * time.Minute
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 2 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyFTPDefaults(cfg *ftp.Config) {
	if cfg.Port == 0 {
		cfg.Port = DefaultFTPPort
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyWebDAVDefaults(cfg *webdav.Config) {
	if cfg.Port == 0 {
		cfg.Port = DefaultWebDAVPort
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = connpool.DefaultPoolSize
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 5 * time.Minute
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 2 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// GetDefaultConfig returns a configuration with every default applied.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
