package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/marmos91/rootshare/pkg/adapter/ftp"
	"github.com/marmos91/rootshare/pkg/adapter/web"
	"github.com/marmos91/rootshare/pkg/adapter/webdav"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "ROOTSHARE"

// Config represents the complete rootshare configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (ROOTSHARE_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`

	// Server contains settings shared by every protocol service
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Adapters contains per-protocol service configurations
	Adapters AdaptersConfig `mapstructure:"adapters" yaml:"adapters" json:"adapters"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" json:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json" json:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required" json:"output"`
}

// ServerConfig contains settings shared by every protocol service.
type ServerConfig struct {
	// BindAddress is the interface every service listens on
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address" validate:"required,ip|hostname" json:"bind_address"`

	// Root overrides the shared directory. Empty means the first system
	// root ("/" on POSIX, the first logical drive on Windows) with the whole
	// filesystem browsable; when set, the web service is confined to it.
	Root string `mapstructure:"root" yaml:"root" json:"root,omitempty"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0" json:"shutdown_timeout"`

	// Metrics configures the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// MetricsConfig configures the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port" validate:"min=0,max=65535" json:"port"`
}

// AdaptersConfig contains all protocol service configurations.
// The adapter packages' own Config types are used directly to avoid
// duplication.
type AdaptersConfig struct {
	HTTP   web.Config    `mapstructure:"http" yaml:"http" json:"http"`
	FTP    ftp.Config    `mapstructure:"ftp" yaml:"ftp" json:"ftp"`
	WebDAV webdav.Config `mapstructure:"webdav" yaml:"webdav" json:"webdav"`
}

// envKeys lists every key that may be overridden from the environment.
// Viper only consults the environment for keys it already knows about.
var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.output",
	"server.bind_address",
	"server.root",
	"server.shutdown_timeout",
	"server.metrics.enabled",
	"server.metrics.port",
	"adapters.http.port",
	"adapters.http.pool_size",
	"adapters.http.max_connections",
	"adapters.http.max_upload_bytes",
	"adapters.http.read_timeout",
	"adapters.http.write_timeout",
	"adapters.http.idle_timeout",
	"adapters.http.shutdown_timeout",
	"adapters.http.rate_limit.requests_per_second",
	"adapters.http.rate_limit.burst",
	"adapters.ftp.port",
	"adapters.ftp.max_connections",
	"adapters.ftp.idle_timeout",
	"adapters.ftp.public_host",
	"adapters.ftp.passive_port_min",
	"adapters.ftp.passive_port_max",
	"adapters.ftp.shutdown_timeout",
	"adapters.webdav.port",
	"adapters.webdav.pool_size",
	"adapters.webdav.max_connections",
	"adapters.webdav.read_timeout",
	"adapters.webdav.write_timeout",
	"adapters.webdav.idle_timeout",
	"adapters.webdav.shutdown_timeout",
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	if err := setupViper(v, configPath); err != nil {
		return nil, err
	}

	// Read configuration file if it exists
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// decodeHook converts strings from files and the environment into
// durations and lists.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) error {
	// Environment variables use ROOTSHARE_ prefix and underscores
	// Example: ROOTSHARE_ADAPTERS_HTTP_PORT=9000
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/rootshare/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	return nil
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found is acceptable - use defaults
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "rootshare")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "rootshare")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
