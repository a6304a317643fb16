package web

import "time"

// Config configures the browse/upload/download web service.
type Config struct {
	// Port to listen on. 0 requests an ephemeral port.
	Port int `mapstructure:"port" yaml:"port" validate:"min=0,max=65535" json:"port"`

	// PoolSize is the number of requests handled concurrently.
	PoolSize int `mapstructure:"pool_size" yaml:"pool_size" validate:"min=0" json:"pool_size"`

	// MaxConnections limits open client connections. 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections" validate:"min=0" json:"max_connections"`

	// MaxUploadBytes caps a single uploaded file. 0 means unlimited.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes" validate:"min=0" json:"max_upload_bytes"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"min=0" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"min=0" json:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=0" json:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0" json:"shutdown_timeout"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig bounds the request rate of the whole service.
// RequestsPerSecond 0 disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond uint `mapstructure:"requests_per_second" yaml:"requests_per_second" json:"requests_per_second"`
	Burst             uint `mapstructure:"burst" yaml:"burst" json:"burst"`
}
