package webdav

import "time"

// Config configures the WebDAV authoring service.
type Config struct {
	Port           int `mapstructure:"port" yaml:"port" validate:"min=0,max=65535" json:"port"`
	PoolSize       int `mapstructure:"pool_size" yaml:"pool_size" validate:"min=0" json:"pool_size"`
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections" validate:"min=0" json:"max_connections"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"min=0" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"min=0" json:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=0" json:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0" json:"shutdown_timeout"`
}
