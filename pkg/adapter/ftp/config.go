package ftp

import "time"

// Config configures the anonymous FTP transfer service.
type Config struct {
	// Port for the control connection. 0 requests an ephemeral port.
	Port int `mapstructure:"port" yaml:"port" validate:"min=0,max=65535" json:"port"`

	// MaxConnections limits concurrent control connections. 0 means
	// unlimited.
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections" validate:"min=0" json:"max_connections"`

	// IdleTimeout disconnects clients idle for longer than this.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=0" json:"idle_timeout"`

	// PublicHost is advertised in passive mode replies. Empty means the
	// local address of the control connection.
	PublicHost string `mapstructure:"public_host" yaml:"public_host" json:"public_host,omitempty"`

	// PassivePortMin and PassivePortMax bound the passive data ports.
	// Both 0 lets the system choose.
	PassivePortMin int `mapstructure:"passive_port_min" yaml:"passive_port_min" validate:"min=0,max=65535" json:"passive_port_min"`
	PassivePortMax int `mapstructure:"passive_port_max" yaml:"passive_port_max" validate:"min=0,max=65535,gtefield=PassivePortMin" json:"passive_port_max"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0" json:"shutdown_timeout"`
}
