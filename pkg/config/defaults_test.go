package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format text, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output stdout, got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.BindAddress != "0.0.0.0" {
		t.Errorf("Expected bind address 0.0.0.0, got %q", cfg.Server.BindAddress)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Metrics.Enabled {
		t.Error("Expected metrics disabled by default")
	}
	if cfg.Server.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Expected metrics port %d, got %d", DefaultMetricsPort, cfg.Server.Metrics.Port)
	}
}

func TestApplyDefaults_Adapters(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	http := cfg.Adapters.HTTP
	if http.Port != 8080 || http.PoolSize != 10 || http.ReadTimeout != 5*time.Minute ||
		http.IdleTimeout != 2*time.Minute || http.ShutdownTimeout != 30*time.Second {
		t.Errorf("Unexpected HTTP defaults: %+v", http)
	}
	if http.MaxUploadBytes != 0 || http.RateLimit.RequestsPerSecond != 0 {
		t.Errorf("Expected unlimited uploads and requests by default: %+v", http)
	}

	ftp := cfg.Adapters.FTP
	if ftp.Port != 2121 || ftp.IdleTimeout != 10*time.Minute || ftp.MaxConnections != 0 {
		t.Errorf("Unexpected FTP defaults: %+v", ftp)
	}

	dav := cfg.Adapters.WebDAV
	if dav.Port != 8081 || dav.PoolSize != 10 || dav.WriteTimeout != 5*time.Minute {
		t.Errorf("Unexpected WebDAV defaults: %+v", dav)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	cfg.Server.BindAddress = "127.0.0.1"
	cfg.Adapters.HTTP.Port = 9000
	cfg.Adapters.HTTP.PoolSize = 4
	cfg.Adapters.FTP.IdleTimeout = time.Minute
	cfg.Adapters.WebDAV.Port = 9001

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Server.BindAddress != "127.0.0.1" {
		t.Errorf("Bind address overwritten: %q", cfg.Server.BindAddress)
	}
	if cfg.Adapters.HTTP.Port != 9000 || cfg.Adapters.HTTP.PoolSize != 4 {
		t.Errorf("HTTP values overwritten: %+v", cfg.Adapters.HTTP)
	}
	if cfg.Adapters.FTP.IdleTimeout != time.Minute {
		t.Errorf("FTP idle timeout overwritten: %v", cfg.Adapters.FTP.IdleTimeout)
	}
	if cfg.Adapters.WebDAV.Port != 9001 {
		t.Errorf("WebDAV port overwritten: %d", cfg.Adapters.WebDAV.Port)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
}
