package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Root = t.TempDir()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected valid config, got error: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid log level", func(c *Config) { c.Logging.Level = "VERBOSE" }, "Level"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
		{"invalid bind address", func(c *Config) { c.Server.BindAddress = "not an address!" }, "BindAddress"},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "ShutdownTimeout"},
		{"negative http timeout", func(c *Config) { c.Adapters.HTTP.ReadTimeout = -time.Second }, "ReadTimeout"},
		{"http port too large", func(c *Config) { c.Adapters.HTTP.Port = 70000 }, "Port"},
		{"negative ftp port", func(c *Config) { c.Adapters.FTP.Port = -1 }, "Port"},
		{"negative pool size", func(c *Config) { c.Adapters.WebDAV.PoolSize = -1 }, "PoolSize"},
		{"negative upload limit", func(c *Config) { c.Adapters.HTTP.MaxUploadBytes = -1 }, "MaxUploadBytes"},
		{"relative root", func(c *Config) { c.Server.Root = "share" }, "absolute"},
		{"missing root", func(c *Config) { c.Server.Root = filepath.Join(filepath.Dir(file), "missing") }, "server.root"},
		{"root is a file", func(c *Config) { c.Server.Root = file }, "not a directory"},
		{"duplicate ports", func(c *Config) { c.Adapters.WebDAV.Port = c.Adapters.HTTP.Port }, "already used"},
		{"metrics port clash", func(c *Config) {
			c.Server.Metrics.Enabled = true
			c.Server.Metrics.Port = c.Adapters.FTP.Port
		}, "already used"},
		{"half passive range", func(c *Config) { c.Adapters.FTP.PassivePortMax = 30000 }, "passive"},
		{"inverted passive range", func(c *Config) {
			c.Adapters.FTP.PassivePortMin = 30100
			c.Adapters.FTP.PassivePortMax = 30000
		}, "PassivePortMax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_MetricsPortIgnoredWhenDisabled(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Metrics.Port = cfg.Adapters.HTTP.Port

	if err := Validate(cfg); err != nil {
		t.Fatalf("Disabled metrics must not clash: %v", err)
	}
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "ERROR"} {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level
		if err := Validate(cfg); err != nil {
			t.Errorf("Level %q should be valid: %v", level, err)
		}
	}
}

func TestValidate_PassiveRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Adapters.FTP.PassivePortMin = 30000
	cfg.Adapters.FTP.PassivePortMax = 30100

	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected valid passive range: %v", err)
	}
}
