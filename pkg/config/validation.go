package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
func Validate(cfg *Config) error {
	// Run struct tag validation
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	// Custom validation rules that can't be expressed in tags
	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	if err := validateRoot(cfg.Server.Root); err != nil {
		return err
	}

	// Every listening port must be distinct
	ports := []struct {
		name string
		port int
	}{
		{"adapters.http.port", cfg.Adapters.HTTP.Port},
		{"adapters.ftp.port", cfg.Adapters.FTP.Port},
		{"adapters.webdav.port", cfg.Adapters.WebDAV.Port},
	}
	if cfg.Server.Metrics.Enabled {
		ports = append(ports, struct {
			name string
			port int
		}{"server.metrics.port", cfg.Server.Metrics.Port})
	}

	seen := make(map[int]string)
	for _, p := range ports {
		if p.port == 0 {
			continue
		}
		if other, ok := seen[p.port]; ok {
			return fmt.Errorf("%s: port %d already used by %s", p.name, p.port, other)
		}
		seen[p.port] = p.name
	}

	// Passive ports come as a range or not at all
	ftpCfg := cfg.Adapters.FTP
	if (ftpCfg.PassivePortMin == 0) != (ftpCfg.PassivePortMax == 0) {
		return fmt.Errorf("adapters.ftp: passive_port_min and passive_port_max must be set together")
	}

	return nil
}

// validateRoot checks an explicit root override. Empty is allowed.
func validateRoot(root string) error {
	if root == "" {
		return nil
	}
	if !filepath.IsAbs(root) {
		return fmt.Errorf("server.root: %q must be an absolute path", root)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("server.root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("server.root: %q is not a directory", root)
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		// Return the first validation error with context
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
