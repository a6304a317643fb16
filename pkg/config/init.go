package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// configHeader opens every generated configuration file.
const configHeader = `# rootshare Configuration File
#
# Shares one directory tree over HTTP (browse/upload/download), anonymous FTP
# and anonymous WebDAV. Every value can be overridden from the environment
# with the ROOTSHARE_ prefix, e.g. ROOTSHARE_ADAPTERS_HTTP_PORT=9000.
`

// keyComments documents the generated file, keyed by dotted path.
var keyComments = map[string]string{
	"logging":                        "Logging configuration",
	"logging.level":                  "DEBUG, INFO, WARN or ERROR",
	"logging.format":                 "text or json",
	"logging.output":                 "stdout, stderr or a file path",
	"server":                         "Settings shared by every service",
	"server.bind_address":            "Interface every service listens on",
	"server.root":                    "Directory to share. Empty shares the whole filesystem starting at the\nfirst system root; when set, the web service is confined to it",
	"server.shutdown_timeout":        "Maximum time to wait for all services on shutdown",
	"server.metrics":                 "Prometheus metrics endpoint (/metrics)",
	"adapters":                       "Per-protocol services. All three start together",
	"adapters.http":                  "Web UI: browse, upload and download",
	"adapters.http.pool_size":        "Requests processed concurrently",
	"adapters.http.max_connections":  "Open client connections (0 = unlimited)",
	"adapters.http.max_upload_bytes": "Largest accepted upload in bytes (0 = unlimited)",
	"adapters.http.rate_limit":       "Request rate limit (requests_per_second 0 = disabled)",
	"adapters.ftp":                   "Anonymous read-write FTP (any user, any password)",
	"adapters.ftp.public_host":       "Address advertised in passive mode replies",
	"adapters.ftp.passive_port_min":  "Passive data port range (both 0 = system chosen)",
	"adapters.webdav":                "Anonymous read-write WebDAV at /",
}

// InitConfig writes a default configuration file to the default location
// and returns its path. An existing file is only replaced when force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a default configuration file to path, creating
// parent directories as needed.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateYAMLWithComments renders cfg as YAML with a comment above each
// documented key.
func generateYAMLWithComments(cfg *Config) (string, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	annotate(&doc, "")

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	buf.WriteString("\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return buf.String(), nil
}

// annotate attaches keyComments to the mapping keys under node.
func annotate(node *yaml.Node, prefix string) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		path := key.Value
		if prefix != "" {
			path = prefix + "." + key.Value
		}
		if comment, ok := keyComments[path]; ok {
			key.HeadComment = "# " + strings.ReplaceAll(comment, "\n", "\n# ")
		}
		annotate(value, path)
	}
}
