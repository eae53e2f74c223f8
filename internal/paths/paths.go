package paths

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// Paths holds the resolved configuration location
type Paths struct {
	ConfigFile string
}

// DefaultPaths returns the default paths based on current user
// Root user: /etc/udprtt/config.yaml
// Non-root: ~/.udprtt/config.yaml
func DefaultPaths() (*Paths, error) {
	if os.Geteuid() == 0 {
		return &Paths{ConfigFile: "/etc/udprtt/config.yaml"}, nil
	}

	usr, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	return &Paths{
		ConfigFile: filepath.Join(usr.HomeDir, ".udprtt", "config.yaml"),
	}, nil
}

// ConfigExists checks if the config file exists
func (p *Paths) ConfigExists() bool {
	_, err := os.Stat(p.ConfigFile)
	return err == nil
}

// String returns a human-readable representation of the paths
func (p *Paths) String() string {
	return fmt.Sprintf("Config: %s", p.ConfigFile)
}

// CreateDefaultConfig writes a commented default config file.
// Returns true if a new config was created, false if it already existed
func (p *Paths) CreateDefaultConfig() (bool, error) {
	if p.ConfigExists() {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(p.ConfigFile), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# udprtt configuration
# Flags and UDPRTT_* environment variables override these values.

# client: address of the echo server (IP literal)
peer: "127.0.0.1"
port: 3030

# payload size in bytes (server: receive buffer size)
length: 512

# client: number of round trips
count: 100000

# 0 = blocking receive, 2 = busy-poll (1 is reserved)
strategy: 0

# client summary: text or json
output: text

# serve /health, /api/v1/* and /metrics, e.g. ":9090"
status_addr: ""

log:
  format: text
  level: info
`
	if err := os.WriteFile(p.ConfigFile, []byte(defaultConfig), 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}
