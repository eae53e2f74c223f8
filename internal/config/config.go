package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wellsgz/udprtt/internal/logging"
	"github.com/wellsgz/udprtt/internal/probe"
)

// Role selects which side of the probe this process plays
type Role string

const (
	RoleClient Role = "client"
	RoleServer Role = "server"
)

// Output selects how the client summary is rendered
type Output string

const (
	OutputText Output = "text"
	OutputJSON Output = "json"
)

// EnvPrefix is prepended to environment variable overrides (UDPRTT_PORT, ...)
const EnvPrefix = "UDPRTT"

// Config represents the root configuration
type Config struct {
	Role          Role      `mapstructure:"role"`
	Peer          string    `mapstructure:"peer"`
	Port          int       `mapstructure:"port"`
	MessageLength int       `mapstructure:"length"`
	MessageCount  uint64    `mapstructure:"count"`
	Strategy      int       `mapstructure:"strategy"`
	Output        Output    `mapstructure:"output"`
	TUI           bool      `mapstructure:"tui"`
	StatusAddr    string    `mapstructure:"status_addr"`
	Log           LogConfig `mapstructure:"log"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// flagKeys maps command-line flag names to configuration keys
var flagKeys = map[string]string{
	"peer":        "peer",
	"port":        "port",
	"length":      "length",
	"count":       "count",
	"strategy":    "strategy",
	"output":      "output",
	"tui":         "tui",
	"status-addr": "status_addr",
	"log-format":  "log.format",
	"log-level":   "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("role", string(RoleClient))
	v.SetDefault("peer", probe.DefaultPeer)
	v.SetDefault("port", probe.DefaultPort)
	v.SetDefault("length", probe.DefaultMessageLength)
	v.SetDefault("count", probe.DefaultMessageCount)
	v.SetDefault("strategy", int(probe.Blocking))
	v.SetDefault("output", string(OutputText))
	v.SetDefault("tui", false)
	v.SetDefault("status_addr", "")
	v.SetDefault("log.format", string(logging.FormatText))
	v.SetDefault("log.level", "info")
}

// Default returns the configuration with every documented default applied
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// defaults alone always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load builds the configuration for role from, in increasing precedence,
// defaults, the optional config file, UDPRTT_* environment variables and
// flags that were set explicitly. An empty configPath skips the file.
func Load(role Role, configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found", configPath)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Role = role

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for required fields and valid values.
// Probe parameter errors wrap probe.ErrConfiguration.
func (c *Config) Validate() error {
	pc, err := c.Probe()
	if err != nil {
		return err
	}

	switch c.Role {
	case RoleClient:
		if err := pc.ValidateClient(); err != nil {
			return err
		}
	case RoleServer:
		if err := pc.ValidateServer(); err != nil {
			return err
		}
		if c.TUI {
			return fmt.Errorf("tui is only available in the client role")
		}
	default:
		return fmt.Errorf("role must be 'client' or 'server', got %q", c.Role)
	}

	if c.Output != OutputText && c.Output != OutputJSON {
		return fmt.Errorf("output must be 'text' or 'json', got %q", c.Output)
	}
	if c.TUI && c.Output == OutputJSON {
		return fmt.Errorf("cannot use both tui and json output")
	}

	if c.Log.Format != string(logging.FormatText) && c.Log.Format != string(logging.FormatJSON) {
		return fmt.Errorf("log.format must be 'text' or 'json', got %q", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	return nil
}

// Probe returns the probe engine configuration
func (c *Config) Probe() (probe.Config, error) {
	strategy, err := probe.ParseStrategy(c.Strategy)
	if err != nil {
		return probe.Config{}, err
	}
	return probe.Config{
		Peer:          c.Peer,
		Port:          c.Port,
		MessageLength: c.MessageLength,
		MessageCount:  c.MessageCount,
		Strategy:      strategy,
	}, nil
}
