// Package config loads server configuration from a YAML file with
// environment variable overrides for deployment settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is absent from the file and environment.
const (
	DefaultListenAddr   = "127.0.0.1:8080"
	DefaultDatabasePath = "quantum_quest.db"
	DefaultKeyringName  = "quantum-quest"
)

// Server holds HTTP listener settings.
type Server struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Storage holds the local persistence settings.
type Storage struct {
	DatabasePath string `yaml:"database_path"`
}

// Game holds engine seeding settings. An empty SessionSeed means a random
// seed is generated at startup, so puzzle parameters differ per session.
type Game struct {
	SessionSeed string `yaml:"session_seed"`
}

// Supabase holds the optional telemetry forwarding target. Keys are never
// stored in the file; they come from the OS keyring or the fallback path.
type Supabase struct {
	URL          string `yaml:"url"`
	KeyringName  string `yaml:"keyring_name"`
	FallbackPath string `yaml:"fallback_path"`
}

// Config is the root configuration document.
type Config struct {
	Server   Server   `yaml:"server"`
	Storage  Storage  `yaml:"storage"`
	Game     Game     `yaml:"game"`
	Supabase Supabase `yaml:"supabase"`
}

// Default returns a Config populated with defaults only.
func Default() Config {
	return Config{
		Server:   Server{ListenAddr: DefaultListenAddr},
		Storage:  Storage{DatabasePath: DefaultDatabasePath},
		Supabase: Supabase{KeyringName: DefaultKeyringName},
	}
}

// Load reads the YAML file at path, fills in defaults, and applies
// environment overrides. A missing file is not an error; defaults and the
// environment alone are a valid configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("QQ_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("QQ_DATABASE_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("QQ_SESSION_SEED"); v != "" {
		c.Game.SessionSeed = v
	}
	if v := os.Getenv("QQ_SUPABASE_URL"); v != "" {
		c.Supabase.URL = v
	}
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if strings.TrimSpace(c.Storage.DatabasePath) == "" {
		c.Storage.DatabasePath = DefaultDatabasePath
	}
	if strings.TrimSpace(c.Supabase.KeyringName) == "" {
		c.Supabase.KeyringName = DefaultKeyringName
	}
}

func (c *Config) validate() error {
	if !strings.Contains(c.Server.ListenAddr, ":") {
		return fmt.Errorf("config: listen_addr %q must be host:port", c.Server.ListenAddr)
	}
	if c.Supabase.URL != "" && !strings.HasPrefix(c.Supabase.URL, "http") {
		return fmt.Errorf("config: supabase url %q must be an http(s) URL", c.Supabase.URL)
	}
	return nil
}
