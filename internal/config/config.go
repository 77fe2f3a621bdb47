package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds chainchart configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Backend  BackendConfig  `toml:"backend"`
	Log      LogConfig      `toml:"log"`
	Autosave AutosaveConfig `toml:"autosave"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	BodyLimit    int      `toml:"body_limit"` // bytes
}

// DatabaseConfig selects the project store.
type DatabaseConfig struct {
	Driver string `toml:"driver"` // "postgres", "libsql", "memory"
	URL    string `toml:"url"`
}

// BackendConfig points at the contract compiler service.
type BackendConfig struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "text", "json"
}

// AutosaveConfig controls the editor's debounced saves.
type AutosaveConfig struct {
	Enabled bool     `toml:"enabled"`
	Delay   Duration `toml:"delay"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Drivers.
const (
	DriverPostgres = "postgres"
	DriverLibSQL   = "libsql"
	DriverMemory   = "memory"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":3000",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
			BodyLimit:    4 << 20,
		},
		Database: DatabaseConfig{
			Driver: DriverLibSQL,
			URL:    "file:" + filepath.Join(ConfigDir(), "chainchart.db"),
		},
		Backend: BackendConfig{URL: "http://localhost:8000", Timeout: Duration{60 * time.Second}},
		Log:     LogConfig{Level: "info", Format: "text"},
		Autosave: AutosaveConfig{
			Enabled: true,
			Delay:   Duration{2 * time.Second},
		},
	}
}

// ConfigDir returns the chainchart config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "chainchart")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path, or the default path when path is
// empty, then applies environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with DATABASE_URL, CHAINCHART_API_URL and
// CHAINCHART_ADDR. A DATABASE_URL selects the postgres driver.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.Driver = DriverPostgres
		c.Database.URL = v
	}
	if v := os.Getenv("CHAINCHART_API_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("CHAINCHART_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks values that cannot be used as given.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverLibSQL:
		if c.Database.URL == "" {
			return fmt.Errorf("config: database.url is required for driver %q", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if c.Autosave.Enabled && c.Autosave.Delay.Duration <= 0 {
		return errors.New("config: autosave.delay must be positive")
	}
	return nil
}

// Save writes the config to path, or the default path when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil // already exists
	}
	return Save(Default(), "")
}
