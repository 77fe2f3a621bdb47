package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CHAINCHART_API_URL", "")
	t.Setenv("CHAINCHART_ADDR", "")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, DriverLibSQL, cfg.Database.Driver)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	assert.Equal(t, 2*time.Second, cfg.Autosave.Delay.Duration)
	assert.NoError(t, cfg.Validate())
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	assert.Equal(t, "/tmp/test-xdg/chainchart", ConfigDir())
	assert.Equal(t, "/tmp/test-xdg/chainchart/config.toml", Path())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "chainchart"), ConfigDir())
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
addr = ":9000"
read_timeout = "5s"

[database]
driver = "memory"

[backend]
url = "http://compiler:8000"
timeout = "2m"

[log]
level = "debug"
format = "json"

[autosave]
enabled = false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout.Duration, "unset keys keep defaults")
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Backend.Timeout.Duration)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Autosave.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[database]\ndriver = \"memory\"\n"), 0o644))
	t.Setenv("DATABASE_URL", "postgres://localhost/chainchart")
	t.Setenv("CHAINCHART_API_URL", "http://api:8000")
	t.Setenv("CHAINCHART_ADDR", ":8080")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/chainchart", cfg.Database.URL)
	assert.Equal(t, "http://api:8000", cfg.Backend.URL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	tests := map[string]string{
		"bad duration": "[backend]\ntimeout = \"soon\"\n",
		"bad driver":   "[database]\ndriver = \"mongo\"\n",
		"missing url":  "[database]\ndriver = \"postgres\"\nurl = \"\"\n",
		"bad format":   "[log]\nformat = \"xml\"\n",
		"bad toml":     "[server\n",
		"zero delay":   "[autosave]\nenabled = true\ndelay = \"0s\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Server.Addr = ":4000"
	cfg.Autosave.Delay = Duration{750 * time.Millisecond}
	require.NoError(t, Save(cfg, ""))

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnsureExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, EnsureExists())
	_, err := os.Stat(Path())
	require.NoError(t, err)

	// Calling again does not overwrite.
	require.NoError(t, os.WriteFile(Path(), []byte("# custom\n"), 0o644))
	require.NoError(t, EnsureExists())
	data, err := os.ReadFile(Path())
	require.NoError(t, err)
	assert.Equal(t, "# custom\n", string(data))
}
