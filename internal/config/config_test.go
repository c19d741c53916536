package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Sampler.Rate)
	assert.Equal(t, time.Duration(0), cfg.Sampler.StartDelay)
	assert.Equal(t, BackendAuto, cfg.Display.WindowBackend)
	assert.Equal(t, DefaultLogDir(), cfg.Storage.LogDir)
	assert.False(t, cfg.Storage.MirrorSamples)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worklog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sampler:
  rate: 4
  start_delay: 2s
display:
  window_backend: mutter
storage:
  log_dir: /var/tmp/worklog
  mirror_samples: true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4.0, cfg.Sampler.Rate)
	assert.Equal(t, 2*time.Second, cfg.Sampler.StartDelay)
	assert.Equal(t, BackendMutter, cfg.Display.WindowBackend)
	assert.Equal(t, BackendAuto, cfg.Display.IdleBackend)
	assert.Equal(t, "/var/tmp/worklog", cfg.Storage.LogDir)
	assert.Equal(t, "/var/tmp/worklog/worklog.db", cfg.GetDatabasePath())
	assert.True(t, cfg.Storage.MirrorSamples)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WORKLOG_SAMPLER_RATE", "0.5")
	t.Setenv("WORKLOG_STORAGE_LOG_DIR", "/srv/worklog")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Sampler.Rate)
	assert.Equal(t, "/srv/worklog", cfg.Storage.LogDir)
}

func TestLoadStartDelayPlainNumberIsSeconds(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"integer", "30", 30 * time.Second},
		{"fraction", "1.5", 1500 * time.Millisecond},
		{"duration string", "2m", 2 * time.Minute},
	}
	for _, tt := range tests {
		t.Run("file "+tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "worklog.yaml")
			require.NoError(t, os.WriteFile(path, []byte("sampler:\n  start_delay: "+tt.value+"\n"), 0644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Sampler.StartDelay)
		})
		t.Run("env "+tt.name, func(t *testing.T) {
			t.Setenv("WORKLOG_SAMPLER_START_DELAY", tt.value)

			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Sampler.StartDelay)
		})
	}
}

func TestLoadRejectsBadStartDelay(t *testing.T) {
	t.Setenv("WORKLOG_SAMPLER_START_DELAY", "soon")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("WORKLOG_SAMPLER_START_DELAY", "-5")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("WORKLOG_SAMPLER_RATE", "-1")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate", func(c *Config) { c.Sampler.Rate = 0 }},
		{"negative delay", func(c *Config) { c.Sampler.StartDelay = -time.Second }},
		{"unknown window backend", func(c *Config) { c.Display.WindowBackend = "wayland" }},
		{"unknown idle backend", func(c *Config) { c.Display.IdleBackend = "" }},
		{"empty log dir", func(c *Config) { c.Storage.LogDir = "" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"empty pid file", func(c *Config) { c.Daemon.PIDFile = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSetStartDelaySeconds(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetStartDelaySeconds(0.25))
	assert.Equal(t, 250*time.Millisecond, cfg.Sampler.StartDelay)
	assert.Error(t, cfg.SetStartDelaySeconds(-1))
}
