package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data/betlab.db", cfg.Storage.DSN)
	assert.True(t, cfg.ELN.VerifySSL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero port rejected",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port above range rejected",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "non-positive read timeout rejected",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout",
		},
		{
			name:    "empty storage dsn rejected",
			mutate:  func(c *Config) { c.Storage.DSN = "" },
			wantErr: "storage dsn",
		},
		{
			name:    "non-positive upload limit rejected",
			mutate:  func(c *Config) { c.Server.MaxUploadBytes = 0 },
			wantErr: "max upload size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNormalizesLogFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
  read_timeout: 5s
storage:
  dsn: /tmp/measurements.db
eln:
  url: https://eln.example.org/api/v2
  verify_ssl: false
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/tmp/measurements.db", cfg.Storage.DSN)
	assert.Equal(t, "https://eln.example.org/api/v2", cfg.ELN.URL)
	assert.False(t, cfg.ELN.VerifySSL)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := loadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestMergeConfigsEnvWins(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 9090
	fileCfg.Storage.DSN = "file.db"

	envCfg := *Default()
	envCfg.Server.Port = 7070
	envCfg.Storage.DSN = ""

	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, 7070, merged.Server.Port, "env value should win")
	assert.Equal(t, "file.db", merged.Storage.DSN, "file value should fill the gap")
}
