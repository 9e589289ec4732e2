package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		GitLab: GitLabConfig{
			URL:        "https://gitlab.example.com",
			AdminToken: "glpat-secret",
		},
		Monitor: MonitorConfig{
			DaysThreshold: 7,
		},
		SMTP: SMTPConfig{
			Server:    "smtp.example.com",
			Port:      465,
			FromEmail: "alerts@example.com",
			ToEmails:  []string{"admin@example.com"},
			UseSSL:    true,
		},
	}
}

func TestSanitizeValid(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Sanitize())
}

func TestSanitizeTrimsTrailingSlash(t *testing.T) {
	cfg := validConfig()
	cfg.GitLab.URL = "https://gitlab.example.com/"
	require.NoError(t, cfg.Sanitize())
	assert.Equal(t, "https://gitlab.example.com", cfg.GitLab.URL)
}

func TestSanitizeDefaultsSMTPPort(t *testing.T) {
	cfg := validConfig()
	cfg.SMTP.Port = 0
	require.NoError(t, cfg.Sanitize())
	assert.Equal(t, 465, cfg.SMTP.Port)
}

func TestSanitizeRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *Config)
		field  string
	}{
		{"empty_url", func(cfg *Config) { cfg.GitLab.URL = "" }, "gitlab.url"},
		{"relative_url", func(cfg *Config) { cfg.GitLab.URL = "gitlab.example.com" }, "gitlab.url"},
		{"bad_scheme", func(cfg *Config) { cfg.GitLab.URL = "ftp://gitlab.example.com" }, "gitlab.url"},
		{"missing_token", func(cfg *Config) { cfg.GitLab.AdminToken = "" }, "gitlab.adminToken"},
		{"negative_threshold", func(cfg *Config) { cfg.Monitor.DaysThreshold = -1 }, "monitor.daysThreshold"},
		{"missing_smtp_server", func(cfg *Config) { cfg.SMTP.Server = "" }, "smtp.server"},
		{"bad_smtp_port", func(cfg *Config) { cfg.SMTP.Port = 70000 }, "smtp.port"},
		{"missing_from", func(cfg *Config) { cfg.SMTP.FromEmail = "" }, "smtp.fromEmail"},
		{"no_recipients", func(cfg *Config) { cfg.SMTP.ToEmails = nil }, "smtp.toEmails"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Sanitize()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	configYAML := `
debug: true
gitlab:
  url: https://gitlab.example.com
  adminToken: glpat-secret
monitor:
  daysThreshold: 14
  includeGroupTokens: false
smtp:
  server: smtp.example.com
  fromEmail: alerts@example.com
  toEmails:
    - admin@example.com
    - ops@example.com
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "glpat-secret", cfg.GitLab.AdminToken)
	assert.Equal(t, 14, cfg.Monitor.DaysThreshold)
	assert.False(t, cfg.Monitor.IncludeGroupTokens)
	assert.True(t, cfg.Monitor.IncludeProjectTokens, "include flags default to true")
	assert.False(t, cfg.Monitor.SendAllTokens)
	assert.Equal(t, 465, cfg.SMTP.Port, "SMTP port defaults to the SSL port")
	assert.True(t, cfg.SMTP.UseSSL)
	assert.Equal(t, []string{"admin@example.com", "ops@example.com"}, cfg.SMTP.ToEmails)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
