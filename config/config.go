package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gitlab-tools/token-monitor/params"
	"github.com/spf13/viper"
)

// ConfigError is a fatal pre-flight configuration failure. No network call
// is made once one is returned.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

type GitLabConfig struct {
	URL        string `yaml:"url"`
	AdminToken string `yaml:"adminToken"`
}

type MonitorConfig struct {
	DaysThreshold        int  `yaml:"daysThreshold"`
	IncludeProjectTokens bool `yaml:"includeProjectTokens"`
	IncludeGroupTokens   bool `yaml:"includeGroupTokens"`
	SendAllTokens        bool `yaml:"sendAllTokens"`
}

type SMTPConfig struct {
	Server    string   `yaml:"server"`
	Port      int      `yaml:"port"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	FromEmail string   `yaml:"fromEmail"`
	ToEmails  []string `yaml:"toEmails"`
	UseSSL    bool     `yaml:"useSSL"`
	UseTLS    bool     `yaml:"useTLS"`
}

type Config struct {
	Debug       bool          `yaml:"debug"`
	TemplateDir string        `yaml:"templateDir"`
	GitLab      GitLabConfig  `yaml:"gitlab"`
	Monitor     MonitorConfig `yaml:"monitor"`
	SMTP        SMTPConfig    `yaml:"smtp"`
}

func (c *Config) Sanitize() error {
	c.GitLab.URL = strings.TrimRight(strings.TrimSpace(c.GitLab.URL), "/")
	if c.GitLab.URL == "" {
		return &ConfigError{Field: "gitlab.url", Reason: "must not be empty"}
	}
	if u, err := url.Parse(c.GitLab.URL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ConfigError{Field: "gitlab.url", Reason: "must be a valid http(s) URL"}
	}
	if c.GitLab.AdminToken == "" {
		return &ConfigError{Field: "gitlab.adminToken", Reason: "must not be empty"}
	}
	if c.Monitor.DaysThreshold < 0 {
		return &ConfigError{Field: "monitor.daysThreshold", Reason: "must not be negative"}
	}
	if c.SMTP.Server == "" {
		return &ConfigError{Field: "smtp.server", Reason: "must not be empty"}
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = params.DefaultSMTPPort
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		return &ConfigError{Field: "smtp.port", Reason: "must be in range 1-65535"}
	}
	if c.SMTP.FromEmail == "" {
		return &ConfigError{Field: "smtp.fromEmail", Reason: "must not be empty"}
	}
	if len(c.SMTP.ToEmails) == 0 {
		return &ConfigError{Field: "smtp.toEmails", Reason: "at least one recipient is required"}
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")

	viper.SetDefault("monitor.daysThreshold", params.DefaultDaysThreshold)
	viper.SetDefault("monitor.includeProjectTokens", true)
	viper.SetDefault("monitor.includeGroupTokens", true)
	viper.SetDefault("smtp.useSSL", true)

	viper.SetEnvPrefix("TOKMON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
