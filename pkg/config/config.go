package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = ".jira-overdue-mover.yml"

// DefaultFallbackTeam is the reserved team key whose identity is used
// whenever a team-specific identity is absent.
const DefaultFallbackTeam = "GW"

// Config represents the job configuration
type Config struct {
	Jira           JiraConfig             `yaml:"jira"`
	Teams          map[string]*TeamFilter `yaml:"teams"`
	Fallback       string                 `yaml:"fallback,omitempty"`
	EnvMarker      string                 `yaml:"env_marker,omitempty"`
	ClosedStatuses []string               `yaml:"closed_statuses,omitempty"`
	Mail           MailConfig             `yaml:"mail"`
}

// JiraConfig represents tracker connection settings
type JiraConfig struct {
	URL      string `yaml:"url"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// TeamFilter identifies one team's saved filter and the identity used to
// query and update it. User and password are normally resolved from the
// environment, not stored in the file.
type TeamFilter struct {
	FilterID string `yaml:"filter_id"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// MailConfig represents the outbound report settings
type MailConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port,omitempty"`
	Recipients []string `yaml:"recipients"`
}

// defaultClosedStatuses covers the status names that mean "nothing left to
// do" on the tracked boards, including the localized Russian variants used
// by the deployment this job was written for.
var defaultClosedStatuses = []string{
	"done", "closed", "ready", "confirmed", "canceled", "cancelled", "mvp",
	"готово", "обработано", "закрыто", "закрыт", "решен", "выполнено",
}

// DefaultConfig returns a configuration with every optional knob filled in
func DefaultConfig() *Config {
	return &Config{
		Teams:          map[string]*TeamFilter{},
		Fallback:       DefaultFallbackTeam,
		EnvMarker:      "_devops_",
		ClosedStatuses: append([]string(nil), defaultClosedStatuses...),
		Mail: MailConfig{
			Port: 25,
		},
	}
}

// Load loads configuration from an explicit path, or searches the current
// and parent directories for ConfigFileName when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return nil, fmt.Errorf("configuration file %s not found in current or parent directories", ConfigFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()

	return config, nil
}

// applyDefaults backfills optional settings a sparse file left out
func (c *Config) applyDefaults() {
	if c.Fallback == "" {
		c.Fallback = DefaultFallbackTeam
	}
	if c.EnvMarker == "" {
		c.EnvMarker = "_devops_"
	}
	if len(c.ClosedStatuses) == 0 {
		c.ClosedStatuses = append([]string(nil), defaultClosedStatuses...)
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 25
	}
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Jira.URL == "" {
		return fmt.Errorf("jira url is required (config jira.url or --jiraurl)")
	}
	if len(c.Teams) == 0 {
		return fmt.Errorf("at least one team filter must be configured")
	}
	if _, ok := c.Teams[c.Fallback]; !ok {
		return fmt.Errorf("fallback team '%s' is not defined in teams", c.Fallback)
	}
	for name, team := range c.Teams {
		if team == nil || team.FilterID == "" {
			return fmt.Errorf("filter_id is required for team '%s'", name)
		}
	}
	if c.Mail.Host == "" {
		return fmt.Errorf("mail host is required")
	}
	if len(c.Mail.Recipients) == 0 {
		return fmt.Errorf("at least one mail recipient must be configured")
	}
	return nil
}

// findConfigFile searches for config file in current and parent directories
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// IsClosedStatus reports whether a status name counts as completed or
// cancelled. Matching is case-insensitive.
func (c *Config) IsClosedStatus(status string) bool {
	status = strings.ToLower(strings.TrimSpace(status))
	for _, closed := range c.ClosedStatuses {
		if status == strings.ToLower(closed) {
			return true
		}
	}
	return false
}
