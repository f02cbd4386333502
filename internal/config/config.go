package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for Dockdeck
type Config struct {
	// ListenPort is the port the dashboard HTTP server binds to.
	ListenPort int `json:"listen_port" yaml:"listen_port"`
	// DockerHost overrides the engine endpoint. Empty means the SDK's
	// environment defaults (DOCKER_HOST or the local socket).
	DockerHost string `json:"docker_host" yaml:"docker_host"`

	// RequestTimeout bounds every individual engine call made on behalf of
	// a page render or action.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	// StopTimeout is passed to the engine when stopping or restarting a
	// container (seconds granularity on the wire).
	StopTimeout time.Duration `json:"stop_timeout" yaml:"stop_timeout"`
	// ExecTimeout bounds commands run inside a container from the exec page.
	ExecTimeout time.Duration `json:"exec_timeout" yaml:"exec_timeout"`

	// DefaultLogTail is the tail size preselected on the logs page.
	DefaultLogTail int `json:"default_log_tail" yaml:"default_log_tail"`

	// Metrics
	MetricsEnabled bool `json:"metrics_enabled" yaml:"metrics_enabled"`
	MetricsPort    int  `json:"metrics_port" yaml:"metrics_port"`

	// Action notification webhooks (all optional)
	GenericWebhookURL string `json:"generic_webhook_url" yaml:"generic_webhook_url"`
	SlackWebhook      string `json:"slack_webhook" yaml:"slack_webhook"`
	DiscordWebhook    string `json:"discord_webhook" yaml:"discord_webhook"`

	// Logging
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file" yaml:"log_file"`
}

// DefaultConfig returns a sane default configuration
func DefaultConfig() *Config {
	return &Config{
		ListenPort:     8490,
		RequestTimeout: 30 * time.Second,
		StopTimeout:    10 * time.Second,
		ExecTimeout:    30 * time.Second,
		DefaultLogTail: 100,

		// Metrics are opt-in
		MetricsEnabled: false,
		MetricsPort:    9490,

		LogLevel: "info",
	}
}

// Validate returns a list of non-fatal configuration warnings.
func (c *Config) Validate() []string {
	var warnings []string
	checks := []struct {
		cond bool
		msg  string
	}{
		{c.ListenPort <= 0 || c.ListenPort > 65535, fmt.Sprintf("listen port %d is outside the valid range", c.ListenPort)},
		{c.MetricsEnabled && (c.MetricsPort <= 0 || c.MetricsPort > 65535), fmt.Sprintf("metrics port %d is outside the valid range", c.MetricsPort)},
		{c.MetricsEnabled && c.MetricsPort == c.ListenPort, "metrics port equals the dashboard port; the metrics listener will fail to bind"},
		{c.RequestTimeout <= 0, "request timeout must be positive"},
		{c.StopTimeout < time.Second, "stop timeout below one second is truncated to zero by the engine"},
		{c.DefaultLogTail < 0, "default log tail cannot be negative"},
	}
	for _, ch := range checks {
		if ch.cond {
			warnings = append(warnings, ch.msg)
		}
	}
	return warnings
}

// LoadConfigFromFile loads config from a YAML/JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
