package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
//
// Environment variables supported:
// - DOCKDECK_PORT (int, e.g. 8490)
// - DOCKDECK_DOCKER_HOST (string, e.g. "unix:///var/run/docker.sock")
// - DOCKDECK_REQUEST_TIMEOUT (duration, e.g. "30s")
// - DOCKDECK_STOP_TIMEOUT (duration, e.g. "10s")
// - DOCKDECK_EXEC_TIMEOUT (duration, e.g. "1m")
// - DOCKDECK_LOG_TAIL (int, e.g. 100)
// - DOCKDECK_METRICS_ENABLED (bool, "true"/"false")
// - DOCKDECK_METRICS_PORT (int, e.g. 9490)
// - DOCKDECK_GENERIC_WEBHOOK_URL / DOCKDECK_SLACK_WEBHOOK / DOCKDECK_DISCORD_WEBHOOK
// - DOCKDECK_LOG_LEVEL / DOCKDECK_LOG_FILE
func ApplyEnvOverrides(cfg *Config) error {
	if err := applyServerEnv(cfg); err != nil {
		return err
	}
	if err := applyTimeoutEnv(cfg); err != nil {
		return err
	}
	if err := applyMetricsEnv(cfg); err != nil {
		return err
	}
	applyWebhookEnv(cfg)
	applyLoggingEnv(cfg)
	return nil
}

func applyServerEnv(cfg *Config) error {
	if err := setIntEnv("DOCKDECK_PORT", func(n int) { cfg.ListenPort = n }); err != nil {
		return err
	}
	if v := os.Getenv("DOCKDECK_DOCKER_HOST"); v != "" {
		cfg.DockerHost = v
	}
	return setIntEnv("DOCKDECK_LOG_TAIL", func(n int) { cfg.DefaultLogTail = n })
}

func applyTimeoutEnv(cfg *Config) error {
	if err := setDurationEnv("DOCKDECK_REQUEST_TIMEOUT", func(d time.Duration) { cfg.RequestTimeout = d }); err != nil {
		return err
	}
	if err := setDurationEnv("DOCKDECK_STOP_TIMEOUT", func(d time.Duration) { cfg.StopTimeout = d }); err != nil {
		return err
	}
	return setDurationEnv("DOCKDECK_EXEC_TIMEOUT", func(d time.Duration) { cfg.ExecTimeout = d })
}

func applyMetricsEnv(cfg *Config) error {
	if err := setBoolEnv("DOCKDECK_METRICS_ENABLED", func(b bool) { cfg.MetricsEnabled = b }); err != nil {
		return err
	}
	return setIntEnv("DOCKDECK_METRICS_PORT", func(n int) { cfg.MetricsPort = n })
}

func applyWebhookEnv(cfg *Config) {
	if v := os.Getenv("DOCKDECK_GENERIC_WEBHOOK_URL"); v != "" {
		cfg.GenericWebhookURL = v
	}
	if v := os.Getenv("DOCKDECK_SLACK_WEBHOOK"); v != "" {
		cfg.SlackWebhook = v
	}
	if v := os.Getenv("DOCKDECK_DISCORD_WEBHOOK"); v != "" {
		cfg.DiscordWebhook = v
	}
}

func applyLoggingEnv(cfg *Config) {
	if v := os.Getenv("DOCKDECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DOCKDECK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

// setBoolEnv is a small helper to parse boolean environment variables
func setBoolEnv(env string, setter func(bool)) error {
	if v := os.Getenv(env); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(b)
	}
	return nil
}

func setIntEnv(env string, setter func(int)) error {
	if v := os.Getenv(env); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(n)
	}
	return nil
}

func setDurationEnv(env string, setter func(time.Duration)) error {
	if v := os.Getenv(env); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(d)
	}
	return nil
}
