package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dockdeck/dockdeck/internal/config"
	"github.com/dockdeck/dockdeck/internal/docker"
	"github.com/dockdeck/dockdeck/internal/logging"
	"github.com/dockdeck/dockdeck/internal/metrics"
	"github.com/dockdeck/dockdeck/internal/notify"
	"github.com/dockdeck/dockdeck/internal/web"
)

func main() {
	cfgFile := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "Dashboard listen port (overrides config)")
	dockerHost := flag.String("docker-host", "", "Docker engine endpoint (overrides config)")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *cfgFile != "" {
		c, err := config.LoadConfigFromFile(*cfgFile)
		if err != nil {
			log.Fatalf("failed loading config: %v", err)
		}
		cfg = c
	}

	if err := config.ApplyEnvOverrides(cfg); err != nil {
		log.Fatalf("invalid environment configuration: %v", err)
	}

	// flags have highest precedence
	if *port != 0 {
		cfg.ListenPort = *port
	}
	if *dockerHost != "" {
		cfg.DockerHost = *dockerHost
	}

	cleanup := initLogging(cfg)
	defer cleanup()

	for _, warning := range cfg.Validate() {
		logging.Get().Warn().Msg(warning)
	}

	initMetrics(cfg)
	ensureDockerSocketAccessible(cfg)

	cli, err := docker.NewClient(docker.Options{
		Host:        cfg.DockerHost,
		StopTimeout: cfg.StopTimeout,
	})
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("failed to create docker client")
	}

	notifier := notify.FromConfig(cfg)
	if notifier.Len() > 0 {
		logging.Get().Info().Int("services", notifier.Len()).Msg("action notifications enabled")
	}

	server := web.New(cfg, cli, notifier)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Get().Fatal().Err(err).Msg("dashboard listener failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	// Graceful shutdown: give up to 5 seconds for in-flight requests and
	// pending notifications.
	logging.Get().Info().Msg("shutdown signal received, draining requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Get().Warn().Err(err).Msg("shutdown did not complete cleanly")
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		logging.Get().Warn().Err(err).Msg("notifications still pending at exit")
	}
}

// initLogging initializes the log subsystem and returns a cleanup func.
func initLogging(cfg *config.Config) func() {
	cleanup, err := logging.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	return cleanup
}

// initMetrics starts the optional metrics listener.
func initMetrics(cfg *config.Config) {
	if !cfg.MetricsEnabled {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.PromHandler())
		mux.Handle("/status", metrics.JSONHandler())
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		logging.Get().Info().Str("addr", addr).Msg("starting metrics server")
		_ = http.ListenAndServe(addr, mux)
	}()
}

// checkDockerSocketAccess verifies the socket exists and is openable for
// read/write. A missing socket is not fatal here since the endpoint may be
// tcp or a custom host.
func checkDockerSocketAccess(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return err
		}
		_ = f.Close()
		return nil
	}
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ensureDockerSocketAccessible warns early about the most common deployment
// pitfall: the dashboard user not being allowed to open the socket.
func ensureDockerSocketAccessible(cfg *config.Config) {
	if cfg.DockerHost != "" && !strings.HasPrefix(cfg.DockerHost, "unix://") {
		return
	}
	path := "/var/run/docker.sock"
	if strings.HasPrefix(cfg.DockerHost, "unix://") {
		path = strings.TrimPrefix(cfg.DockerHost, "unix://")
	}
	if err := checkDockerSocketAccess(path); err != nil {
		if os.IsPermission(err) {
			logging.Get().Fatal().Str("socket", path).Msg("permission denied accessing the Docker socket: add the dashboard user to the docker group or bind mount with a matching GID")
		}
		logging.Get().Warn().Err(err).Str("socket", path).Msg("problem accessing the Docker socket; continuing but pages may show the engine as unreachable")
	}
}
