package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dockdeck/dockdeck/internal/docker"
)

// This integration test is skipped by default. To run it locally, set
// RUN_DOCKER_INTEGRATION=1 in your environment. It requires a reachable
// Docker engine on the host where the test runs.
func TestEngineRoundTrip(t *testing.T) {
	if os.Getenv("RUN_DOCKER_INTEGRATION") != "1" {
		t.Skip("skipping integration test; set RUN_DOCKER_INTEGRATION=1 to enable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cli, err := docker.NewClient(docker.Options{})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if err := cli.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	info, err := cli.Info(ctx)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if info.ServerVersion == "" {
		t.Error("expected a server version from a live engine")
	}

	if _, err := cli.ListContainers(ctx, true); err != nil {
		t.Errorf("list containers failed: %v", err)
	}
	if _, err := cli.ListImages(ctx); err != nil {
		t.Errorf("list images failed: %v", err)
	}
	if _, err := cli.ListVolumes(ctx); err != nil {
		t.Errorf("list volumes failed: %v", err)
	}
	if _, err := cli.ListNetworks(ctx); err != nil {
		t.Errorf("list networks failed: %v", err)
	}
}
