package docker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	containertypes "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"

	"github.com/dockdeck/dockdeck/internal/logging"
	"github.com/dockdeck/dockdeck/internal/metrics"
)

// RecreateContainer applies patch by replacing the container. The old
// container is renamed aside and kept until the new one is confirmed
// running, so any failure can restore it under its original name. Returns
// the new container's id.
func (s *sdkClient) RecreateContainer(ctx context.Context, id string, patch ConfigPatch) (string, error) {
	insp, err := s.cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", fmt.Errorf("inspect container %s: %w", id, err)
	}
	origName := strings.TrimPrefix(insp.Name, "/")
	wasRunning := insp.State != nil && insp.State.Running

	newCfg, hostCfg, netCfg, err := buildRecreateConfig(insp, patch)
	if err != nil {
		return "", err
	}

	if wasRunning {
		timeout := int(s.stopTimeout.Seconds())
		if err := s.cli.ContainerStop(ctx, insp.ID, containertypes.StopOptions{Timeout: &timeout}); err != nil {
			return "", fmt.Errorf("stop container before recreate: %w", err)
		}
	}

	tmpName := fmt.Sprintf("%s-old-%d", origName, time.Now().UnixNano())
	logging.Get().Info().Str("container", insp.ID).Str("tmp_name", tmpName).Msg("renaming old container aside")
	if err := s.cli.ContainerRename(ctx, insp.ID, tmpName); err != nil {
		return "", fmt.Errorf("rename old container: %w", err)
	}

	resp, err := s.cli.ContainerCreate(ctx, newCfg, hostCfg, netCfg, nil, origName)
	if err != nil {
		s.restoreOld(ctx, insp.ID, origName, wasRunning)
		return "", fmt.Errorf("create replacement container: %w", err)
	}

	if err := s.cli.ContainerStart(ctx, resp.ID, containertypes.StartOptions{}); err != nil {
		logging.Get().Error().Err(err).Str("new", resp.ID).Msg("start replacement failed; rolling back")
		_ = s.cli.ContainerRemove(ctx, resp.ID, containertypes.RemoveOptions{Force: true})
		s.restoreOld(ctx, insp.ID, origName, wasRunning)
		return "", fmt.Errorf("start replacement container: %w", err)
	}

	if err := s.verifyRunning(ctx, resp.ID); err != nil {
		logging.Get().Warn().Err(err).Str("new", resp.ID).Msg("replacement did not stay running; rolling back")
		_ = s.cli.ContainerRemove(ctx, resp.ID, containertypes.RemoveOptions{Force: true})
		s.restoreOld(ctx, insp.ID, origName, wasRunning)
		return "", fmt.Errorf("replacement container failed verification: %w", err)
	}

	if err := s.cli.ContainerRemove(ctx, insp.ID, containertypes.RemoveOptions{Force: true}); err != nil {
		// New container is healthy; losing the old husk is a warning, not a failure.
		logging.Get().Warn().Err(err).Str("old", insp.ID).Msg("failed removing old container after recreate")
	}
	logging.Get().Info().Str("container", origName).Str("new_id", resp.ID).Msg("recreated container with new configuration")
	return resp.ID, nil
}

// restoreOld renames the stashed container back and restarts it if it was
// running before the recreate attempt.
func (s *sdkClient) restoreOld(ctx context.Context, oldID, origName string, wasRunning bool) {
	metrics.IncEngineError()
	if err := s.cli.ContainerRename(ctx, oldID, origName); err != nil {
		logging.Get().Warn().Err(err).Str("container", oldID).Msg("failed restoring original name during rollback")
	}
	if wasRunning {
		if err := s.cli.ContainerStart(ctx, oldID, containertypes.StartOptions{}); err != nil {
			logging.Get().Warn().Err(err).Str("container", oldID).Msg("failed restarting old container during rollback")
		}
	}
}

// verifyRunning polls the new container until it is running, or fails once
// it exits or the retry budget is exhausted.
func (s *sdkClient) verifyRunning(ctx context.Context, id string) error {
	for i := 0; i < verifyRetries; i++ {
		st, err := s.cli.ContainerInspect(ctx, id)
		if err != nil {
			return fmt.Errorf("inspect replacement: %w", err)
		}
		if st.State != nil {
			if st.State.Running {
				return nil
			}
			if st.State.Status == "exited" || st.State.Status == "dead" {
				return fmt.Errorf("replacement is %s with exit code %d", st.State.Status, st.State.ExitCode)
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("verification canceled: %w", ctx.Err())
		case <-time.After(verifyInterval):
		}
	}
	return fmt.Errorf("replacement not running after %s", time.Duration(verifyRetries)*verifyInterval)
}

// buildRecreateConfig clones the inspected configuration and applies the
// patch on top of it.
func buildRecreateConfig(insp types.ContainerJSON, patch ConfigPatch) (*containertypes.Config, *containertypes.HostConfig, *network.NetworkingConfig, error) {
	newCfg := insp.Config
	if newCfg == nil {
		newCfg = &containertypes.Config{}
	}
	if patch.Image != "" {
		newCfg.Image = patch.Image
	}
	if patch.Env != nil {
		newCfg.Env = patch.Env
	}

	hostCfg := insp.HostConfig
	if hostCfg == nil {
		hostCfg = &containertypes.HostConfig{}
	}
	if patch.RestartPolicy != "" {
		hostCfg.RestartPolicy = containertypes.RestartPolicy{
			Name: containertypes.RestartPolicyMode(patch.RestartPolicy),
		}
	}
	if patch.PortBindings != nil {
		exposed, bindings, err := nat.ParsePortSpecs(patch.PortBindings)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parse port bindings: %w", err)
		}
		newCfg.ExposedPorts = exposed
		hostCfg.PortBindings = bindings
	}

	var netCfg *network.NetworkingConfig
	if insp.NetworkSettings != nil && insp.NetworkSettings.Networks != nil {
		netCfg = &network.NetworkingConfig{EndpointsConfig: insp.NetworkSettings.Networks}
	}
	return newCfg, hostCfg, netCfg, nil
}
