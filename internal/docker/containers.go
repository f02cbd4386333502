package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	containertypes "github.com/docker/docker/api/types/container"

	"github.com/dockdeck/dockdeck/internal/logging"
)

func (s *sdkClient) ListContainers(ctx context.Context, all bool) ([]Container, error) {
	list, err := s.cli.ContainerList(ctx, containertypes.ListOptions{All: all})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	out := make([]Container, 0, len(list))
	for _, c := range list {
		out = append(out, Container{
			ID:      shortID(c.ID),
			Name:    containerName(c.Names),
			Image:   c.Image,
			State:   c.State,
			Status:  c.Status,
			Created: time.Unix(c.Created, 0),
			Ports:   mapPorts(c.Ports),
			Labels:  c.Labels,
		})
	}
	// Engine order is creation order; names read better on a page.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *sdkClient) InspectContainer(ctx context.Context, id string) (ContainerDetail, error) {
	insp, err := s.cli.ContainerInspect(ctx, id)
	if err != nil {
		return ContainerDetail{}, fmt.Errorf("inspect container %s: %w", id, err)
	}
	return mapDetail(insp), nil
}

func (s *sdkClient) StartContainer(ctx context.Context, id string) error {
	logging.Get().Info().Str("container", id).Msg("starting container")
	if err := s.cli.ContainerStart(ctx, id, containertypes.StartOptions{}); err != nil {
		return fmt.Errorf("start container %s: %w", id, err)
	}
	return nil
}

func (s *sdkClient) StopContainer(ctx context.Context, id string) error {
	logging.Get().Info().Str("container", id).Msg("stopping container")
	timeout := int(s.stopTimeout.Seconds())
	if err := s.cli.ContainerStop(ctx, id, containertypes.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("stop container %s: %w", id, err)
	}
	return nil
}

func (s *sdkClient) RestartContainer(ctx context.Context, id string) error {
	logging.Get().Info().Str("container", id).Msg("restarting container")
	timeout := int(s.stopTimeout.Seconds())
	if err := s.cli.ContainerRestart(ctx, id, containertypes.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("restart container %s: %w", id, err)
	}
	return nil
}

func (s *sdkClient) RemoveContainer(ctx context.Context, id string, force bool) error {
	logging.Get().Info().Str("container", id).Bool("force", force).Msg("removing container")
	err := s.cli.ContainerRemove(ctx, id, containertypes.RemoveOptions{Force: force})
	if err != nil {
		return fmt.Errorf("remove container %s: %w", id, err)
	}
	return nil
}

func (s *sdkClient) RenameContainer(ctx context.Context, id, newName string) error {
	logging.Get().Info().Str("container", id).Str("name", newName).Msg("renaming container")
	if err := s.cli.ContainerRename(ctx, id, newName); err != nil {
		return fmt.Errorf("rename container %s: %w", id, err)
	}
	return nil
}

// containerName returns the first engine name without the leading slash.
func containerName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}

func mapPorts(ports []containertypes.Port) []Port {
	out := make([]Port, 0, len(ports))
	for _, p := range ports {
		out = append(out, Port{
			Private: int(p.PrivatePort),
			Public:  int(p.PublicPort),
			HostIP:  p.IP,
			Proto:   p.Type,
		})
	}
	return out
}

func mapDetail(insp types.ContainerJSON) ContainerDetail {
	d := ContainerDetail{
		ID:   insp.ID,
		Name: strings.TrimPrefix(insp.Name, "/"),
	}
	if insp.Config != nil {
		d.Image = insp.Config.Image
		d.Cmd = insp.Config.Cmd
		d.Entrypoint = insp.Config.Entrypoint
		d.WorkingDir = insp.Config.WorkingDir
		d.Env = insp.Config.Env
	}
	if insp.State != nil {
		d.State = insp.State.Status
		d.Status = insp.State.Status
		d.ExitCode = insp.State.ExitCode
		if t, err := time.Parse(time.RFC3339Nano, insp.State.StartedAt); err == nil {
			d.StartedAt = t
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, insp.Created); err == nil {
		d.Created = t
	}
	if insp.HostConfig != nil {
		d.RestartPolicy = string(insp.HostConfig.RestartPolicy.Name)
	}
	for _, m := range insp.Mounts {
		d.Mounts = append(d.Mounts, Mount{
			Type:        string(m.Type),
			Name:        m.Name,
			Source:      m.Source,
			Destination: m.Destination,
			RW:          m.RW,
		})
	}
	if insp.NetworkSettings != nil {
		for name, ep := range insp.NetworkSettings.Networks {
			if ep == nil {
				continue
			}
			d.Networks = append(d.Networks, NetworkAttachment{
				Name: name,
				IPv4: ep.IPAddress,
				IPv6: ep.GlobalIPv6Address,
			})
		}
		sort.Slice(d.Networks, func(i, j int) bool { return d.Networks[i].Name < d.Networks[j].Name })
		for cp, bindings := range insp.NetworkSettings.Ports {
			if len(bindings) == 0 {
				d.Ports = append(d.Ports, Port{Private: cp.Int(), Proto: cp.Proto()})
				continue
			}
			for _, b := range bindings {
				pub := 0
				fmt.Sscanf(b.HostPort, "%d", &pub)
				d.Ports = append(d.Ports, Port{
					Private: cp.Int(),
					Public:  pub,
					HostIP:  b.HostIP,
					Proto:   cp.Proto(),
				})
			}
		}
		sort.Slice(d.Ports, func(i, j int) bool { return d.Ports[i].Private < d.Ports[j].Private })
	}
	return d
}
