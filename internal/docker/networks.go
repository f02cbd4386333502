package docker

import (
	"context"
	"fmt"
	"sort"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"

	"github.com/dockdeck/dockdeck/internal/logging"
)

func (s *sdkClient) ListNetworks(ctx context.Context) ([]Network, error) {
	list, err := s.cli.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	out := make([]Network, 0, len(list))
	for _, n := range list {
		nw := Network{
			ID:       shortID(n.ID),
			Name:     n.Name,
			Driver:   n.Driver,
			Scope:    n.Scope,
			Internal: n.Internal,
		}
		if len(n.IPAM.Config) > 0 {
			nw.Subnet = n.IPAM.Config[0].Subnet
			nw.Gateway = n.IPAM.Config[0].Gateway
		}
		// The list response carries no endpoints; inspect for attachments.
		insp, err := s.cli.NetworkInspect(ctx, n.ID, network.InspectOptions{})
		if err == nil {
			for id, ep := range insp.Containers {
				nw.Attached = append(nw.Attached, AttachedContainer{
					ID:   shortID(id),
					Name: ep.Name,
					IPv4: ep.IPv4Address,
				})
			}
			sort.Slice(nw.Attached, func(i, j int) bool { return nw.Attached[i].Name < nw.Attached[j].Name })
		}
		out = append(out, nw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *sdkClient) CreateNetwork(ctx context.Context, name, driver, subnet, gateway string) (string, error) {
	logging.Get().Info().Str("network", name).Str("driver", driver).Msg("creating network")
	opts := network.CreateOptions{Driver: driver}
	if subnet != "" || gateway != "" {
		opts.IPAM = &network.IPAM{
			Config: []network.IPAMConfig{{Subnet: subnet, Gateway: gateway}},
		}
	}
	resp, err := s.cli.NetworkCreate(ctx, name, opts)
	if err != nil {
		return "", fmt.Errorf("create network %s: %w", name, err)
	}
	return resp.ID, nil
}

func (s *sdkClient) RemoveNetwork(ctx context.Context, id string) error {
	logging.Get().Info().Str("network", id).Msg("removing network")
	if err := s.cli.NetworkRemove(ctx, id); err != nil {
		return fmt.Errorf("remove network %s: %w", id, err)
	}
	return nil
}

func (s *sdkClient) ConnectContainer(ctx context.Context, networkID, containerID string) error {
	logging.Get().Info().Str("network", networkID).Str("container", containerID).Msg("connecting container to network")
	if err := s.cli.NetworkConnect(ctx, networkID, containerID, nil); err != nil {
		return fmt.Errorf("connect container %s to network %s: %w", containerID, networkID, err)
	}
	return nil
}

func (s *sdkClient) DisconnectContainer(ctx context.Context, networkID, containerID string, force bool) error {
	logging.Get().Info().Str("network", networkID).Str("container", containerID).Msg("disconnecting container from network")
	if err := s.cli.NetworkDisconnect(ctx, networkID, containerID, force); err != nil {
		return fmt.Errorf("disconnect container %s from network %s: %w", containerID, networkID, err)
	}
	return nil
}

func (s *sdkClient) PruneNetworks(ctx context.Context) (int, error) {
	logging.Get().Info().Msg("pruning unused networks")
	report, err := s.cli.NetworksPrune(ctx, filters.NewArgs())
	if err != nil {
		return 0, fmt.Errorf("prune networks: %w", err)
	}
	return len(report.NetworksDeleted), nil
}
