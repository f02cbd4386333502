package docker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/docker/docker/api/types/filters"
	volumeapi "github.com/docker/docker/api/types/volume"

	"github.com/dockdeck/dockdeck/internal/logging"
)

func (s *sdkClient) ListVolumes(ctx context.Context) ([]Volume, error) {
	resp, err := s.cli.VolumeList(ctx, volumeapi.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list volumes: %w", err)
	}
	out := make([]Volume, 0, len(resp.Volumes))
	for _, v := range resp.Volumes {
		if v == nil {
			continue
		}
		out = append(out, mapVolume(*v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *sdkClient) CreateVolume(ctx context.Context, name, driver string, labels map[string]string) (Volume, error) {
	logging.Get().Info().Str("volume", name).Str("driver", driver).Msg("creating volume")
	v, err := s.cli.VolumeCreate(ctx, volumeapi.CreateOptions{
		Name:   name,
		Driver: driver,
		Labels: labels,
	})
	if err != nil {
		return Volume{}, fmt.Errorf("create volume %s: %w", name, err)
	}
	return mapVolume(v), nil
}

func (s *sdkClient) RemoveVolume(ctx context.Context, name string, force bool) error {
	logging.Get().Info().Str("volume", name).Bool("force", force).Msg("removing volume")
	if err := s.cli.VolumeRemove(ctx, name, force); err != nil {
		return fmt.Errorf("remove volume %s: %w", name, err)
	}
	return nil
}

func (s *sdkClient) PruneVolumes(ctx context.Context) (int, error) {
	logging.Get().Info().Msg("pruning unused volumes")
	report, err := s.cli.VolumesPrune(ctx, filters.NewArgs())
	if err != nil {
		return 0, fmt.Errorf("prune volumes: %w", err)
	}
	return len(report.VolumesDeleted), nil
}

func mapVolume(v volumeapi.Volume) Volume {
	created, _ := time.Parse(time.RFC3339, v.CreatedAt)
	return Volume{
		Name:       v.Name,
		Driver:     v.Driver,
		Mountpoint: v.Mountpoint,
		Scope:      v.Scope,
		CreatedAt:  created,
		Labels:     v.Labels,
	}
}
