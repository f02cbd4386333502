package docker

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	imageapi "github.com/docker/docker/api/types/image"

	"github.com/dockdeck/dockdeck/internal/logging"
	"github.com/dockdeck/dockdeck/internal/metrics"
)

func (s *sdkClient) ListImages(ctx context.Context) ([]Image, error) {
	list, err := s.cli.ImageList(ctx, imageapi.ListOptions{All: false})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	out := make([]Image, 0, len(list))
	for _, img := range list {
		ref := shortID(img.ID)
		if len(img.RepoTags) > 0 && img.RepoTags[0] != "<none>:<none>" {
			ref = img.RepoTags[0]
		}
		out = append(out, Image{
			ID:         shortID(img.ID),
			Reference:  ref,
			Tags:       img.RepoTags,
			Size:       img.Size,
			Created:    time.Unix(img.Created, 0),
			Containers: int(img.Containers),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })
	return out, nil
}

func (s *sdkClient) PullImage(ctx context.Context, ref string) (string, string, error) {
	logging.Get().Info().Str("image", ref).Msg("pulling image")
	rc, err := s.cli.ImagePull(ctx, ref, imageapi.PullOptions{})
	if err != nil {
		logging.Get().Error().Err(err).Str("image", ref).Msg("image pull failed")
		metrics.IncEngineError()
		return "", "", fmt.Errorf("image pull %s: %w", ref, err)
	}
	defer rc.Close()
	// consume the progress stream to completion
	_, _ = io.Copy(io.Discard, rc)

	inspected, _, err := s.cli.ImageInspectWithRaw(ctx, ref)
	if err != nil {
		logging.Get().Error().Err(err).Str("image", ref).Msg("inspect image failed")
		return "", "", fmt.Errorf("inspect image %s: %w", ref, err)
	}
	repoDigest := ""
	if len(inspected.RepoDigests) > 0 {
		repoDigest = inspected.RepoDigests[0]
	}
	logging.Get().Info().Str("image", ref).Str("id", inspected.ID).Str("digest", repoDigest).Msg("pulled image")
	return inspected.ID, repoDigest, nil
}

func (s *sdkClient) RemoveImage(ctx context.Context, id string, force bool) error {
	logging.Get().Info().Str("image", id).Msg("removing image")
	_, err := s.cli.ImageRemove(ctx, id, imageapi.RemoveOptions{Force: force, PruneChildren: false})
	if err != nil {
		logging.Get().Error().Err(err).Str("image", id).Msg("failed removing image")
		return fmt.Errorf("remove image %s: %w", id, err)
	}
	return nil
}
