package docker

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	containertypes "github.com/docker/docker/api/types/container"
	"github.com/moby/moby/pkg/stdcopy"
)

// ContainerLogs fetches and demultiplexes container output. tail <= 0 means
// the full history; since <= 0 means no time filter.
func (s *sdkClient) ContainerLogs(ctx context.Context, id string, tail int, since time.Duration) (Logs, error) {
	opts := containertypes.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Timestamps: false,
	}
	if tail > 0 {
		opts.Tail = strconv.Itoa(tail)
	}
	if since > 0 {
		opts.Since = time.Now().Add(-since).Format(time.RFC3339)
	}

	rc, err := s.cli.ContainerLogs(ctx, id, opts)
	if err != nil {
		return Logs{}, fmt.Errorf("logs for container %s: %w", id, err)
	}
	defer rc.Close()

	// The engine multiplexes stdout and stderr over one stream for
	// non-tty containers; stdcopy splits them back apart. A tty container
	// sends raw bytes, in which case stdcopy fails and we fall back.
	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, rc); err != nil {
		raw, rerr := s.rawLogs(ctx, id, opts)
		if rerr != nil {
			return Logs{}, fmt.Errorf("read logs for container %s: %w", id, err)
		}
		return Logs{Stdout: raw}, nil
	}
	return Logs{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func (s *sdkClient) rawLogs(ctx context.Context, id string, opts containertypes.LogsOptions) (string, error) {
	rc, err := s.cli.ContainerLogs(ctx, id, opts)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
