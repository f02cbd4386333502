package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	containertypes "github.com/docker/docker/api/types/container"

	"github.com/dockdeck/dockdeck/internal/logging"
)

// maxFileSize bounds single-file downloads so one click cannot buffer an
// arbitrarily large container file in memory.
const maxFileSize = 64 << 20

// ListPath lists a directory inside the container. It runs `ls -1Ap` so it
// works on any image with a POSIX shell toolset; entries ending in "/" are
// directories.
func (s *sdkClient) ListPath(ctx context.Context, id, dir string) ([]PathEntry, error) {
	res, err := s.Exec(ctx, id, "/", []string{"ls", "-1Ap", "--", dir})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("list %s: %s", dir, strings.TrimSpace(res.Stderr))
	}
	var out []PathEntry
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		isDir := strings.HasSuffix(line, "/")
		out = append(out, PathEntry{Name: strings.TrimSuffix(line, "/"), IsDir: isDir})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ReadFile copies a single regular file out of the container. The engine
// always wraps the content in a tar stream.
func (s *sdkClient) ReadFile(ctx context.Context, id, filePath string) (FileContent, error) {
	stat, err := s.cli.ContainerStatPath(ctx, id, filePath)
	if err != nil {
		return FileContent{}, fmt.Errorf("stat %s: %w", filePath, err)
	}
	if stat.Mode.IsDir() {
		return FileContent{}, fmt.Errorf("%s is a directory", filePath)
	}
	if stat.Size > maxFileSize {
		return FileContent{}, fmt.Errorf("%s is %d bytes, larger than the %d byte download limit", filePath, stat.Size, maxFileSize)
	}

	rc, _, err := s.cli.CopyFromContainer(ctx, id, filePath)
	if err != nil {
		return FileContent{}, fmt.Errorf("copy from container: %w", err)
	}
	defer rc.Close()

	tr := tar.NewReader(rc)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return FileContent{}, fmt.Errorf("no file content in archive for %s", filePath)
		}
		if err != nil {
			return FileContent{}, fmt.Errorf("read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(tr, maxFileSize))
		if err != nil {
			return FileContent{}, fmt.Errorf("read file data: %w", err)
		}
		return FileContent{Name: path.Base(hdr.Name), Size: hdr.Size, Data: data}, nil
	}
}

// WriteFile uploads data as a single file into dir inside the container.
func (s *sdkClient) WriteFile(ctx context.Context, id, dir, name string, data []byte) error {
	logging.Get().Info().Str("container", id).Str("dir", dir).Str("file", name).Int("bytes", len(data)).Msg("uploading file")

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	hdr := &tar.Header{
		Name: path.Base(name),
		Mode: 0o644,
		Size: int64(len(data)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write archive header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("write archive data: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	err := s.cli.CopyToContainer(ctx, id, dir, &buf, containertypes.CopyToContainerOptions{})
	if err != nil {
		return fmt.Errorf("copy to container: %w", err)
	}
	return nil
}
