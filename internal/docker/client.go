package docker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	containertypes "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	imageapi "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/system"
	volumeapi "github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

const (
	shortIDLen       = 12
	execPollInterval = 500 * time.Millisecond
	verifyRetries    = 20
	verifyInterval   = 500 * time.Millisecond
)

// Client is the interface the web layer uses for all engine operations.
// Every method performs exactly one logical engine interaction; callers own
// the context and therefore the timeout.
type Client interface {
	Ping(ctx context.Context) error
	Info(ctx context.Context) (EngineInfo, error)

	ListContainers(ctx context.Context, all bool) ([]Container, error)
	InspectContainer(ctx context.Context, id string) (ContainerDetail, error)
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string) error
	RestartContainer(ctx context.Context, id string) error
	RemoveContainer(ctx context.Context, id string, force bool) error
	RenameContainer(ctx context.Context, id, newName string) error

	// RecreateContainer applies a ConfigPatch by replacing the container:
	// the old container is renamed aside, a new one is created and started
	// under the original name, and the old one is removed once the new one
	// is confirmed running. Any failure restores the old container.
	RecreateContainer(ctx context.Context, id string, patch ConfigPatch) (string, error)

	ListImages(ctx context.Context) ([]Image, error)
	// PullImage pulls the reference and returns the resulting image ID and
	// repo digest when available.
	PullImage(ctx context.Context, ref string) (string, string, error)
	RemoveImage(ctx context.Context, id string, force bool) error

	ListVolumes(ctx context.Context) ([]Volume, error)
	CreateVolume(ctx context.Context, name, driver string, labels map[string]string) (Volume, error)
	RemoveVolume(ctx context.Context, name string, force bool) error
	PruneVolumes(ctx context.Context) (int, error)

	ListNetworks(ctx context.Context) ([]Network, error)
	CreateNetwork(ctx context.Context, name, driver, subnet, gateway string) (string, error)
	RemoveNetwork(ctx context.Context, id string) error
	ConnectContainer(ctx context.Context, networkID, containerID string) error
	DisconnectContainer(ctx context.Context, networkID, containerID string, force bool) error
	PruneNetworks(ctx context.Context) (int, error)

	ContainerLogs(ctx context.Context, id string, tail int, since time.Duration) (Logs, error)
	Exec(ctx context.Context, id, workdir string, cmd []string) (ExecResult, error)
	PathExists(ctx context.Context, id, path string) (bool, error)

	ListPath(ctx context.Context, id, path string) ([]PathEntry, error)
	ReadFile(ctx context.Context, id, path string) (FileContent, error)
	WriteFile(ctx context.Context, id, dir, name string, data []byte) error
}

// engineAPI is the subset of the Docker SDK the dashboard touches. Tests
// substitute a fake; production wires *client.Client.
type engineAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	Info(ctx context.Context) (system.Info, error)

	ContainerList(ctx context.Context, options containertypes.ListOptions) ([]containertypes.Summary, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerStart(ctx context.Context, containerID string, options containertypes.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options containertypes.StopOptions) error
	ContainerRestart(ctx context.Context, containerID string, options containertypes.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options containertypes.RemoveOptions) error
	ContainerRename(ctx context.Context, containerID, newName string) error
	ContainerCreate(ctx context.Context, config *containertypes.Config, hostConfig *containertypes.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (containertypes.CreateResponse, error)
	ContainerLogs(ctx context.Context, containerID string, options containertypes.LogsOptions) (io.ReadCloser, error)
	ContainerExecCreate(ctx context.Context, container string, config containertypes.ExecOptions) (containertypes.ExecCreateResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config containertypes.ExecStartOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (containertypes.ExecInspect, error)
	ContainerStatPath(ctx context.Context, containerID, path string) (containertypes.PathStat, error)
	CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, containertypes.PathStat, error)
	CopyToContainer(ctx context.Context, containerID, dstPath string, content io.Reader, options containertypes.CopyToContainerOptions) error

	ImageList(ctx context.Context, options imageapi.ListOptions) ([]imageapi.Summary, error)
	ImagePull(ctx context.Context, refStr string, options imageapi.PullOptions) (io.ReadCloser, error)
	ImageInspectWithRaw(ctx context.Context, image string) (types.ImageInspect, []byte, error)
	ImageRemove(ctx context.Context, image string, options imageapi.RemoveOptions) ([]imageapi.DeleteResponse, error)

	VolumeList(ctx context.Context, options volumeapi.ListOptions) (volumeapi.ListResponse, error)
	VolumeCreate(ctx context.Context, options volumeapi.CreateOptions) (volumeapi.Volume, error)
	VolumeRemove(ctx context.Context, volumeID string, force bool) error
	VolumesPrune(ctx context.Context, pruneFilters filters.Args) (volumeapi.PruneReport, error)

	NetworkList(ctx context.Context, options network.ListOptions) ([]network.Summary, error)
	NetworkInspect(ctx context.Context, networkID string, options network.InspectOptions) (network.Inspect, error)
	NetworkCreate(ctx context.Context, name string, options network.CreateOptions) (network.CreateResponse, error)
	NetworkRemove(ctx context.Context, networkID string) error
	NetworkConnect(ctx context.Context, networkID, containerID string, config *network.EndpointSettings) error
	NetworkDisconnect(ctx context.Context, networkID, containerID string, force bool) error
	NetworksPrune(ctx context.Context, pruneFilters filters.Args) (network.PruneReport, error)
}

// sdkClient is the production implementation using the official Docker SDK
type sdkClient struct {
	cli         engineAPI
	stopTimeout time.Duration
}

// Options tunes client behavior independent of the engine endpoint.
type Options struct {
	// Host is the engine endpoint; empty means the SDK environment defaults.
	Host string
	// StopTimeout is the grace period passed on stop and restart.
	StopTimeout time.Duration
}

// NewClient returns an SDK-backed engine client for the given options.
func NewClient(opts Options) (Client, error) {
	clientOpts := []client.Opt{client.WithAPIVersionNegotiation()}
	if opts.Host != "" {
		clientOpts = append(clientOpts, client.WithHost(opts.Host))
	} else {
		clientOpts = append(clientOpts, client.FromEnv)
	}
	c, err := client.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	st := opts.StopTimeout
	if st <= 0 {
		st = 10 * time.Second
	}
	return &sdkClient{cli: c, stopTimeout: st}, nil
}

func (s *sdkClient) Ping(ctx context.Context) error {
	_, err := s.cli.Ping(ctx)
	return err
}

func (s *sdkClient) Info(ctx context.Context) (EngineInfo, error) {
	info, err := s.cli.Info(ctx)
	if err != nil {
		return EngineInfo{}, fmt.Errorf("engine info: %w", err)
	}
	return EngineInfo{
		Name:              info.Name,
		ServerVersion:     info.ServerVersion,
		OperatingSystem:   info.OperatingSystem,
		Architecture:      info.Architecture,
		Containers:        info.Containers,
		ContainersRunning: info.ContainersRunning,
		ContainersPaused:  info.ContainersPaused,
		ContainersStopped: info.ContainersStopped,
		Images:            info.Images,
	}, nil
}

// shortID truncates engine ids (with or without a sha256: prefix) for display.
func shortID(id string) string {
	if i := len("sha256:"); len(id) > i && id[:i] == "sha256:" {
		id = id[i:]
	}
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
