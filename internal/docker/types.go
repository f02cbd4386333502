package docker

import "time"

// Container is the row-level view of a container as rendered by the
// dashboard. Fields are copied out of the engine's list response on every
// fetch; nothing here is authoritative.
type Container struct {
	ID      string            // short (12 char) id
	Name    string            // first name without the leading slash
	Image   string
	State   string // running, exited, paused, created, dead, restarting
	Status  string // engine's human status line, e.g. "Up 2 hours"
	Created time.Time
	Ports   []Port
	Labels  map[string]string
}

// Running reports whether the container's lifecycle state is "running".
func (c Container) Running() bool { return c.State == "running" }

// Port is one exposed or published container port.
type Port struct {
	Private int
	Public  int
	HostIP  string
	Proto   string
}

// ContainerDetail is the inspect-level view used by the detail, config and
// exec pages.
type ContainerDetail struct {
	ID            string // full id
	Name          string
	Image         string
	State         string
	Status        string
	ExitCode      int
	Created       time.Time
	StartedAt     time.Time
	Cmd           []string
	Entrypoint    []string
	WorkingDir    string
	Env           []string
	RestartPolicy string
	Mounts        []Mount
	Networks      []NetworkAttachment
	Ports         []Port
}

// Mount is a volume or bind mount attached to a container.
type Mount struct {
	Type        string
	Name        string
	Source      string
	Destination string
	RW          bool
}

// NetworkAttachment is one network a container is connected to.
type NetworkAttachment struct {
	Name string
	IPv4 string
	IPv6 string
}

// Image is the dashboard view of an engine image.
type Image struct {
	ID         string // short id without the sha256: prefix
	Reference  string // first repo:tag, or the short id for dangling images
	Tags       []string
	Size       int64
	Created    time.Time
	Containers int
}

// Volume is the dashboard view of an engine volume.
type Volume struct {
	Name       string
	Driver     string
	Mountpoint string
	Scope      string
	CreatedAt  time.Time
	Labels     map[string]string
}

// Network is the dashboard view of an engine network, including the
// containers currently attached to it.
type Network struct {
	ID       string // short id
	Name     string
	Driver   string
	Scope    string
	Internal bool
	Subnet   string
	Gateway  string
	Attached []AttachedContainer
}

// AttachedContainer is a container connected to a network.
type AttachedContainer struct {
	ID   string
	Name string
	IPv4 string
}

// Logs holds demultiplexed container output.
type Logs struct {
	Stdout string
	Stderr string
}

// ExecResult is the outcome of a command run inside a container.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// PathEntry is one entry of an in-container directory listing.
type PathEntry struct {
	Name  string
	IsDir bool
}

// FileContent is a single file copied out of a container.
type FileContent struct {
	Name string
	Size int64
	Data []byte
}

// ConfigPatch describes the container settings the config page can change.
// Zero values mean "keep the current setting".
type ConfigPatch struct {
	Image         string
	Env           []string // full replacement set when non-nil
	RestartPolicy string   // no, on-failure, always, unless-stopped
	PortBindings  []string // "hostPort:containerPort/proto" specs, replacement set when non-nil
}

// EngineInfo summarizes the runtime for the overview page.
type EngineInfo struct {
	Name              string
	ServerVersion     string
	OperatingSystem   string
	Architecture      string
	Containers        int
	ContainersRunning int
	ContainersPaused  int
	ContainersStopped int
	Images            int
}
