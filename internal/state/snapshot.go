// Package state keeps the last successfully fetched runtime views so pages
// can keep rendering stale-but-honest data when the engine errors. Nothing
// here is persisted: the engine owns all state, the dashboard only
// remembers the most recent answer it got.
package state

import (
	"sync"
	"time"

	"github.com/dockdeck/dockdeck/internal/docker"
)

// Snapshot holds the last successful fetch results.
type Snapshot struct {
	mu sync.Mutex

	containers   []docker.Container
	containersAt time.Time
	images       []docker.Image
	imagesAt     time.Time
	volumes      []docker.Volume
	volumesAt    time.Time
	networks     []docker.Network
	networksAt   time.Time

	engineUp     bool
	engineUpOnce bool
}

// New returns an empty snapshot store.
func New() *Snapshot {
	return &Snapshot{}
}

// SetContainers records a successful container fetch.
func (s *Snapshot) SetContainers(list []docker.Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers = list
	s.containersAt = time.Now()
	s.markUp()
}

// Containers returns the last successful container fetch and its time.
func (s *Snapshot) Containers() ([]docker.Container, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.containers, s.containersAt
}

// SetImages records a successful image fetch.
func (s *Snapshot) SetImages(list []docker.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = list
	s.imagesAt = time.Now()
	s.markUp()
}

// Images returns the last successful image fetch and its time.
func (s *Snapshot) Images() ([]docker.Image, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images, s.imagesAt
}

// SetVolumes records a successful volume fetch.
func (s *Snapshot) SetVolumes(list []docker.Volume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumes = list
	s.volumesAt = time.Now()
	s.markUp()
}

// Volumes returns the last successful volume fetch and its time.
func (s *Snapshot) Volumes() ([]docker.Volume, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volumes, s.volumesAt
}

// SetNetworks records a successful network fetch.
func (s *Snapshot) SetNetworks(list []docker.Network) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networks = list
	s.networksAt = time.Now()
	s.markUp()
}

// Networks returns the last successful network fetch and its time.
func (s *Snapshot) Networks() ([]docker.Network, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.networks, s.networksAt
}

// MarkEngineDown records that the last engine interaction failed.
func (s *Snapshot) MarkEngineDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engineUp = false
	s.engineUpOnce = true
}

// MarkEngineUp records a successful engine interaction.
func (s *Snapshot) MarkEngineUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markUp()
}

func (s *Snapshot) markUp() {
	s.engineUp = true
	s.engineUpOnce = true
}

// EngineUp reports whether the most recent engine interaction succeeded.
// Before any interaction has happened it optimistically reports true.
func (s *Snapshot) EngineUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engineUpOnce {
		return true
	}
	return s.engineUp
}
