package state

import (
	"testing"

	"github.com/dockdeck/dockdeck/internal/docker"
)

func TestSnapshotContainers(t *testing.T) {
	s := New()

	got, at := s.Containers()
	if got != nil || !at.IsZero() {
		t.Fatalf("fresh snapshot should be empty, got %v at %v", got, at)
	}

	list := []docker.Container{{ID: "a1", Name: "web", State: "running"}}
	s.SetContainers(list)

	got, at = s.Containers()
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("unexpected containers: %v", got)
	}
	if at.IsZero() {
		t.Fatal("fetch time not recorded")
	}

	// A failed fetch must not disturb the stored data.
	s.MarkEngineDown()
	got, _ = s.Containers()
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("snapshot lost after engine failure: %v", got)
	}
}

func TestSnapshotEngineUp(t *testing.T) {
	s := New()
	if !s.EngineUp() {
		t.Fatal("engine should be assumed up before any interaction")
	}

	s.MarkEngineDown()
	if s.EngineUp() {
		t.Fatal("engine should report down after MarkEngineDown")
	}

	s.SetImages([]docker.Image{{ID: "img1"}})
	if !s.EngineUp() {
		t.Fatal("successful fetch should mark engine up again")
	}

	s.MarkEngineDown()
	s.MarkEngineUp()
	if !s.EngineUp() {
		t.Fatal("MarkEngineUp should reset the flag")
	}
}

func TestSnapshotOtherKinds(t *testing.T) {
	s := New()
	s.SetVolumes([]docker.Volume{{Name: "data"}})
	s.SetNetworks([]docker.Network{{Name: "bridge"}})

	if v, _ := s.Volumes(); len(v) != 1 || v[0].Name != "data" {
		t.Fatalf("unexpected volumes: %v", v)
	}
	if n, _ := s.Networks(); len(n) != 1 || n[0].Name != "bridge" {
		t.Fatalf("unexpected networks: %v", n)
	}
}
