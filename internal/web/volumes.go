package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dockdeck/dockdeck/internal/docker"
)

type volumesPage struct {
	basePage
	Volumes []docker.Volume
}

func (s *Server) handleVolumes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	page := volumesPage{basePage: s.base("Volumes", "volumes", r)}
	list, at, err := s.fetchVolumes(ctx)
	page.Volumes = list
	page.FetchAt = at
	if err != nil {
		page.Stale = true
		page.Banner = &Banner{Kind: "error", Text: errorText("volume list", err)}
	}
	s.render(w, "volumes", page)
}

func (s *Server) handleVolumeCreate(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		redirectErr(w, r, "/volumes", "volume name must not be empty")
		return
	}
	driver := strings.TrimSpace(r.FormValue("driver"))
	s.runAction(w, r, "create", "volume "+name, "/volumes", func(ctx context.Context) error {
		_, err := s.client.CreateVolume(ctx, name, driver, nil)
		return err
	})
}

func (s *Server) handleVolumeRemove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	force := r.FormValue("force") == "on"
	s.runAction(w, r, "remove", "volume "+name, "/volumes", func(ctx context.Context) error {
		return s.client.RemoveVolume(ctx, name, force)
	})
}

func (s *Server) handleVolumePrune(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	n, err := s.client.PruneVolumes(ctx)
	s.recordFetch(err)
	s.notifyAction("prune", "volumes", err == nil, err)
	if err != nil {
		redirectErr(w, r, "/volumes", errorText("volume prune", err))
		return
	}
	redirectMsg(w, r, "/volumes", fmt.Sprintf("pruned %d unused volumes", n))
}
