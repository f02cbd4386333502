package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dockdeck/dockdeck/internal/docker"
)

type imagesPage struct {
	basePage
	Images []docker.Image
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	page := imagesPage{basePage: s.base("Images", "images", r)}
	list, at, err := s.fetchImages(ctx)
	page.Images = list
	page.FetchAt = at
	if err != nil {
		page.Stale = true
		page.Banner = &Banner{Kind: "error", Text: errorText("image list", err)}
	}
	s.render(w, "images", page)
}

func (s *Server) handleImagePull(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.FormValue("reference"))
	if ref == "" {
		redirectErr(w, r, "/images", "image reference must not be empty")
		return
	}
	s.runAction(w, r, "pull", "image "+ref, "/images", func(ctx context.Context) error {
		_, _, err := s.client.PullImage(ctx, ref)
		return err
	})
}

func (s *Server) handleImageRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	force := r.FormValue("force") == "on"
	s.runAction(w, r, "remove", "image "+id, "/images", func(ctx context.Context) error {
		return s.client.RemoveImage(ctx, id, force)
	})
}
