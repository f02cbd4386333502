package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dockdeck/dockdeck/internal/docker"
)

type containersPage struct {
	basePage
	Containers []docker.Container
}

func (s *Server) handleContainers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	page := containersPage{basePage: s.base("Containers", "containers", r)}
	list, at, err := s.fetchContainers(ctx)
	page.Containers = list
	page.FetchAt = at
	if err != nil {
		page.Stale = true
		page.Banner = &Banner{Kind: "error", Text: errorText("container list", err)}
	}
	s.render(w, "containers", page)
}

type containerDetailPage struct {
	basePage
	Container docker.ContainerDetail
}

func (s *Server) handleContainerDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	id := chi.URLParam(r, "id")
	detail, err := s.client.InspectContainer(ctx, id)
	s.recordFetch(err)
	if err != nil {
		// Nothing useful to show for a container we cannot inspect,
		// bounce back to the list with the reason.
		redirectErr(w, r, "/containers", errorText("container "+id, err))
		return
	}

	page := containerDetailPage{
		basePage:  s.base(detail.Name, "containers", r),
		Container: detail,
	}
	s.render(w, "container", page)
}

func (s *Server) handleContainerStart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.runAction(w, r, "start", "container "+id, backTo(r), func(ctx context.Context) error {
		return s.client.StartContainer(ctx, id)
	})
}

func (s *Server) handleContainerStop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.runAction(w, r, "stop", "container "+id, backTo(r), func(ctx context.Context) error {
		return s.client.StopContainer(ctx, id)
	})
}

func (s *Server) handleContainerRestart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.runAction(w, r, "restart", "container "+id, backTo(r), func(ctx context.Context) error {
		return s.client.RestartContainer(ctx, id)
	})
}

func (s *Server) handleContainerRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	force := r.FormValue("force") == "on"
	s.runAction(w, r, "remove", "container "+id, "/containers", func(ctx context.Context) error {
		return s.client.RemoveContainer(ctx, id, force)
	})
}

func (s *Server) handleContainerRename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		redirectErr(w, r, "/containers/"+id, "new name must not be empty")
		return
	}
	s.runAction(w, r, "rename", "container "+id, "/containers/"+id, func(ctx context.Context) error {
		return s.client.RenameContainer(ctx, id, name)
	})
}

// handleContainerConfig applies an edited configuration by recreating the
// container under its own name. The form sends only the fields that can
// actually change.
func (s *Server) handleContainerConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	patch := docker.ConfigPatch{
		Image:         strings.TrimSpace(r.FormValue("image")),
		RestartPolicy: r.FormValue("restart_policy"),
	}
	if env := strings.TrimSpace(r.FormValue("env")); env != "" {
		patch.Env = splitLines(env)
	}
	if ports := strings.TrimSpace(r.FormValue("ports")); ports != "" {
		patch.PortBindings = splitLines(ports)
	}

	ctx, cancel := s.callCtx(r)
	defer cancel()
	newID, err := s.client.RecreateContainer(ctx, id, patch)
	ok := err == nil
	s.recordFetch(err)
	if err != nil {
		redirectErr(w, r, "/containers/"+id, errorText("container "+id, err))
	} else {
		redirectMsg(w, r, "/containers/"+newID, "container recreated with new configuration")
	}
	s.notifyAction("recreate", "container "+id, ok, err)
}

func backTo(r *http.Request) string {
	if ref := r.FormValue("back"); strings.HasPrefix(ref, "/") {
		return ref
	}
	return "/containers"
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
