package web

import (
	"net/http"

	"github.com/dockdeck/dockdeck/internal/docker"
)

type overviewPage struct {
	basePage
	Info       docker.EngineInfo
	Containers []docker.Container
	Images     int
	Volumes    int
	Networks   int
}

// handleOverview shows engine facts plus running-container shortcuts. The
// counts come from the same fetches the list pages use, so one slow call
// does not block the rest of the page.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	page := overviewPage{basePage: s.base("Overview", "overview", r)}

	info, err := s.client.Info(ctx)
	s.recordFetch(err)
	if err != nil {
		page.Stale = true
		page.Banner = &Banner{Kind: "error", Text: errorText("engine info", err)}
	} else {
		page.Info = info
	}

	if list, at, err := s.fetchContainers(ctx); err == nil {
		page.Containers = list
		page.FetchAt = at
	}
	if list, _, err := s.fetchImages(ctx); err == nil {
		page.Images = len(list)
	}
	if list, _, err := s.fetchVolumes(ctx); err == nil {
		page.Volumes = len(list)
	}
	if list, _, err := s.fetchNetworks(ctx); err == nil {
		page.Networks = len(list)
	}

	s.render(w, "overview", page)
}
