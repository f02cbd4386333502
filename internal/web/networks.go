package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dockdeck/dockdeck/internal/docker"
)

type networksPage struct {
	basePage
	Networks   []docker.Network
	Containers []docker.Container // connect-form choices
}

func (s *Server) handleNetworks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	page := networksPage{basePage: s.base("Networks", "networks", r)}
	list, at, err := s.fetchNetworks(ctx)
	page.Networks = list
	page.FetchAt = at
	if err != nil {
		page.Stale = true
		page.Banner = &Banner{Kind: "error", Text: errorText("network list", err)}
	} else if containers, _, err := s.fetchContainers(ctx); err == nil {
		page.Containers = containers
	}
	s.render(w, "networks", page)
}

func (s *Server) handleNetworkCreate(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		redirectErr(w, r, "/networks", "network name must not be empty")
		return
	}
	driver := strings.TrimSpace(r.FormValue("driver"))
	subnet := strings.TrimSpace(r.FormValue("subnet"))
	gateway := strings.TrimSpace(r.FormValue("gateway"))
	if gateway != "" && subnet == "" {
		redirectErr(w, r, "/networks", "a gateway needs a subnet")
		return
	}
	s.runAction(w, r, "create", "network "+name, "/networks", func(ctx context.Context) error {
		_, err := s.client.CreateNetwork(ctx, name, driver, subnet, gateway)
		return err
	})
}

func (s *Server) handleNetworkRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.runAction(w, r, "remove", "network "+id, "/networks", func(ctx context.Context) error {
		return s.client.RemoveNetwork(ctx, id)
	})
}

func (s *Server) handleNetworkConnect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	container := strings.TrimSpace(r.FormValue("container"))
	if container == "" {
		redirectErr(w, r, "/networks", "pick a container to connect")
		return
	}
	s.runAction(w, r, "connect", "container "+container, "/networks", func(ctx context.Context) error {
		return s.client.ConnectContainer(ctx, id, container)
	})
}

func (s *Server) handleNetworkDisconnect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	container := strings.TrimSpace(r.FormValue("container"))
	force := r.FormValue("force") == "on"
	s.runAction(w, r, "disconnect", "container "+container, "/networks", func(ctx context.Context) error {
		return s.client.DisconnectContainer(ctx, id, container, force)
	})
}

func (s *Server) handleNetworkPrune(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	n, err := s.client.PruneNetworks(ctx)
	s.recordFetch(err)
	s.notifyAction("prune", "networks", err == nil, err)
	if err != nil {
		redirectErr(w, r, "/networks", errorText("network prune", err))
		return
	}
	redirectMsg(w, r, "/networks", fmt.Sprintf("pruned %d unused networks", n))
}
