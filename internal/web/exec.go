package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dockdeck/dockdeck/internal/docker"
	"github.com/dockdeck/dockdeck/internal/metrics"
)

type execPage struct {
	basePage
	ID      string
	Name    string
	Workdir string
	Command string
	Result  *docker.ExecResult
}

func (s *Server) handleExecForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	id := chi.URLParam(r, "id")
	page := execPage{basePage: s.base("Run command", "containers", r), ID: id, Workdir: "/"}
	detail, err := s.client.InspectContainer(ctx, id)
	s.recordFetch(err)
	if err != nil {
		redirectErr(w, r, "/containers", errorText("container "+id, err))
		return
	}
	page.Name = detail.Name
	if !isRunning(detail) {
		page.Banner = &Banner{Kind: "warn", Text: "container is not running, commands cannot be executed"}
	}
	s.render(w, "exec", page)
}

// handleExecRun validates the working directory inside the container before
// running the command, then renders the same page with captured output.
func (s *Server) handleExecRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	workdir := strings.TrimSpace(r.FormValue("workdir"))
	command := strings.TrimSpace(r.FormValue("command"))

	page := execPage{
		basePage: s.base("Run command", "containers", r),
		ID:       id,
		Workdir:  workdir,
		Command:  command,
	}

	if command == "" {
		page.Banner = &Banner{Kind: "error", Text: "command must not be empty"}
		s.render(w, "exec", page)
		return
	}
	if workdir == "" || !strings.HasPrefix(workdir, "/") {
		page.Banner = &Banner{Kind: "error", Text: "working directory must be an absolute path"}
		s.render(w, "exec", page)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ExecTimeout)
	defer cancel()

	if detail, err := s.client.InspectContainer(ctx, id); err == nil {
		page.Name = detail.Name
	}

	ok, err := s.client.PathExists(ctx, id, workdir)
	s.recordFetch(err)
	if err != nil {
		page.Banner = &Banner{Kind: "error", Text: errorText("container "+id, err)}
		s.render(w, "exec", page)
		return
	}
	if !ok {
		page.Banner = &Banner{Kind: "error", Text: fmt.Sprintf("%s is not a directory in this container", workdir)}
		s.render(w, "exec", page)
		return
	}

	result, err := s.client.Exec(ctx, id, workdir, []string{"sh", "-c", command})
	metrics.IncAction("exec", err == nil)
	s.recordFetch(err)
	if err != nil {
		page.Banner = &Banner{Kind: "error", Text: errorText("command", err)}
		s.render(w, "exec", page)
		return
	}
	page.Result = &result
	if result.ExitCode != 0 {
		page.Banner = &Banner{Kind: "warn", Text: fmt.Sprintf("command exited with status %d", result.ExitCode)}
	}
	s.render(w, "exec", page)
}

func isRunning(d docker.ContainerDetail) bool { return d.State == "running" }
