package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type logsPage struct {
	basePage
	ID     string
	Name   string
	Tail   string
	Since  string
	Stdout string
	Stderr string
}

// sinceChoices are the lookback windows the logs page offers. Zero means
// everything the tail limit allows.
var sinceChoices = map[string]time.Duration{
	"":    0,
	"1h":  time.Hour,
	"6h":  6 * time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
}

func (s *Server) handleContainerLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	id := chi.URLParam(r, "id")

	tailKey := r.URL.Query().Get("tail")
	tail := s.cfg.DefaultLogTail
	switch tailKey {
	case "all":
		tail = 0
	case "":
		tailKey = strconv.Itoa(tail)
	default:
		if n, err := strconv.Atoi(tailKey); err == nil && n > 0 {
			tail = n
		} else {
			tailKey = strconv.Itoa(tail)
		}
	}

	sinceKey := r.URL.Query().Get("since")
	since, knownSince := sinceChoices[sinceKey]
	if !knownSince {
		sinceKey, since = "", 0
	}

	page := logsPage{
		basePage: s.base("Logs", "containers", r),
		ID:       id,
		Tail:     tailKey,
		Since:    sinceKey,
	}
	if detail, err := s.client.InspectContainer(ctx, id); err == nil {
		page.Name = detail.Name
	}

	logs, err := s.client.ContainerLogs(ctx, id, tail, since)
	s.recordFetch(err)
	if err != nil {
		page.Banner = &Banner{Kind: "error", Text: errorText("logs for container "+id, err)}
	} else {
		page.Stdout = logs.Stdout
		page.Stderr = logs.Stderr
	}
	s.render(w, "logs", page)
}
