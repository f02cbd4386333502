package web

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dockdeck/dockdeck/internal/docker"
	"github.com/dockdeck/dockdeck/internal/logging"
	"github.com/dockdeck/dockdeck/internal/metrics"
	"github.com/dockdeck/dockdeck/internal/state"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"bytes": func(n int64) string {
		if n < 0 {
			return "?"
		}
		return humanize.Bytes(uint64(n))
	},
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return humanize.Time(t)
	},
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	},
}).ParseFS(templateFS, "templates/*.html"))

// Banner is an inline page notice. Kind selects the styling: "error",
// "warn" or "ok".
type Banner struct {
	Kind string
	Text string
}

// basePage carries what every template needs.
type basePage struct {
	Title   string
	Active  string
	Banner  *Banner
	Stale   bool
	FetchAt time.Time
	snap    *state.Snapshot
}

// EngineUp reads reachability when the template executes, so the badge
// reflects the fetch the page just performed rather than the one before it.
func (b basePage) EngineUp() bool {
	if b.snap == nil {
		return true
	}
	return b.snap.EngineUp()
}

func (s *Server) base(title, active string, r *http.Request) basePage {
	b := basePage{Title: title, Active: active, snap: s.snap}
	if msg := r.URL.Query().Get("msg"); msg != "" {
		b.Banner = &Banner{Kind: "ok", Text: msg}
	}
	if msg := r.URL.Query().Get("err"); msg != "" {
		b.Banner = &Banner{Kind: "error", Text: msg}
	}
	return b
}

// render executes one page template. Render failures are logged and
// answered with a bare 500 since there is no page left to put a banner on.
func (s *Server) render(w http.ResponseWriter, page string, data any) {
	start := time.Now()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, page+".html", data); err != nil {
		metrics.IncRenderError()
		logging.Get().Error().Err(err).Str("page", page).Msg("template render failed")
		http.Error(w, "internal render error", http.StatusInternalServerError)
		return
	}
	metrics.IncRender(page)
	metrics.ObserveRenderDuration(time.Since(start).Seconds())
}

// redirect sends the browser back to a fresh GET render with an inline
// notice carried in the query string.
func redirectMsg(w http.ResponseWriter, r *http.Request, to, msg string) {
	u := to + "?msg=" + url.QueryEscape(msg)
	http.Redirect(w, r, u, http.StatusSeeOther)
}

func redirectErr(w http.ResponseWriter, r *http.Request, to, msg string) {
	u := to + "?err=" + url.QueryEscape(msg)
	http.Redirect(w, r, u, http.StatusSeeOther)
}

// errorText turns an engine error into the sentence the banner shows.
// The raw error stays in the log, the page gets something a person can act on.
func errorText(what string, err error) string {
	switch docker.Classify(err) {
	case docker.ErrNotFound:
		return what + " not found, it may have been removed already. The view below has been refreshed."
	case docker.ErrConflict:
		return what + " refused: " + err.Error()
	case docker.ErrPermission:
		return "permission denied talking to the Docker socket. Check that the dashboard user is in the docker group."
	case docker.ErrUnavailable:
		return "cannot reach the Docker daemon. Is it running?"
	default:
		return what + " failed: " + err.Error()
	}
}
