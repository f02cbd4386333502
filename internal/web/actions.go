package web

import (
	"context"
	"net/http"
	"time"

	"github.com/dockdeck/dockdeck/internal/docker"
	"github.com/dockdeck/dockdeck/internal/logging"
	"github.com/dockdeck/dockdeck/internal/metrics"
	"github.com/dockdeck/dockdeck/internal/notify"
)

// recordFetch updates reachability bookkeeping after any engine read.
func (s *Server) recordFetch(err error) {
	if err == nil {
		s.snap.MarkEngineUp()
		metrics.SetEngineReachable(true)
		metrics.SetLastFetch(time.Now())
		return
	}
	metrics.IncEngineError()
	if docker.Unreachable(err) {
		s.snap.MarkEngineDown()
		metrics.SetEngineReachable(false)
	}
}

// fetchContainers returns the live container list, falling back to the
// last good snapshot when the engine is unreachable. The second return
// reports whether the data is stale.
func (s *Server) fetchContainers(ctx context.Context) ([]docker.Container, time.Time, error) {
	list, err := s.client.ListContainers(ctx, true)
	s.recordFetch(err)
	if err != nil {
		cached, at := s.snap.Containers()
		return cached, at, err
	}
	s.snap.SetContainers(list)
	return list, time.Now(), nil
}

func (s *Server) fetchImages(ctx context.Context) ([]docker.Image, time.Time, error) {
	list, err := s.client.ListImages(ctx)
	s.recordFetch(err)
	if err != nil {
		cached, at := s.snap.Images()
		return cached, at, err
	}
	s.snap.SetImages(list)
	return list, time.Now(), nil
}

func (s *Server) fetchVolumes(ctx context.Context) ([]docker.Volume, time.Time, error) {
	list, err := s.client.ListVolumes(ctx)
	s.recordFetch(err)
	if err != nil {
		cached, at := s.snap.Volumes()
		return cached, at, err
	}
	s.snap.SetVolumes(list)
	return list, time.Now(), nil
}

func (s *Server) fetchNetworks(ctx context.Context) ([]docker.Network, time.Time, error) {
	list, err := s.client.ListNetworks(ctx)
	s.recordFetch(err)
	if err != nil {
		cached, at := s.snap.Networks()
		return cached, at, err
	}
	s.snap.SetNetworks(list)
	return list, time.Now(), nil
}

// runAction performs one engine mutation: single call, metrics, a
// notification, then a redirect back to the page that hosted the control.
// what names the object for the banner and the event.
func (s *Server) runAction(w http.ResponseWriter, r *http.Request, action, what, backTo string, fn func(ctx context.Context) error) {
	ctx, cancel := s.callCtx(r)
	defer cancel()

	err := fn(ctx)
	ok := err == nil
	metrics.IncAction(action, ok)
	s.recordFetch(err)

	detail := ""
	if err != nil {
		detail = err.Error()
		logging.Get().Error().Err(err).Str("action", action).Str("object", what).Msg("action failed")
	}
	s.notifier.Send(notify.NewEvent(action, what, ok, detail))

	if err != nil {
		redirectErr(w, r, backTo, errorText(what, err))
		return
	}
	redirectMsg(w, r, backTo, what+" "+pastTense(action))
}

// notifyAction records and announces an action handled outside runAction.
func (s *Server) notifyAction(action, what string, ok bool, err error) {
	metrics.IncAction(action, ok)
	detail := ""
	if err != nil {
		detail = err.Error()
		logging.Get().Error().Err(err).Str("action", action).Str("object", what).Msg("action failed")
	}
	s.notifier.Send(notify.NewEvent(action, what, ok, detail))
}

// pastTenseForms spells out every action verb used on the pages; flash
// wording is deliberate, not derived.
var pastTenseForms = map[string]string{
	"start":      "started",
	"stop":       "stopped",
	"restart":    "restarted",
	"remove":     "removed",
	"rename":     "renamed",
	"create":     "created",
	"pull":       "pulled",
	"connect":    "connected",
	"disconnect": "disconnected",
	"prune":      "pruned",
	"recreate":   "recreated",
}

func pastTense(action string) string {
	if form, ok := pastTenseForms[action]; ok {
		return form
	}
	return "completed"
}
