package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dockdeck/dockdeck/internal/config"
	"github.com/dockdeck/dockdeck/internal/logging"
)

// sendTimeout bounds a single delivery attempt.
var sendTimeout = 10 * time.Second

// MultiNotifier fans one event out to all configured services.
type MultiNotifier struct {
	services []Service
	wg       sync.WaitGroup
}

// NewMultiNotifier returns an empty notifier.
func NewMultiNotifier() *MultiNotifier {
	return &MultiNotifier{services: make([]Service, 0)}
}

// FromConfig builds a notifier from the webhook settings in cfg.
func FromConfig(cfg *config.Config) *MultiNotifier {
	m := NewMultiNotifier()
	if cfg.GenericWebhookURL != "" {
		m.Add(&Webhook{URL: cfg.GenericWebhookURL})
	}
	if cfg.SlackWebhook != "" {
		m.Add(&Slack{WebhookURL: cfg.SlackWebhook})
	}
	if cfg.DiscordWebhook != "" {
		m.Add(&Discord{WebhookURL: cfg.DiscordWebhook})
	}
	return m
}

func (m *MultiNotifier) Add(s Service) {
	if s != nil {
		m.services = append(m.services, s)
	}
}

func (m *MultiNotifier) Len() int {
	return len(m.services)
}

// Send delivers the event to every service asynchronously. Each service
// gets exactly one attempt; failures are logged and dropped.
func (m *MultiNotifier) Send(event Event) {
	for _, s := range m.services {
		m.wg.Add(1)
		go func(svc Service) {
			defer m.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := svc.Send(ctx, event); err != nil {
				logging.Get().Warn().Err(err).Str("service", svc.Name()).Str("event", event.ID).Msg("notification delivery failed")
				return
			}
			logging.Get().Debug().Str("service", svc.Name()).Str("event", event.ID).Msg("notification delivered")
		}(s)
	}
}

// Wait waits for pending notification sends to complete or until the
// provided context is cancelled.
func (m *MultiNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
