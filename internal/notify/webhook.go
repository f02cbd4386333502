package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func postJSON(ctx context.Context, url string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// --- Generic webhook: posts the raw event as JSON ---

type Webhook struct {
	URL string
}

func (w *Webhook) Name() string { return "Webhook" }
func (w *Webhook) Send(ctx context.Context, event Event) error {
	return postJSON(ctx, w.URL, event)
}

// --- Slack ---

type Slack struct {
	WebhookURL string
}

func (s *Slack) Name() string { return "Slack" }
func (s *Slack) Send(ctx context.Context, event Event) error {
	payload := map[string]string{"text": fmt.Sprintf("*%s*\n%s", event.Title(), event.Message())}
	return postJSON(ctx, s.WebhookURL, payload)
}

// --- Discord ---

type Discord struct {
	WebhookURL string
}

func (d *Discord) Name() string { return "Discord" }
func (d *Discord) Send(ctx context.Context, event Event) error {
	color := 3066993 // green
	if !event.OK {
		color = 15158332 // red
	}
	payload := map[string]interface{}{
		"username": "Dockdeck",
		"embeds": []map[string]interface{}{{
			"title":       event.Title(),
			"description": event.Message(),
			"color":       color,
			"timestamp":   event.Time.Format(time.RFC3339),
		}},
	}
	return postJSON(ctx, d.WebhookURL, payload)
}
