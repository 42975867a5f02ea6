package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"queuedisplay/internal/config"
)

const userAgent = "QueueDisplay-Go/0.1.0"

// Event names a notification kind.
type Event string

const (
	EventTicketCalled       Event = "ticket_called"
	EventLabCompleted       Event = "lab_completed"
	EventBackendUnavailable Event = "backend_unavailable"
	EventBackendRecovered   Event = "backend_recovered"
	EventTest               Event = "test"
)

// Payload carries event fields keyed by name.
type Payload map[string]any

// Service publishes display events to an operator channel.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a noop when no topic is set.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		calls:    cfg.Notifications.Calls,
		outages:  cfg.Notifications.Outages,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	calls    bool
	outages  bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventTicketCalled:
		if !n.calls {
			return message{}, false
		}
		return message{
			title: "Queue Display - Called",
			body:  fmt.Sprintf("📣 %s → %s", payload.text("ticketCode"), payload.text("roomName")),
			tags:  []string{"queuedisplay", "call"},
		}, true
	case EventLabCompleted:
		if !n.calls {
			return message{}, false
		}
		return message{
			title: "Queue Display - Lab Result",
			body:  fmt.Sprintf("🧪 Lab result ready: %s", payload.text("orderCode")),
			tags:  []string{"queuedisplay", "lab", "completed"},
		}, true
	case EventBackendUnavailable:
		if !n.outages {
			return message{}, false
		}
		var b strings.Builder
		b.WriteString("❌ Queue backend unreachable")
		if base := payload.text("baseURL"); base != "" {
			b.WriteString(" at ")
			b.WriteString(base)
		}
		if errText := payload.text("error"); errText != "" {
			b.WriteString(": ")
			b.WriteString(errText)
		}
		return message{
			title:    "Queue Display - Backend Down",
			body:     b.String(),
			tags:     []string{"queuedisplay", "backend", "alert"},
			priority: "high",
		}, true
	case EventBackendRecovered:
		if !n.outages {
			return message{}, false
		}
		return message{
			title: "Queue Display - Backend Recovered",
			body:  "✅ Queue backend reachable again",
			tags:  []string{"queuedisplay", "backend", "recovered"},
		}, true
	case EventTest:
		return message{
			title:    "Queue Display - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"queuedisplay", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) text(key string) string {
	value, ok := p[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
