package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"queuedisplay/internal/config"
	"queuedisplay/internal/logging"
	"queuedisplay/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "ticket called",
			event:         notifications.EventTicketCalled,
			payload:       notifications.Payload{"ticketCode": "A012", "roomName": "Phòng khám 1"},
			expectTitle:   "Queue Display - Called",
			expectMessage: "📣 A012 → Phòng khám 1",
			expectTags:    "queuedisplay,call",
		},
		{
			name:          "lab completed",
			event:         notifications.EventLabCompleted,
			payload:       notifications.Payload{"orderCode": "XN0042"},
			expectTitle:   "Queue Display - Lab Result",
			expectMessage: "🧪 Lab result ready: XN0042",
			expectTags:    "queuedisplay,lab,completed",
		},
		{
			name:  "backend unavailable",
			event: notifications.EventBackendUnavailable,
			payload: notifications.Payload{
				"baseURL": "http://queue.local/api",
				"error":   errors.New("connection refused"),
			},
			expectTitle:    "Queue Display - Backend Down",
			expectMessage:  "❌ Queue backend unreachable at http://queue.local/api: connection refused",
			expectTags:     "queuedisplay,backend,alert",
			expectPriority: "high",
		},
		{
			name:          "backend recovered",
			event:         notifications.EventBackendRecovered,
			expectTitle:   "Queue Display - Backend Recovered",
			expectMessage: "✅ Queue backend reachable again",
			expectTags:    "queuedisplay,backend,recovered",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "Queue Display - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "queuedisplay,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.Calls = true
			cfg.Notifications.Outages = true

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresSuppressedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for suppressed event: %s", r.Header.Get("Title"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Calls = false
	cfg.Notifications.Outages = false

	svc := notifications.NewService(&cfg)
	suppressed := []notifications.Event{
		notifications.EventTicketCalled,
		notifications.EventLabCompleted,
		notifications.EventBackendUnavailable,
		notifications.EventBackendRecovered,
		notifications.Event("unknown"),
	}
	for _, event := range suppressed {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"value": "ignored"}); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventTest, nil); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

type recordingService struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recordingService) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingService) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	rec := &recordingService{}
	d := notifications.NewDispatcher(rec, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Enqueue(notifications.EventBackendUnavailable, nil)
	d.Enqueue(notifications.EventBackendRecovered, nil)

	deadline := time.Now().Add(2 * time.Second)
	for rec.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 2 || rec.events[0] != notifications.EventBackendUnavailable || rec.events[1] != notifications.EventBackendRecovered {
		t.Fatalf("unexpected delivery: %v", rec.events)
	}
}
