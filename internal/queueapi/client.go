package queueapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"queuedisplay/internal/config"
	"queuedisplay/internal/services"
)

// ErrStatus reports a non-2xx response from the queue service.
var ErrStatus = errors.New("unexpected status")

// HTTPDoer describes the HTTP client used by the queue service client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Source reads queue state from the backend. Client implements it; tests
// substitute fakes.
type Source interface {
	FetchRoom(ctx context.Context, roomID string, queueType int) (*RoomSnapshot, error)
	FetchLab(ctx context.Context) (*LabDisplay, error)
}

// Client talks to the reception queue service over HTTP.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  doer,
	}
}

// NewConfiguredClient builds a client from the backend config section.
func NewConfiguredClient(cfg *config.Config) *Client {
	if cfg == nil {
		return NewClient("http://localhost:5106/api", nil)
	}
	return NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.RequestTimeout()})
}

// BaseURL returns the normalized service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchRoom reads one room's display snapshot.
func (c *Client) FetchRoom(ctx context.Context, roomID string, queueType int) (*RoomSnapshot, error) {
	endpoint := fmt.Sprintf("%s/reception/queue/display/%s?queueType=%s",
		c.baseURL, url.PathEscape(roomID), strconv.Itoa(queueType))
	var snapshot RoomSnapshot
	if err := c.getJSON(ctx, endpoint, &snapshot); err != nil {
		return nil, services.Wrap(classify(err), "queueapi", "fetch room", "room "+roomID, err)
	}
	if snapshot.RoomID == "" {
		snapshot.RoomID = roomID
	}
	return &snapshot, nil
}

// FetchLab reads the laboratory results board.
func (c *Client) FetchLab(ctx context.Context) (*LabDisplay, error) {
	var display LabDisplay
	if err := c.getJSON(ctx, c.baseURL+"/liscomplete/queue/display", &display); err != nil {
		return nil, services.Wrap(classify(err), "queueapi", "fetch lab board", "", err)
	}
	return &display, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return services.ErrTimeout
	case errors.Is(err, context.Canceled):
		return services.ErrTransient
	default:
		return services.ErrUnavailable
	}
}
