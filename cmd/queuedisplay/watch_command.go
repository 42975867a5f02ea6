package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"queuedisplay/internal/api"
	"queuedisplay/internal/config"
	"queuedisplay/internal/ipc"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var baseURL string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the live board in the terminal",
		Long:  "Render the daemon's current board in the terminal, refreshing from its HTTP API. Press r to refresh, q to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := strings.TrimSpace(baseURL)
			if target == "" {
				target = ctx.discoverAPIURL(cfg)
			}
			if target == "" {
				return fmt.Errorf("daemon HTTP API is disabled; set paths.api_bind or pass --url")
			}
			if interval <= 0 {
				interval = cfg.PollInterval()
			}
			client := &boardClient{
				url:    strings.TrimRight(target, "/") + "/api/board",
				token:  cfg.Paths.APIToken,
				client: &http.Client{Timeout: 5 * time.Second},
			}
			model := newWatchModel(client.fetch, interval)
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = program.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "", "Daemon HTTP API base URL (defaults to the running daemon's address)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (defaults to display.poll_interval_seconds)")
	return cmd
}

// discoverAPIURL asks the running daemon for its bound address, falling back
// to the configured bind when the daemon cannot be reached.
func (c *commandContext) discoverAPIURL(cfg *config.Config) string {
	address := ""
	_ = c.withClient(func(client *ipc.Client) error {
		status, err := client.Status()
		if err == nil && status != nil {
			address = status.APIAddress
		}
		return err
	})
	if address == "" && cfg != nil {
		address = strings.TrimSpace(cfg.Paths.APIBind)
	}
	if address == "" {
		return ""
	}
	return "http://" + address
}

type boardClient struct {
	url    string
	token  string
	client *http.Client
}

func (b *boardClient) fetch(ctx context.Context) (api.BoardResponse, error) {
	var board api.BoardResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return board, err
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return board, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error != "" {
			return board, fmt.Errorf("daemon returned %d: %s", resp.StatusCode, payload.Error)
		}
		return board, fmt.Errorf("daemon returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return board, fmt.Errorf("decode board: %w", err)
	}
	return board, nil
}
