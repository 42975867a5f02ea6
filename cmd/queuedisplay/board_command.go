package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"queuedisplay/internal/board"
	"queuedisplay/internal/config"
	"queuedisplay/internal/logging"
	"queuedisplay/internal/queueapi"
)

// boardSnapshot is the result of one direct fetch cycle.
type boardSnapshot struct {
	Mode        string               `json:"mode"`
	FetchedAt   string               `json:"fetchedAt"`
	Board       *board.View          `json:"board,omitempty"`
	FailedRooms []string             `json:"failedRooms"`
	Lab         *queueapi.LabDisplay `json:"lab,omitempty"`
}

func newBoardCommand(ctx *commandContext) *cobra.Command {
	var roomsFlag string
	var queueType int
	var mode string
	var asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Fetch one poll cycle from the queue service and print the board",
		Long: "Fetch one poll cycle directly from the queue service and print it. " +
			"No daemon is needed; rooms and queue type default to the configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rooms := cfg.Display.Rooms
			if cmd.Flags().Changed("rooms") {
				rooms = config.ParseRooms(roomsFlag)
			}
			if queueType <= 0 {
				queueType = cfg.Display.QueueType
			}
			if strings.TrimSpace(mode) == "" {
				mode = cfg.Display.Mode
			}

			fetchCtx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			client := queueapi.NewConfiguredClient(cfg)
			snapshot, err := fetchBoard(fetchCtx, client, mode, rooms, queueType)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, snapshot)
			}
			printBoard(cmd.OutOrStdout(), cfg.Display.HospitalName, snapshot, limit)
			return nil
		},
	}

	cmd.Flags().StringVar(&roomsFlag, "rooms", "", "Comma-separated room ids (overrides display.rooms)")
	cmd.Flags().IntVar(&queueType, "queue-type", 0, "Queue type (defaults to display.queue_type)")
	cmd.Flags().StringVar(&mode, "mode", "", "Board mode: queue or lab")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the board as JSON")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum waiting rows to print (0 for all)")
	return cmd
}

var errNoRooms = errors.New("no rooms configured; pass --rooms or set display.rooms")

func fetchBoard(ctx context.Context, client *queueapi.Client, mode string, rooms []string, queueType int) (boardSnapshot, error) {
	snapshot := boardSnapshot{
		Mode:        strings.ToLower(strings.TrimSpace(mode)),
		FetchedAt:   time.Now().Format(time.RFC3339),
		FailedRooms: []string{},
	}
	switch snapshot.Mode {
	case config.ModeLab:
		lab, err := client.FetchLab(ctx)
		if err != nil {
			return snapshot, fmt.Errorf("fetch lab board: %w", err)
		}
		snapshot.Lab = lab
		return snapshot, nil
	case config.ModeQueue, "":
		snapshot.Mode = config.ModeQueue
	default:
		return snapshot, fmt.Errorf("unsupported mode %q (use queue or lab)", mode)
	}

	if len(rooms) == 0 {
		return snapshot, errNoRooms
	}
	results := queueapi.NewRoomFetcher(client, logging.NewNop()).FetchAll(ctx, rooms, queueType)
	if queueapi.AllFailed(results) {
		return snapshot, fmt.Errorf("queue service unavailable: %w", results[0].Err)
	}
	for _, result := range results {
		if result.Err != nil {
			snapshot.FailedRooms = append(snapshot.FailedRooms, result.RoomID)
		}
	}
	view := board.Aggregate(queueapi.Snapshots(results))
	snapshot.Board = &view
	return snapshot, nil
}

func printBoard(out io.Writer, hospital string, snapshot boardSnapshot, limit int) {
	if hospital = strings.TrimSpace(hospital); hospital != "" {
		fmt.Fprintln(out, hospital)
	}
	if snapshot.Lab != nil {
		fmt.Fprint(out, renderLabSummary(snapshot.Lab))
		fmt.Fprint(out, renderLabItems("Processing", snapshot.Lab.ProcessingItems, limit))
		fmt.Fprint(out, renderLabItems("Waiting", snapshot.Lab.WaitingItems, limit))
		fmt.Fprint(out, renderLabItems("Completed", snapshot.Lab.CompletedItems, limit))
		return
	}
	if snapshot.Board == nil {
		fmt.Fprintln(out, "No board data")
		return
	}
	fmt.Fprint(out, renderRoomsTable(snapshot.Board))
	fmt.Fprint(out, renderWaitingTable(snapshot.Board, limit))
	if len(snapshot.FailedRooms) > 0 {
		fmt.Fprintf(out, "Rooms not responding: %s\n", strings.Join(snapshot.FailedRooms, ", "))
	}
}
