package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"queuedisplay/internal/config"
	"queuedisplay/internal/ipc"
)

func newAudioCommand(ctx *commandContext) *cobra.Command {
	audioCmd := &cobra.Command{
		Use:   "audio",
		Short: "Grant or dismiss audio permission on the display",
	}
	audioCmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Enable spoken calls and hide the audio overlay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EnableAudio()
				if err != nil {
					return err
				}
				printDisplayChange(cmd.OutOrStdout(), "Audio enabled", resp)
				return nil
			})
		},
	})
	audioCmd.AddCommand(&cobra.Command{
		Use:   "dismiss",
		Short: "Hide the audio overlay and keep the display silent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DismissAudio()
				if err != nil {
					return err
				}
				printDisplayChange(cmd.OutOrStdout(), "Audio overlay dismissed", resp)
				return nil
			})
		},
	})
	return audioCmd
}

func newFullscreenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fullscreen",
		Short: "Toggle fullscreen on connected kiosk pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ToggleFullscreen()
				if err != nil {
					return err
				}
				if resp.Display.Fullscreen {
					fmt.Fprintln(cmd.OutOrStdout(), "Fullscreen on")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Fullscreen off")
				}
				return nil
			})
		},
	}
}

func newRoomsCommand(ctx *commandContext) *cobra.Command {
	roomsCmd := &cobra.Command{
		Use:   "rooms",
		Short: "Change the rooms shown on the display",
	}

	var queueType int
	var mode string
	setCmd := &cobra.Command{
		Use:   "set <room-ids>",
		Short: "Replace the displayed rooms (comma-separated ids)",
		Long: "Replace the displayed rooms. Ids may be comma-separated or given as separate " +
			"arguments; pass an empty string to clear the list.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.ConfigureRequest{
				Rooms:     config.ParseRooms(strings.Join(args, ",")),
				QueueType: queueType,
				Mode:      mode,
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Configure(req)
				if err != nil {
					return err
				}
				printDisplayChange(cmd.OutOrStdout(), "Display reconfigured", resp)
				return nil
			})
		},
	}
	setCmd.Flags().IntVar(&queueType, "queue-type", 0, "Queue type (keeps the current value when omitted)")
	setCmd.Flags().StringVar(&mode, "mode", "", "Board mode: queue or lab")
	roomsCmd.AddCommand(setCmd)
	return roomsCmd
}

func printDisplayChange(out io.Writer, headline string, resp *ipc.DisplayResponse) {
	fmt.Fprintln(out, headline)
	if resp == nil {
		return
	}
	d := resp.Display
	rooms := strings.Join(d.Rooms, ", ")
	if rooms == "" {
		rooms = "none"
	}
	fmt.Fprintf(out, "  mode=%s rooms=%s queue_type=%d audio=%s overlay=%s\n",
		d.Mode, rooms, d.QueueType, yesNo(d.AudioEnabled), yesNo(d.OverlayVisible))
}

func newTestAnnounceCommand(ctx *commandContext) *cobra.Command {
	var ticket string
	var room string
	cmd := &cobra.Command{
		Use:   "test-announce",
		Short: "Speak a sample call through the configured sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestAnnounce(ticket, room)
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("missing announce response")
				}
				if resp.Played {
					fmt.Fprintf(cmd.OutOrStdout(), "Announced: %s\n", resp.Message)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&ticket, "ticket", "A001", "Ticket code to announce")
	cmd.Flags().StringVar(&room, "room", "Phòng khám 1", "Room name to announce")
	return cmd
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					if resp != nil && resp.Message != "" {
						fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
					}
					return err
				}
				if resp == nil {
					return errors.New("missing notification response")
				}
				switch {
				case resp.Message != "":
					fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				case resp.Sent:
					fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
				default:
					fmt.Fprintln(cmd.OutOrStdout(), "Notification not sent")
				}
				return nil
			})
		},
	}
}
