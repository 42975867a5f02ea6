package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"queuedisplay/internal/board"
	"queuedisplay/internal/queueapi"
)

// writeJSON prints v indented for --json output. Room and patient names keep
// "&" and "<" literal instead of \u escapes.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ticketCodes(tickets []queueapi.Ticket) string {
	codes := make([]string, 0, len(tickets))
	for _, t := range tickets {
		codes = append(codes, t.TicketCode)
	}
	if len(codes) == 0 {
		return "-"
	}
	return strings.Join(codes, ", ")
}

func averageLabel(view *board.View) string {
	if !view.HasAverage {
		return "-"
	}
	return fmt.Sprintf("%d min", view.AverageWaitRounded)
}

func renderRoomsTable(view *board.View) string {
	rows := make([][]string, 0, len(view.Rooms))
	for _, room := range view.Rooms {
		serving := "-"
		if room.CurrentServing != nil {
			serving = room.CurrentServing.TicketCode
		}
		rows = append(rows, []string{
			room.RoomName,
			ticketCodes(room.CallingList),
			serving,
			strconv.Itoa(room.TotalWaiting),
			fmt.Sprintf("%.1f", room.AverageWaitMinutes),
		})
	}
	return tableSpec{
		title:   "Rooms",
		caption: fmt.Sprintf("%d waiting, average wait %s", view.TotalWaiting, averageLabel(view)),
		headers: []string{"Room", "Calling", "Serving", "Waiting", "Avg wait"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	}.render()
}

func renderWaitingTable(view *board.View, limit int) string {
	entries := view.Waiting
	caption := ""
	if limit > 0 && len(entries) > limit {
		caption = fmt.Sprintf("%d more not shown", len(entries)-limit)
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return "No patients waiting\n"
	}
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			entry.TicketCode,
			entry.PatientName,
			entry.SourceRoom,
			priorityLabel(entry),
			fmt.Sprintf("%d min", entry.EstimatedWaitMinutes),
		})
	}
	return tableSpec{
		title:   "Waiting",
		caption: caption,
		headers: []string{"#", "Ticket", "Patient", "Room", "Priority", "Est. wait"},
		rows:    rows,
		aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	}.render()
}

func priorityLabel(entry board.WaitingEntry) string {
	if name := strings.TrimSpace(entry.PriorityName); name != "" {
		return name
	}
	return entry.Class
}

func renderLabSummary(lab *queueapi.LabDisplay) string {
	rows := [][]string{
		{"Pending", strconv.Itoa(lab.TotalPending)},
		{"Processing", strconv.Itoa(lab.TotalProcessing)},
		{"Completed today", strconv.Itoa(lab.TotalCompletedToday)},
		{"Average processing", fmt.Sprintf("%.0f min", lab.AverageProcessingMinutes)},
	}
	return tableSpec{
		title:   "Lab results",
		headers: []string{"Metric", "Value"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignRight},
	}.render()
}

func renderLabItems(title string, items []queueapi.LabItem, limit int) string {
	caption := ""
	if limit > 0 && len(items) > limit {
		caption = fmt.Sprintf("%d more not shown", len(items)-limit)
		items = items[:limit]
	}
	if len(items) == 0 {
		return fmt.Sprintf("%s: none\n", title)
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		flag := ""
		switch {
		case item.IsEmergency:
			flag = "emergency"
		case item.IsPriority:
			flag = "priority"
		}
		status := item.StatusName
		if status == "" {
			status = queueapi.LabStatusLabel(item.Status)
		}
		rows = append(rows, []string{
			item.OrderCode,
			item.PatientName,
			item.TestSummary,
			status,
			flag,
			fmt.Sprintf("%d min", item.WaitMinutes),
		})
	}
	return tableSpec{
		title:   title,
		caption: caption,
		headers: []string{"Order", "Patient", "Tests", "Status", "Flag", "Wait"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	}.render()
}
