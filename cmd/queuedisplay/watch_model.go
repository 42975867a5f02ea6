package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"queuedisplay/internal/api"
	"queuedisplay/internal/board"
	"queuedisplay/internal/queueapi"
)

type boardFetcher func(context.Context) (api.BoardResponse, error)

type boardMsg struct {
	board api.BoardResponse
	err   error
	at    time.Time
}

type refreshMsg struct{}

type watchTheme struct {
	header    lipgloss.Style
	clock     lipgloss.Style
	section   lipgloss.Style
	calling   lipgloss.Style
	blinking  lipgloss.Style
	emergency lipgloss.Style
	high      lipgloss.Style
	muted     lipgloss.Style
	warning   lipgloss.Style
}

func defaultWatchTheme() watchTheme {
	return watchTheme{
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("24")).Padding(0, 1),
		clock:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		section:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1),
		calling:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		blinking:  lipgloss.NewStyle().Bold(true).Blink(true).Foreground(lipgloss.Color("226")),
		emergency: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		high:      lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	}
}

type watchModel struct {
	fetch    boardFetcher
	interval time.Duration
	theme    watchTheme

	board   *api.BoardResponse
	err     error
	updated time.Time
	width   int
	height  int
}

func newWatchModel(fetch boardFetcher, interval time.Duration) watchModel {
	if interval <= 0 {
		interval = 4 * time.Second
	}
	return watchModel{fetch: fetch, interval: interval, theme: defaultWatchTheme()}
}

func (m watchModel) fetchCmd() tea.Cmd {
	fetch := m.fetch
	interval := m.interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		resp, err := fetch(ctx)
		return boardMsg{board: resp, err: err, at: time.Now()}
	}
}

// Init implements tea.Model.
func (m watchModel) Init() tea.Cmd {
	return m.fetchCmd()
}

// Update implements tea.Model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case boardMsg:
		m.updated = msg.at
		m.err = msg.err
		if msg.err == nil {
			board := msg.board
			m.board = &board
		}
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshMsg{} })
	case refreshMsg:
		return m, m.fetchCmd()
	}
	return m, nil
}

// View implements tea.Model.
func (m watchModel) View() string {
	if m.board == nil {
		if m.err != nil {
			return m.theme.warning.Render("Cannot reach the daemon: "+m.err.Error()) + "\n" + m.theme.muted.Render("r refresh · q quit")
		}
		return "Loading..."
	}

	b := m.board
	var sections []string
	title := b.HospitalName
	if strings.TrimSpace(title) == "" {
		title = "Queue display"
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, m.theme.header.Render(title), " ", m.theme.clock.Render(b.Clock)))

	switch {
	case b.Display.MissingConfig:
		sections = append(sections, m.theme.warning.Render("No rooms configured. Run `queuedisplay rooms set <ids>`."))
	case b.Lab != nil:
		sections = append(sections, m.renderLab(b.Lab))
	case b.Board != nil:
		sections = append(sections, m.renderRooms(b), m.renderWaiting(b))
	default:
		sections = append(sections, m.theme.muted.Render("Waiting for the first poll..."))
	}

	if len(b.RecentCalls) > 0 {
		sections = append(sections, m.theme.section.Render("Recently called"))
		for _, call := range b.RecentCalls {
			sections = append(sections, fmt.Sprintf("  %s → %s", m.theme.calling.Render(call.TicketCode), call.RoomName))
		}
	}

	sections = append(sections, "", m.footer())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m watchModel) isBlinking(id string) bool {
	for _, blinking := range m.board.Blinking {
		if blinking == id {
			return true
		}
	}
	return false
}

func (m watchModel) renderRooms(b *api.BoardResponse) string {
	lines := []string{m.theme.section.Render("Rooms")}
	for _, room := range b.Board.Rooms {
		codes := make([]string, 0, len(room.CallingList))
		for _, t := range room.CallingList {
			style := m.theme.calling
			if m.isBlinking(t.ID) {
				style = m.theme.blinking
			}
			codes = append(codes, style.Render(t.TicketCode))
		}
		calling := m.theme.muted.Render("-")
		if len(codes) > 0 {
			calling = strings.Join(codes, " ")
		}
		lines = append(lines, fmt.Sprintf("  %-20s %s  %s", room.RoomName, calling, m.theme.muted.Render(fmt.Sprintf("(%d waiting)", room.TotalWaiting))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m watchModel) renderWaiting(b *api.BoardResponse) string {
	view := b.Board
	average := "-"
	if view.HasAverage {
		average = fmt.Sprintf("%d min", view.AverageWaitRounded)
	}
	lines := []string{m.theme.section.Render(fmt.Sprintf("Waiting: %d · average wait %s", view.TotalWaiting, average))}
	limit := len(view.Waiting)
	if m.height > 0 {
		// Header, rooms, recent calls, and footer take roughly this much.
		if room := m.height - len(view.Rooms) - len(b.RecentCalls) - 10; room < limit {
			limit = max(room, 0)
		}
	}
	for i, entry := range view.Waiting[:limit] {
		line := fmt.Sprintf("  %3d  %-8s %-24s %s", i+1, entry.TicketCode, entry.PatientName, entry.SourceRoom)
		switch entry.Class {
		case board.ClassEmergency:
			line = m.theme.emergency.Render(line)
		case board.ClassHigh:
			line = m.theme.high.Render(line)
		}
		lines = append(lines, line)
	}
	if hidden := len(view.Waiting) - limit; hidden > 0 {
		lines = append(lines, m.theme.muted.Render(fmt.Sprintf("  … %d more", hidden)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m watchModel) renderLab(lab *queueapi.LabDisplay) string {
	lines := []string{m.theme.section.Render(fmt.Sprintf("Lab · %d pending · %d processing · %d completed today",
		lab.TotalPending, lab.TotalProcessing, lab.TotalCompletedToday))}
	for _, item := range lab.CompletedItems {
		style := m.theme.calling
		if m.isBlinking(item.ID) {
			style = m.theme.blinking
		}
		lines = append(lines, fmt.Sprintf("  %s  %s", style.Render(item.OrderCode), item.PatientName))
	}
	for _, item := range lab.ProcessingItems {
		lines = append(lines, m.theme.muted.Render(fmt.Sprintf("  %s  %s  %s", item.OrderCode, item.PatientName, queueapi.LabStatusLabel(item.Status))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m watchModel) footer() string {
	var parts []string
	d := m.board.Display
	if d.Stale {
		parts = append(parts, m.theme.warning.Render("backend unreachable, showing last board"))
	} else if len(d.FailedRooms) > 0 {
		parts = append(parts, m.theme.warning.Render("rooms not responding: "+strings.Join(d.FailedRooms, ", ")))
	}
	if m.err != nil {
		parts = append(parts, m.theme.warning.Render("refresh failed: "+m.err.Error()))
	}
	audio := "audio off"
	if d.AudioEnabled {
		audio = "audio on"
	}
	parts = append(parts, m.theme.muted.Render(fmt.Sprintf("%s · updated %s · r refresh · q quit", audio, m.updated.Format("15:04:05"))))
	return strings.Join(parts, "  ")
}
