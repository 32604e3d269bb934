package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

func renderHeader(selected *models.Session, snap models.Snapshot, connected, stopping bool, width int) string {
	name := "Agentdeck"
	if selected != nil {
		name = selected.Name
		if selected.Group != "" {
			name = selected.Group + "/" + selected.Name
		}
	}

	dot := lipgloss.NewStyle().Foreground(colorCyan).Render("●")
	title := lipgloss.NewStyle().Bold(true).Render(name)
	badge := renderRunBadge(snap, connected, stopping)

	left := fmt.Sprintf(" %s %s", dot, title)
	right := fmt.Sprintf("%s ", badge)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderRunBadge(snap models.Snapshot, connected, stopping bool) string {
	if !connected {
		return badgeWaitingStyle.Render("⚠ Disconnected")
	}
	if !snap.Running {
		return badgeIdleStyle.Render("● Idle")
	}
	if stopping {
		return badgeStopStyle.Render("● Stopping…")
	}
	if snap.WaitingForInput {
		return badgeWaitingStyle.Render("● Waiting for input")
	}
	return badgeActiveStyle.Render("● Running")
}
