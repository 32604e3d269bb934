package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// confirmMode values.
const (
	confirmNone   = 0
	confirmDelete = 1
	confirmQuit   = 2
	confirmStop   = 3
)

func renderStatusBar(m *Model, width int) string {
	if m.confirmMode == confirmDelete {
		name := ""
		if m.confirmSession != nil {
			name = m.confirmSession.Name
		}
		return renderConfirmBar(fmt.Sprintf("Delete session %q and its workspace? (y/n)", name), width)
	}
	if m.confirmMode == confirmQuit {
		return renderConfirmBar("A run is active. Quit anyway? (y/n)", width)
	}
	if m.confirmMode == confirmStop {
		return renderConfirmBar("Stop the running agent? (y/n)", width)
	}

	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	left := " " + getKeyHints(m)

	right := renderWorkspaceStats(m) + " "
	if m.connected {
		right += lipgloss.NewStyle().Foreground(colorGreen).Render("Connected") + " "
	} else {
		right += lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Render("⚠ Disconnected") + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderWorkspaceStats(m *Model) string {
	if m.wsInfo.WorkspaceRoot == "" {
		return ""
	}
	return hintStyle.Render(fmt.Sprintf("%d files · %s", m.wsInfo.FileCount, humanSize(m.wsInfo.TotalSize)))
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func getKeyHints(m *Model) string {
	if m.activeOverlay != overlayNone {
		switch m.activeOverlay {
		case overlayInput:
			return keyHint("Enter", "send") + "  " + keyHint("Esc", "dismiss")
		default:
			return keyHint("Ctrl+s", "submit") + "  " + keyHint("Esc", "cancel")
		}
	}

	base := keyHint("Ctrl+q", "quit") + "  " + keyHint("Ctrl+h", "help") + "  " + keyHint("Tab", "switch")

	if m.focusedPanel == 0 {
		hints := base + "  " + keyHint("n", "new") + "  " + keyHint("g", "goal") + "  " +
			keyHint("x", "delete")
		if m.snap.Running {
			hints += "  " + keyHint("S", "stop")
		}
		return hints
	}

	hints := base + "  " + keyHint("j/k", "navigate") + "  " + keyHint("Space", "fold")
	if m.snap.WaitingForInput {
		hints += "  " + keyHint("i", "answer")
	}
	return hints
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderConfirmBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorYellow).
		Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
		Width(width).
		Render(" " + msg)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}
