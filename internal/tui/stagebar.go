package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

// renderStageBar draws the run's progress stages as a single line, e.g.
// "✓ Initialize ─ ✓ Research ─ ◐ Plan ─ ○ Execute ─ ○ Complete".
func renderStageBar(stages []models.ProgressStage, width int) string {
	if len(stages) == 0 {
		return ""
	}

	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = stageGlyph(s.Status) + " " + stageStyle(s.Status).Render(s.Label)
	}

	line := strings.Join(parts, stagePendingStyle.Render(" ─ "))
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

func stageGlyph(s models.StageStatus) string {
	switch s {
	case models.StageActive:
		return stageActiveStyle.Render("◐")
	case models.StageCompleted:
		return stageCompletedStyle.Render("✓")
	case models.StageError:
		return stageErrorStyle.Render("✗")
	default:
		return stagePendingStyle.Render("○")
	}
}

func stageStyle(s models.StageStatus) lipgloss.Style {
	switch s {
	case models.StageActive:
		return stageActiveStyle
	case models.StageCompleted:
		return stageCompletedStyle
	case models.StageError:
		return stageErrorStyle
	default:
		return stagePendingStyle
	}
}
