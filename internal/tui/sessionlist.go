package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

// Spinner frames for the live session marker.
var spinnerFrames = []string{"●", "○"}

// SessionList is the session picker for the left panel. Sessions are grouped
// by their workspace group, ungrouped ones first.
type SessionList struct {
	sessions     []*models.Session
	flatItems    []sessionItem
	cursor       int
	scrollOffset int
	height       int
	liveID       string
	spinnerFrame int
}

type sessionItem struct {
	session   *models.Session
	isHeader  bool
	headerStr string
}

// NewSessionList creates an empty session list.
func NewSessionList() *SessionList {
	return &SessionList{}
}

// SetSessions updates the list data and rebuilds the flat item list.
func (sl *SessionList) SetSessions(sessions []*models.Session) {
	selected := sl.SelectedSession()

	sl.sessions = sessions
	sl.rebuild()

	// Try to keep the same session selected across reloads.
	if selected != nil {
		for i, item := range sl.flatItems {
			if item.session != nil && item.session.ID == selected.ID {
				sl.cursor = i
				break
			}
		}
	}
	if sl.cursor >= len(sl.flatItems) {
		sl.cursor = len(sl.flatItems) - 1
	}
	if sl.cursor < 0 {
		sl.cursor = 0
	}
	sl.skipHeaders(1)
	sl.ensureVisible()
}

// SetLive marks which session the current run belongs to.
func (sl *SessionList) SetLive(id string) {
	sl.liveID = id
}

// SetHeight sets the visible height.
func (sl *SessionList) SetHeight(h int) {
	sl.height = h
}

// SelectedSession returns the session under the cursor, or nil.
func (sl *SessionList) SelectedSession() *models.Session {
	if sl.cursor < 0 || sl.cursor >= len(sl.flatItems) {
		return nil
	}
	return sl.flatItems[sl.cursor].session
}

// MoveUp moves the cursor up, skipping group headers.
func (sl *SessionList) MoveUp() {
	if len(sl.flatItems) == 0 {
		return
	}
	sl.cursor--
	if sl.cursor < 0 {
		sl.cursor = 0
	}
	sl.skipHeaders(-1)
	sl.ensureVisible()
}

// MoveDown moves the cursor down, skipping group headers.
func (sl *SessionList) MoveDown() {
	if len(sl.flatItems) == 0 {
		return
	}
	sl.cursor++
	if sl.cursor >= len(sl.flatItems) {
		sl.cursor = len(sl.flatItems) - 1
	}
	sl.skipHeaders(1)
	sl.ensureVisible()
}

func (sl *SessionList) skipHeaders(direction int) {
	for sl.cursor >= 0 && sl.cursor < len(sl.flatItems) && sl.flatItems[sl.cursor].isHeader {
		sl.cursor += direction
	}
	if sl.cursor < 0 {
		sl.cursor = 0
		for sl.cursor < len(sl.flatItems) && sl.flatItems[sl.cursor].isHeader {
			sl.cursor++
		}
	}
	if sl.cursor >= len(sl.flatItems) {
		sl.cursor = len(sl.flatItems) - 1
		for sl.cursor >= 0 && sl.flatItems[sl.cursor].isHeader {
			sl.cursor--
		}
	}
}

func (sl *SessionList) ensureVisible() {
	if sl.cursor < sl.scrollOffset {
		sl.scrollOffset = sl.cursor
	}
	if sl.cursor >= sl.scrollOffset+sl.height {
		sl.scrollOffset = sl.cursor - sl.height + 1
	}
}

func (sl *SessionList) rebuild() {
	groups := make(map[string][]*models.Session)
	for _, s := range sl.sessions {
		groups[s.Group] = append(groups[s.Group], s)
	}

	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	// Ungrouped first, then group name order.
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == "") != (names[j] == "") {
			return names[i] == ""
		}
		return names[i] < names[j]
	})

	var items []sessionItem
	for _, g := range names {
		sessions := groups[g]
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		})

		header := "Sessions"
		if g != "" {
			header = g
		}
		items = append(items, sessionItem{
			isHeader:  true,
			headerStr: fmt.Sprintf("%s (%d)", header, len(sessions)),
		})
		for _, s := range sessions {
			items = append(items, sessionItem{session: s})
		}
	}

	sl.flatItems = items
}

// View renders the session list.
func (sl *SessionList) View(width int) string {
	if len(sl.flatItems) == 0 {
		return lipgloss.NewStyle().Foreground(colorDim).Render("No sessions. Press 'n' to create one.")
	}

	var lines []string
	end := sl.scrollOffset + sl.height
	if end > len(sl.flatItems) {
		end = len(sl.flatItems)
	}

	for i := sl.scrollOffset; i < end; i++ {
		item := sl.flatItems[i]

		if item.isHeader {
			line := sectionHeaderStyle.Render(item.headerStr)
			if i > 0 {
				line = "\n" + line
			}
			lines = append(lines, line)
			continue
		}

		s := item.session
		badge := sl.sessionBadge(s)
		title := fmt.Sprintf("%s %s", badge, s.Name)

		maxWidth := width - 2
		if maxWidth > 0 {
			title = ansi.Truncate(title, maxWidth, "…")
		}

		style := sessionIdleStyle
		if s.ID == sl.liveID {
			style = sessionLiveStyle
		}

		line := style.Render(title)
		if i == sl.cursor {
			line = selectedItemStyle.Width(width).Render(title)
		}
		lines = append(lines, "  "+line)
	}

	if sl.scrollOffset > 0 {
		lines = append([]string{lipgloss.NewStyle().Foreground(colorDim).Render("  ▲ more")}, lines...)
	}
	if end < len(sl.flatItems) {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorDim).Render("  ▼ more"))
	}

	return strings.Join(lines, "\n")
}

func (sl *SessionList) sessionBadge(s *models.Session) string {
	if s.ID == sl.liveID {
		frame := spinnerFrames[sl.spinnerFrame%len(spinnerFrames)]
		return sessionLiveStyle.Render("[" + frame + "]")
	}
	return sessionIdleStyle.Render("[ ]")
}

// Tick advances the spinner frame.
func (sl *SessionList) Tick() {
	sl.spinnerFrame = (sl.spinnerFrame + 1) % len(spinnerFrames)
}
