package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

// MessageTree renders the classified conversation forest in the right panel.
// Collapsed steps hide their children; the cursor walks visible rows only.
type MessageTree struct {
	forest       []*models.StructuredMessage
	visible      []treeRow
	cursor       int
	scrollOffset int
	width        int
	height       int
	follow       bool // stick to the bottom while new output arrives
}

type treeRow struct {
	msg   *models.StructuredMessage
	depth int
}

// NewMessageTree creates an empty message tree.
func NewMessageTree() *MessageTree {
	return &MessageTree{follow: true}
}

// SetSize sets the viewport dimensions.
func (mt *MessageTree) SetSize(width, height int) {
	mt.width = width
	mt.height = height
	mt.clamp()
}

// SetForest replaces the tree contents. While following, the cursor stays
// pinned to the newest row.
func (mt *MessageTree) SetForest(forest []*models.StructuredMessage) {
	mt.forest = forest
	mt.reflow()
	if mt.follow {
		mt.cursor = len(mt.visible) - 1
	}
	mt.clamp()
}

// SelectedMessage returns the message under the cursor, or nil.
func (mt *MessageTree) SelectedMessage() *models.StructuredMessage {
	if mt.cursor < 0 || mt.cursor >= len(mt.visible) {
		return nil
	}
	return mt.visible[mt.cursor].msg
}

// ToggleCollapse flips the collapse state of the selected step. It returns
// the step's group key and new state so the caller can persist the choice;
// ok is false when the cursor is not on a step.
func (mt *MessageTree) ToggleCollapse() (groupKey string, collapsed bool, ok bool) {
	msg := mt.SelectedMessage()
	if msg == nil || !msg.IsStep() {
		return "", false, false
	}
	msg.Collapsed = !msg.Collapsed
	mt.reflow()
	mt.clamp()
	return msg.GroupKey, msg.Collapsed, true
}

// MoveUp moves the cursor up one visible row.
func (mt *MessageTree) MoveUp() {
	mt.follow = false
	mt.cursor--
	mt.clamp()
}

// MoveDown moves the cursor down one visible row. Reaching the last row
// re-enables follow mode.
func (mt *MessageTree) MoveDown() {
	mt.cursor++
	mt.clamp()
	mt.follow = mt.cursor == len(mt.visible)-1
}

// GotoTop jumps to the first row.
func (mt *MessageTree) GotoTop() {
	mt.follow = false
	mt.cursor = 0
	mt.clamp()
}

// GotoBottom jumps to the last row and resumes following.
func (mt *MessageTree) GotoBottom() {
	mt.follow = true
	mt.cursor = len(mt.visible) - 1
	mt.clamp()
}

// ScrollUp moves the viewport without the cursor leaving the visible window.
func (mt *MessageTree) ScrollUp(n int) {
	mt.follow = false
	mt.cursor -= n
	mt.clamp()
}

// ScrollDown is the wheel counterpart of ScrollUp.
func (mt *MessageTree) ScrollDown(n int) {
	mt.cursor += n
	mt.clamp()
	mt.follow = mt.cursor == len(mt.visible)-1
}

func (mt *MessageTree) clamp() {
	if mt.cursor >= len(mt.visible) {
		mt.cursor = len(mt.visible) - 1
	}
	if mt.cursor < 0 {
		mt.cursor = 0
	}
	if mt.height <= 0 {
		return
	}
	if mt.cursor < mt.scrollOffset {
		mt.scrollOffset = mt.cursor
	}
	if mt.cursor >= mt.scrollOffset+mt.height {
		mt.scrollOffset = mt.cursor - mt.height + 1
	}
	if mt.scrollOffset < 0 {
		mt.scrollOffset = 0
	}
}

// reflow flattens the forest into visible rows. Children of collapsed steps
// are skipped; multi-line contents occupy one row (first line + ellipsis)
// unless the row is a top-level message, whose lines all show.
func (mt *MessageTree) reflow() {
	mt.visible = mt.visible[:0]
	for _, m := range mt.forest {
		mt.visible = append(mt.visible, treeRow{msg: m, depth: 0})
		if m.Collapsed {
			continue
		}
		for _, c := range m.Children {
			mt.visible = append(mt.visible, treeRow{msg: c, depth: 1})
		}
	}
}

// View renders the visible window of the tree.
func (mt *MessageTree) View() string {
	if len(mt.visible) == 0 {
		return lipgloss.NewStyle().Foreground(colorDim).Render("No output yet. Press 'g' to run a goal.")
	}

	var lines []string
	end := mt.scrollOffset + mt.height
	if end > len(mt.visible) {
		end = len(mt.visible)
	}

	for i := mt.scrollOffset; i < end; i++ {
		row := mt.visible[i]
		line := mt.renderRow(row)
		if i == mt.cursor {
			line = selectedItemStyle.Width(mt.width).Render(ansi.Strip(line))
		}
		lines = append(lines, line)
	}

	if mt.scrollOffset > 0 {
		lines = append([]string{lipgloss.NewStyle().Foreground(colorDim).Render("▲ more")}, lines...)
	}
	if end < len(mt.visible) {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorDim).Render("▼ more"))
	}

	return strings.Join(lines, "\n")
}

func (mt *MessageTree) renderRow(row treeRow) string {
	m := row.msg

	indent := strings.Repeat("  ", row.depth)
	prefix := mt.rowPrefix(m)

	content := m.Content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[:idx] + " …"
	}

	line := indent + prefix + content
	if mt.width > 0 {
		line = ansi.Truncate(line, mt.width, "…")
	}
	return mt.rowStyle(m).Render(line)
}

func (mt *MessageTree) rowPrefix(m *models.StructuredMessage) string {
	if m.IsStep() {
		marker := "▼ "
		if m.Collapsed {
			marker = "▶ "
		}
		return marker + statusGlyph(m.Status)
	}

	switch m.Role {
	case models.RoleSystem:
		return "◆ "
	case models.RoleUser:
		return "> "
	case models.RoleSubstep:
		return "· " + statusGlyph(m.Status)
	default:
		return statusGlyph(m.Status)
	}
}

func (mt *MessageTree) rowStyle(m *models.StructuredMessage) lipgloss.Style {
	switch m.Status {
	case models.StatusError:
		return statusErrorStyle
	case models.StatusWarning:
		return statusWarningStyle
	}

	switch m.Role {
	case models.RoleSystem:
		return msgSystemStyle
	case models.RoleUser:
		return msgUserStyle
	case models.RoleStep:
		return msgStepStyle
	case models.RoleSubstep:
		return msgSubstepStyle
	default:
		return msgAgentStyle
	}
}

func statusGlyph(s models.MessageStatus) string {
	switch s {
	case models.StatusSuccess:
		return statusSuccessStyle.Render("✓ ")
	case models.StatusError:
		return statusErrorStyle.Render("✗ ")
	case models.StatusWarning:
		return statusWarningStyle.Render("⚠ ")
	default:
		return ""
	}
}
