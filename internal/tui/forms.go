package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// GoalForm is the overlay for submitting a goal to a session.
type GoalForm struct {
	sessionName string
	goalArea    textarea.Model
	width       int
}

// NewGoalForm creates a goal form targeting the named session.
func NewGoalForm(sessionName string, width int) *GoalForm {
	ga := textarea.New()
	ga.Placeholder = "What should the agent do?"
	ga.SetWidth(width - 8)
	ga.SetHeight(5)
	ga.Focus()

	return &GoalForm{
		sessionName: sessionName,
		goalArea:    ga,
		width:       width,
	}
}

// Goal returns the entered goal text.
func (gf *GoalForm) Goal() string {
	return strings.TrimSpace(gf.goalArea.Value())
}

// GoalArea returns the textarea model for update forwarding.
func (gf *GoalForm) GoalArea() *textarea.Model {
	return &gf.goalArea
}

// View renders the goal form.
func (gf *GoalForm) View() string {
	formWidth := clampFormWidth(gf.width)

	parts := []string{
		overlayTitleStyle.Render("Run Goal"),
		lipgloss.NewStyle().Bold(true).Render("Session: ") + gf.sessionName,
		"",
		gf.goalArea.View(),
		"",
		lipgloss.NewStyle().Foreground(colorDim).Render("Ctrl+s run  |  Esc cancel"),
	}
	return overlayStyle.Width(formWidth).Render(strings.Join(parts, "\n"))
}

// SessionForm is the overlay for creating a session.
type SessionForm struct {
	nameInput  textinput.Model
	groupInput textinput.Model
	focusIndex int
	width      int
}

// NewSessionForm creates an empty session form.
func NewSessionForm(width int) *SessionForm {
	ni := textinput.New()
	ni.Placeholder = "Session name"
	ni.CharLimit = 80
	ni.Width = width - 8
	ni.Focus()

	gi := textinput.New()
	gi.Placeholder = "Group (optional)"
	gi.CharLimit = 80
	gi.Width = width - 8

	return &SessionForm{
		nameInput:  ni,
		groupInput: gi,
		width:      width,
	}
}

// Name returns the entered session name.
func (sf *SessionForm) Name() string {
	return strings.TrimSpace(sf.nameInput.Value())
}

// Group returns the entered group, possibly empty.
func (sf *SessionForm) Group() string {
	return strings.TrimSpace(sf.groupInput.Value())
}

// FocusNext moves to the next field.
func (sf *SessionForm) FocusNext() {
	sf.nameInput.Blur()
	sf.groupInput.Blur()
	sf.focusIndex = (sf.focusIndex + 1) % 2
	if sf.focusIndex == 0 {
		sf.nameInput.Focus()
	} else {
		sf.groupInput.Focus()
	}
}

// FocusIndex returns the currently focused field index.
func (sf *SessionForm) FocusIndex() int {
	return sf.focusIndex
}

// NameInput returns the name input model for update forwarding.
func (sf *SessionForm) NameInput() *textinput.Model {
	return &sf.nameInput
}

// GroupInput returns the group input model for update forwarding.
func (sf *SessionForm) GroupInput() *textinput.Model {
	return &sf.groupInput
}

// View renders the session form.
func (sf *SessionForm) View() string {
	formWidth := clampFormWidth(sf.width)

	parts := []string{
		overlayTitleStyle.Render("New Session"),
		lipgloss.NewStyle().Bold(true).Render("Name:"),
		sf.nameInput.View(),
		"",
		lipgloss.NewStyle().Bold(true).Render("Group:"),
		sf.groupInput.View(),
		"",
		lipgloss.NewStyle().Foreground(colorDim).Render("Ctrl+s create  |  Tab next field  |  Esc cancel"),
	}
	return overlayStyle.Width(formWidth).Render(strings.Join(parts, "\n"))
}

// InputForm is the overlay for answering an agent input request.
type InputForm struct {
	prompt    string
	textInput textinput.Model
	width     int
}

// NewInputForm creates an input form showing the agent's prompt.
func NewInputForm(prompt string, width int) *InputForm {
	ti := textinput.New()
	ti.Placeholder = "Your answer"
	ti.CharLimit = 500
	ti.Width = width - 8
	ti.Focus()

	return &InputForm{
		prompt:    prompt,
		textInput: ti,
		width:     width,
	}
}

// Text returns the entered answer.
func (inf *InputForm) Text() string {
	return inf.textInput.Value()
}

// TextInput returns the input model for update forwarding.
func (inf *InputForm) TextInput() *textinput.Model {
	return &inf.textInput
}

// View renders the input form.
func (inf *InputForm) View() string {
	formWidth := clampFormWidth(inf.width)

	prompt := inf.prompt
	if prompt == "" {
		prompt = "The agent is waiting for input."
	}

	parts := []string{
		overlayTitleStyle.Render("Agent Input Request"),
		statusWarningStyle.Render(prompt),
		"",
		inf.textInput.View(),
		"",
		lipgloss.NewStyle().Foreground(colorDim).Render("Enter send  |  Esc dismiss request"),
	}
	return overlayStyle.Width(formWidth).Render(strings.Join(parts, "\n"))
}

func clampFormWidth(w int) int {
	if w > 70 {
		return 70
	}
	if w < 30 {
		return 30
	}
	return w
}
