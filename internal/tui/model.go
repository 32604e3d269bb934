package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agentdeck-io/agentdeck/internal/api"
	"github.com/agentdeck-io/agentdeck/internal/classify"
	"github.com/agentdeck-io/agentdeck/internal/models"
	"github.com/agentdeck-io/agentdeck/internal/progress"
	"github.com/agentdeck-io/agentdeck/internal/session"
)

// Model is the root Bubbletea model for the console.
type Model struct {
	client   *api.Client
	store    *session.FileStore
	manager  *session.Manager
	settings *models.Settings

	// Backend state
	snap        models.Snapshot
	connected   bool
	flags       models.FeatureFlags
	flagsLoaded bool
	wsInfo      api.WorkspaceInfo

	// The logs backing the message tree. viewLive means they mirror the
	// polled snapshot; otherwise they are a session's cached logs.
	viewLogs []models.LogEntry
	viewLive bool
	tree     []*models.StructuredMessage
	stages   []models.ProgressStage

	// UI state
	focusedPanel  int // 0=sessions, 1=messages
	activeOverlay int
	splitRatio    float64
	width         int
	height        int

	confirmMode    int
	confirmSession *models.Session

	stopping      bool
	inputPrompted bool
	err           error

	// Child components
	sessionList *SessionList
	msgTree     *MessageTree
	goalForm    *GoalForm
	sessionForm *SessionForm
	inputForm   *InputForm

	// Program reference for goroutine Send()
	program *programRef

	spinnerRunning bool
	dragging       bool
}

// NewModel creates the initial console model.
func NewModel(client *api.Client, store *session.FileStore, manager *session.Manager, settings *models.Settings, program *programRef) Model {
	sl := NewSessionList()
	sl.SetSessions(store.List())

	return Model{
		client:      client,
		store:       store,
		manager:     manager,
		settings:    settings,
		splitRatio:  0.3,
		viewLive:    true,
		sessionList: sl,
		msgTree:     NewMessageTree(),
		program:     program,
	}
}

func (m *Model) pollInterval() time.Duration {
	if m.settings.PollIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(m.settings.PollIntervalMS) * time.Millisecond
}

// effectiveFlags prefers the backend-reported configuration; before it loads,
// the local settings stand in.
func (m *Model) effectiveFlags() models.FeatureFlags {
	if m.flagsLoaded {
		return m.flags
	}
	return m.settings.Features
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadConfigCmd(m.client),
		workspaceStatsCmd(m.client, ""),
		pollSnapshotCmd(m.client),
		pollTick(m.pollInterval()),
	)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	// ── Poll results ───────────────────────────────────────────────
	case SnapshotMsg:
		if msg.Err != nil {
			// Keep the previous snapshot; the next tick retries.
			m.connected = false
			return m, nil
		}
		m.connected = true
		m.snap = msg.Snap
		if msg.WsOK {
			m.wsInfo = msg.Info
		}

		m.manager.Observe(msg.Snap)
		m.sessionList.SetLive(m.manager.Live())

		if m.stopping && !msg.Snap.Running {
			m.stopping = false
		}

		m.syncInputOverlay()

		m.refreshViewLive()
		if m.viewLive {
			m.viewLogs = msg.Snap.Logs
			m.rebuildTree()
		}

		if msg.Snap.Running && !m.spinnerRunning {
			m.spinnerRunning = true
			cmds = append(cmds, spinnerTick())
		}
		return m, tea.Batch(cmds...)

	case TickMsg:
		return m, tea.Batch(
			pollSnapshotCmd(m.client),
			pollTick(m.pollInterval()),
		)

	case ConfigLoadedMsg:
		m.flags = msg.Flags
		m.flagsLoaded = true
		m.rebuildTree()
		return m, nil

	case WorkspaceStatsMsg:
		m.wsInfo = msg.Info
		return m, nil

	// ── Run control ────────────────────────────────────────────────
	case RunStartedMsg:
		m.manager.Adopt(msg.SessionID)
		m.sessionList.SetLive(msg.SessionID)
		m.refreshViewLive()
		return m, pollSnapshotCmd(m.client)

	case RunStoppedMsg:
		m.stopping = true
		return m, stopWatchdog()

	case StopWatchdogMsg:
		if m.stopping {
			m.err = fmt.Errorf("the agent has not stopped yet; it honors stop requests between steps")
			cmds = append(cmds, clearErrorAfter(10*time.Second))
		}
		return m, tea.Batch(cmds...)

	case InputSentMsg, InputCancelledMsg:
		if m.activeOverlay == overlayInput {
			m.activeOverlay = overlayNone
			m.inputForm = nil
		}
		return m, pollSnapshotCmd(m.client)

	// ── Session registry ───────────────────────────────────────────
	case SessionCreatedMsg:
		m.activeOverlay = overlayNone
		m.sessionForm = nil
		m.sessionList.SetSessions(m.store.List())
		return m, nil

	case SessionDeletedMsg:
		m.confirmSession = nil
		m.sessionList.SetSessions(m.store.List())
		return m, m.onSelectionChanged()

	case SessionsChangedMsg:
		m.sessionList.SetSessions(m.store.List())
		m.sessionList.SetLive(m.manager.Live())
		return m, m.onSelectionChanged()

	case SessionLogsMsg:
		selected := m.sessionList.SelectedSession()
		if !m.viewLive && selected != nil && selected.ID == msg.SessionID {
			m.viewLogs = msg.Logs
			m.rebuildTree()
		}
		return m, nil

	// ── Spinner ────────────────────────────────────────────────────
	case spinnerTickMsg:
		if m.snap.Running {
			m.sessionList.Tick()
			cmds = append(cmds, spinnerTick())
		} else {
			m.spinnerRunning = false
		}
		return m, tea.Batch(cmds...)

	// ── Error handling ─────────────────────────────────────────────
	case ErrorMsg:
		m.err = msg.Err
		return m, clearErrorAfter(5 * time.Second)

	case ClearErrorMsg:
		m.err = nil
		return m, nil
	}

	return m, nil
}

// syncInputOverlay opens the input form when the backend starts waiting and
// closes it when the wait ends out from under us.
func (m *Model) syncInputOverlay() {
	if !m.snap.WaitingForInput {
		m.inputPrompted = false
		if m.activeOverlay == overlayInput {
			m.activeOverlay = overlayNone
			m.inputForm = nil
		}
		return
	}

	if !m.inputPrompted && m.activeOverlay == overlayNone {
		m.inputPrompted = true
		m.openInputForm()
	}
}

func (m *Model) openInputForm() {
	m.inputForm = NewInputForm(lastInputPrompt(m.snap.Logs), m.formWidth())
	m.activeOverlay = overlayInput
}

// lastInputPrompt finds the text of the most recent input request.
func lastInputPrompt(logs []models.LogEntry) string {
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].Kind == models.KindInputRequest {
			return logs[i].Message
		}
	}
	return ""
}

// refreshViewLive recomputes whether the message tree mirrors the live run.
// With no session selected the console shows whatever the backend reports.
func (m *Model) refreshViewLive() {
	selected := m.sessionList.SelectedSession()
	if selected == nil {
		m.viewLive = true
		return
	}
	live := m.manager.Live()
	m.viewLive = live == "" || live == selected.ID
}

// onSelectionChanged reloads the message tree source for the newly selected
// session.
func (m *Model) onSelectionChanged() tea.Cmd {
	m.refreshViewLive()
	if m.viewLive {
		m.viewLogs = m.snap.Logs
		m.rebuildTree()
		return nil
	}

	selected := m.sessionList.SelectedSession()
	if selected == nil {
		return nil
	}
	m.viewLogs = nil
	m.rebuildTree()
	return loadSessionLogsCmd(m.store, selected.ID)
}

// rebuildTree reclassifies the current log view and rederives the stage bar.
func (m *Model) rebuildTree() {
	var prefs map[string]bool
	if selected := m.sessionList.SelectedSession(); selected != nil {
		prefs = selected.Collapse
	}

	flags := m.effectiveFlags()
	m.tree = classify.Classify(m.viewLogs, m.tree, prefs, classify.Options{HITL: flags.EnableHITL})
	m.msgTree.SetForest(m.tree)
	m.stages = progress.DeriveStages(m.viewLogs, flags.EnableDeepResearch)
}

// ── Key handling ─────────────────────────────────────────────────

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirmMode != confirmNone {
		return m.handleConfirmKey(msg)
	}
	if m.activeOverlay != overlayNone {
		return m.handleOverlayKey(msg)
	}

	switch {
	case key.Matches(msg, globalKeys.Quit), msg.Type == tea.KeyCtrlC:
		if m.snap.Running {
			m.confirmMode = confirmQuit
			return nil
		}
		return m.doQuit()

	case key.Matches(msg, globalKeys.Help):
		m.activeOverlay = overlayHelp
		return nil

	case key.Matches(msg, globalKeys.Tab):
		m.focusedPanel = 1 - m.focusedPanel
		return nil
	}

	if m.focusedPanel == 0 {
		return m.handleSessionListKey(msg)
	}
	return m.handleMessageTreeKey(msg)
}

func (m *Model) handleSessionListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, sessionListKeys.Up):
		m.sessionList.MoveUp()
		return m.onSelectionChanged()

	case key.Matches(msg, sessionListKeys.Down):
		m.sessionList.MoveDown()
		return m.onSelectionChanged()

	case key.Matches(msg, sessionListKeys.New):
		m.sessionForm = NewSessionForm(m.formWidth())
		m.activeOverlay = overlayNewSession
		return nil

	case key.Matches(msg, sessionListKeys.Goal), key.Matches(msg, sessionListKeys.Enter):
		return m.openGoalForm()

	case key.Matches(msg, sessionListKeys.Stop):
		if m.snap.Running {
			m.confirmMode = confirmStop
		}
		return nil

	case key.Matches(msg, sessionListKeys.Delete):
		if selected := m.sessionList.SelectedSession(); selected != nil {
			m.confirmMode = confirmDelete
			m.confirmSession = selected
		}
		return nil
	}
	return nil
}

func (m *Model) handleMessageTreeKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, messageTreeKeys.Up):
		m.msgTree.MoveUp()

	case key.Matches(msg, messageTreeKeys.Down):
		m.msgTree.MoveDown()

	case key.Matches(msg, messageTreeKeys.Top):
		m.msgTree.GotoTop()

	case key.Matches(msg, messageTreeKeys.Bottom):
		m.msgTree.GotoBottom()

	case key.Matches(msg, messageTreeKeys.Collapse):
		groupKey, collapsed, ok := m.msgTree.ToggleCollapse()
		if !ok {
			return nil
		}
		if selected := m.sessionList.SelectedSession(); selected != nil {
			if err := m.store.SetCollapse(selected.ID, groupKey, collapsed); err != nil {
				m.err = err
				return clearErrorAfter(5 * time.Second)
			}
		}

	case key.Matches(msg, messageTreeKeys.Reply):
		if m.snap.WaitingForInput {
			m.openInputForm()
		}
	}
	return nil
}

func (m *Model) openGoalForm() tea.Cmd {
	selected := m.sessionList.SelectedSession()
	if selected == nil {
		m.err = fmt.Errorf("create a session first (press 'n')")
		return clearErrorAfter(3 * time.Second)
	}
	if m.snap.Running {
		m.err = fmt.Errorf("a run is already active")
		return clearErrorAfter(3 * time.Second)
	}

	m.goalForm = NewGoalForm(selected.Name, m.formWidth())
	m.activeOverlay = overlayGoal
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		mode := m.confirmMode
		m.confirmMode = confirmNone
		switch mode {
		case confirmQuit:
			return m.doQuit()
		case confirmStop:
			return stopRunCmd(m.client)
		case confirmDelete:
			if m.confirmSession != nil {
				return deleteSessionCmd(m.client, m.store, m.confirmSession)
			}
		}
	case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
		m.confirmMode = confirmNone
		m.confirmSession = nil
	}
	return nil
}

func (m *Model) handleOverlayKey(msg tea.KeyMsg) tea.Cmd {
	switch m.activeOverlay {
	case overlayHelp:
		if key.Matches(msg, overlayKeys.Cancel) || key.Matches(msg, globalKeys.Help) {
			m.activeOverlay = overlayNone
		}
		return nil

	case overlayNewSession:
		return m.handleSessionFormKey(msg)

	case overlayGoal:
		return m.handleGoalFormKey(msg)

	case overlayInput:
		return m.handleInputFormKey(msg)
	}
	return nil
}

func (m *Model) handleSessionFormKey(msg tea.KeyMsg) tea.Cmd {
	if m.sessionForm == nil {
		return nil
	}

	switch {
	case key.Matches(msg, overlayKeys.Submit):
		name := m.sessionForm.Name()
		if name == "" {
			m.err = fmt.Errorf("session name is required")
			return clearErrorAfter(3 * time.Second)
		}
		return createSessionCmd(m.client, m.store, name, m.sessionForm.Group())

	case key.Matches(msg, overlayKeys.Cancel):
		m.activeOverlay = overlayNone
		m.sessionForm = nil
		return nil

	case key.Matches(msg, overlayKeys.Tab):
		m.sessionForm.FocusNext()
		return nil
	}

	if m.sessionForm.FocusIndex() == 0 {
		ti := m.sessionForm.NameInput()
		newTI, _ := ti.Update(msg)
		*ti = newTI
	} else {
		ti := m.sessionForm.GroupInput()
		newTI, _ := ti.Update(msg)
		*ti = newTI
	}
	return nil
}

func (m *Model) handleGoalFormKey(msg tea.KeyMsg) tea.Cmd {
	if m.goalForm == nil {
		return nil
	}

	switch {
	case key.Matches(msg, overlayKeys.Submit):
		goal := m.goalForm.Goal()
		if goal == "" {
			m.err = fmt.Errorf("goal is required")
			return clearErrorAfter(3 * time.Second)
		}
		selected := m.sessionList.SelectedSession()
		if selected == nil {
			m.activeOverlay = overlayNone
			m.goalForm = nil
			return nil
		}
		m.activeOverlay = overlayNone
		m.goalForm = nil
		return startRunCmd(
			m.client,
			selected.ID,
			goal,
			selected.WorkspacePath(m.wsInfo.WorkspaceRoot),
			m.settings.Features.Map(),
		)

	case key.Matches(msg, overlayKeys.Cancel):
		m.activeOverlay = overlayNone
		m.goalForm = nil
		return nil
	}

	ta := m.goalForm.GoalArea()
	newTA, _ := ta.Update(msg)
	*ta = newTA
	return nil
}

func (m *Model) handleInputFormKey(msg tea.KeyMsg) tea.Cmd {
	if m.inputForm == nil {
		return nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		return provideInputCmd(m.client, m.inputForm.Text())
	case tea.KeyEscape:
		return cancelInputCmd(m.client)
	}

	ti := m.inputForm.TextInput()
	newTI, _ := ti.Update(msg)
	*ti = newTI
	return nil
}

// doQuit flushes pending session state and exits.
func (m *Model) doQuit() tea.Cmd {
	m.manager.Flush()
	m.store.Close()
	m.program.Clear()
	return tea.Quit
}

// ── Mouse handling ───────────────────────────────────────────────

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Action {
	case tea.MouseActionPress:
		layout := computeLayout(m.width, m.height, m.splitRatio)
		x := msg.X

		if x >= layout.dividerCol-1 && x <= layout.dividerCol+1 {
			m.dragging = true
			return nil
		}
		if x < layout.dividerCol {
			m.focusedPanel = 0
		} else {
			m.focusedPanel = 1
		}

	case tea.MouseActionRelease:
		m.dragging = false

	case tea.MouseActionMotion:
		if m.dragging {
			ratio := float64(msg.X) / float64(m.width)
			if ratio < 0.2 {
				ratio = 0.2
			}
			if ratio > 0.8 {
				ratio = 0.8
			}
			m.splitRatio = ratio
			m.updateDimensions()
		}
	}

	if msg.Action == tea.MouseActionPress {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if m.focusedPanel == 0 {
				m.sessionList.MoveUp()
				return m.onSelectionChanged()
			}
			m.msgTree.ScrollUp(3)
		case tea.MouseButtonWheelDown:
			if m.focusedPanel == 0 {
				m.sessionList.MoveDown()
				return m.onSelectionChanged()
			}
			m.msgTree.ScrollDown(3)
		}
	}

	return nil
}

// ── Dimension helpers ────────────────────────────────────────────

func (m *Model) formWidth() int {
	w := m.width - 10
	if w > 70 {
		w = 70
	}
	if w < 30 {
		w = 30
	}
	return w
}

func (m *Model) updateDimensions() {
	layout := computeLayout(m.width, m.height, m.splitRatio)
	innerHeight := layout.contentHeight - 2
	rightInner := layout.rightWidth - 2

	if innerHeight < 1 {
		innerHeight = 1
	}
	if rightInner < 1 {
		rightInner = 1
	}

	m.sessionList.SetHeight(innerHeight)
	m.msgTree.SetSize(rightInner, innerHeight)
}

// ── View ─────────────────────────────────────────────────────────

// View renders the console.
func (m Model) View() string {
	if m.width < 80 || m.height < 24 {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(colorYellow).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				"Terminal too small",
				lipgloss.NewStyle().Foreground(colorDim).Render(
					"Need 80x24, have "+lipgloss.NewStyle().Bold(true).Render(sizeStr),
				),
			))
	}

	layout := computeLayout(m.width, m.height, m.splitRatio)

	header := renderHeader(m.sessionList.SelectedSession(), m.snap, m.connected, m.stopping, m.width)
	stageBar := " " + renderStageBar(m.stages, m.width-2)

	leftContent := m.sessionList.View(layout.leftWidth - 2)
	rightContent := m.msgTree.View()
	panels := renderPanels(leftContent, rightContent, layout, m.focusedPanel)

	statusBar := renderStatusBar(&m, m.width)

	view := lipgloss.JoinVertical(lipgloss.Left, header, stageBar, panels, statusBar)

	if m.activeOverlay != overlayNone {
		var overlayContent string
		switch m.activeOverlay {
		case overlayHelp:
			overlayContent = renderHelp(m.width)
		case overlayNewSession:
			if m.sessionForm != nil {
				overlayContent = m.sessionForm.View()
			}
		case overlayGoal:
			if m.goalForm != nil {
				overlayContent = m.goalForm.View()
			}
		case overlayInput:
			if m.inputForm != nil {
				overlayContent = m.inputForm.View()
			}
		}
		if overlayContent != "" {
			view = renderOverlay(view, overlayContent, m.width, m.height)
		}
	}

	return view
}
