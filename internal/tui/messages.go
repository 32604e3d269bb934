package tui

import (
	"github.com/agentdeck-io/agentdeck/internal/api"
	"github.com/agentdeck-io/agentdeck/internal/models"
)

// SnapshotMsg carries one poll result from the backend. Info is the
// workspace stats fetched alongside the status; WsOK marks whether that
// best-effort call succeeded.
type SnapshotMsg struct {
	Snap models.Snapshot
	Info api.WorkspaceInfo
	WsOK bool
	Err  error
}

// ConfigLoadedMsg carries the backend's effective feature flags.
type ConfigLoadedMsg struct {
	Flags models.FeatureFlags
}

// WorkspaceStatsMsg carries workspace stats for the status bar.
type WorkspaceStatsMsg struct {
	Info api.WorkspaceInfo
}

// RunStartedMsg signals a goal was accepted by the backend.
type RunStartedMsg struct {
	SessionID string
}

// RunStoppedMsg signals the backend acknowledged a stop request.
type RunStoppedMsg struct{}

// StopWatchdogMsg fires when a stop request has been pending too long.
type StopWatchdogMsg struct{}

// InputSentMsg signals a reply to an input request was delivered.
type InputSentMsg struct{}

// InputCancelledMsg signals a pending input request was dismissed.
type InputCancelledMsg struct{}

// SessionCreatedMsg signals a session and its backend workspace now exist.
type SessionCreatedMsg struct {
	Session *models.Session
}

// SessionDeletedMsg signals a session was removed.
type SessionDeletedMsg struct{}

// SessionsChangedMsg signals the registry changed (possibly by another
// process) and views should re-read it.
type SessionsChangedMsg struct{}

// SessionLogsMsg carries cached logs for a non-live session being viewed.
type SessionLogsMsg struct {
	SessionID string
	Logs      []models.LogEntry
}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}

// TickMsg is the periodic poll trigger.
type TickMsg struct{}

// spinnerTickMsg advances the live-session spinner.
type spinnerTickMsg struct{}
