package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentdeck-io/agentdeck/internal/api"
	"github.com/agentdeck-io/agentdeck/internal/models"
	"github.com/agentdeck-io/agentdeck/internal/session"
)

// stopWatchdogTimeout is how long a stop request may stay unacknowledged
// before the console warns. The backend stops cooperatively; agents mid-call
// can take a while to notice the flag.
const stopWatchdogTimeout = 120 * time.Second

func pollSnapshotCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		snap, err := client.Status(ctx)
		if err != nil {
			return SnapshotMsg{Err: err}
		}

		info, werr := client.Workspace(ctx, "")
		if werr == nil {
			snap.ActiveWorkspace = info.ActiveWorkspaceRoot
		}
		return SnapshotMsg{Snap: snap, Info: info, WsOK: werr == nil}
	}
}

func loadConfigCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		flags, err := client.Config(ctx)
		if err != nil {
			// Backend config is advisory; local settings stay in effect.
			return nil
		}
		return ConfigLoadedMsg{Flags: flags}
	}
}

func workspaceStatsCmd(client *api.Client, root string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		info, err := client.Workspace(ctx, root)
		if err != nil {
			return nil
		}
		return WorkspaceStatsMsg{Info: info}
	}
}

func startRunCmd(client *api.Client, sessionID, goal, workspaceRoot string, overrides map[string]bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := client.Run(ctx, api.RunRequest{
			Goal:          goal,
			WorkspaceRoot: workspaceRoot,
			Config:        overrides,
		})
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to start run: %w", err)}
		}
		return RunStartedMsg{SessionID: sessionID}
	}
}

func stopRunCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := client.Stop(ctx); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to stop run: %w", err)}
		}
		return RunStoppedMsg{}
	}
}

func provideInputCmd(client *api.Client, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := client.ProvideInput(ctx, text); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to send input: %w", err)}
		}
		return InputSentMsg{}
	}
}

func cancelInputCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := client.CancelInput(ctx); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to cancel input: %w", err)}
		}
		return InputCancelledMsg{}
	}
}

// createSessionCmd provisions a backend workspace, then records the session.
func createSessionCmd(client *api.Client, store *session.FileStore, name, group string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		workspace, err := client.CreateWorkspace(ctx, group)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to create workspace: %w", err)}
		}

		sess, err := store.Create(name, workspace, group)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save session: %w", err)}
		}
		return SessionCreatedMsg{Session: sess}
	}
}

// deleteSessionCmd removes the registry record and the backend workspace. The
// workspace delete is best-effort: the backend refuses while running, and the
// record should go away regardless.
func deleteSessionCmd(client *api.Client, store *session.FileStore, sess *models.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := store.Delete(sess.ID); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to delete session: %w", err)}
		}
		_ = client.DeleteWorkspace(ctx, sess.Workspace, sess.Group)
		return SessionDeletedMsg{}
	}
}

func loadSessionLogsCmd(store *session.FileStore, sessionID string) tea.Cmd {
	return func() tea.Msg {
		logs, err := store.LoadLogs(sessionID)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to load session logs: %w", err)}
		}
		return SessionLogsMsg{SessionID: sessionID, Logs: logs}
	}
}

func pollTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func spinnerTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func stopWatchdog() tea.Cmd {
	return tea.Tick(stopWatchdogTimeout, func(_ time.Time) tea.Msg {
		return StopWatchdogMsg{}
	})
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}
