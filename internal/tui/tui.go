// Package tui implements the interactive console for Agentdeck.
package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentdeck-io/agentdeck/internal/api"
	"github.com/agentdeck-io/agentdeck/internal/config"
	"github.com/agentdeck-io/agentdeck/internal/session"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run launches the console against the configured backend.
func Run() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	client := api.NewClient(settings.ServerURL)

	store, err := session.OpenGlobal()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	// First launch gets a default session backed by a fresh workspace.
	// Best-effort: with the backend down the console still starts and the
	// default is provisioned on a later launch.
	if store.NeedsDefault() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if workspace, werr := client.CreateWorkspace(ctx, ""); werr == nil {
			_, _ = store.EnsureDefault(workspace)
		}
		cancel()
	}

	manager := session.NewManager(store)

	ref := &programRef{}
	model := NewModel(client, store, manager, settings, ref)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)

	// Registry edits from other processes land as refresh messages.
	if err := store.Watch(func() {
		ref.Send(SessionsChangedMsg{})
	}); err != nil {
		store.Close()
		return fmt.Errorf("failed to watch session registry: %w", err)
	}

	// Store program reference for goroutine sends
	ref.Set(p)

	_, err = p.Run()
	return err
}
