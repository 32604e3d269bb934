package models

import (
	"path"
	"strings"
	"time"
)

// Session is a durable pairing of a conversation history and a backend
// workspace. Whether a session is currently live is tracked by the session
// manager, never stored in the record itself.
type Session struct {
	ID        string          `yaml:"id"`
	Name      string          `yaml:"name"`
	Workspace string          `yaml:"workspace"`
	Group     string          `yaml:"group,omitempty"`
	Collapse  map[string]bool `yaml:"collapse,omitempty"` // step group key → collapsed
	CreatedAt time.Time       `yaml:"created_at"`

	// Logs is the cached snapshot of the session's run log. It is held in
	// memory and persisted separately from the registry record.
	Logs []LogEntry `yaml:"-"`
}

// NewSession creates a session record with default values.
func NewSession(id, name, workspace, group string) *Session {
	return &Session{
		ID:        id,
		Name:      name,
		Workspace: workspace,
		Group:     group,
		Collapse:  make(map[string]bool),
		CreatedAt: time.Now().UTC(),
	}
}

// RelPath returns the session's workspace path relative to the base root
// (group/workspace, or just workspace without a group).
func (s *Session) RelPath() string {
	if s.Group != "" {
		return path.Join(s.Group, s.Workspace)
	}
	return s.Workspace
}

// WorkspacePath computes the session's full workspace path under the given
// base root, with separators normalized to forward slashes.
func (s *Session) WorkspacePath(root string) string {
	return path.Join(NormalizePath(root), s.RelPath())
}

// NormalizePath converts a filesystem path to forward slashes and strips a
// trailing separator, so paths from different platforms compare structurally.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimSuffix(p, "/")
}
