package session

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

// Store is the registry surface the manager needs. *FileStore satisfies it.
type Store interface {
	List() []*models.Session
	Get(id string) (*models.Session, bool)
	UpdateLogs(id string, logs []models.LogEntry) error
}

// quietPeriod is how long log traffic must stay idle before the live
// session's cache is written. Snapshots arrive every poll tick while a run is
// active; writing on each one would hammer the disk for no benefit.
const quietPeriod = 2 * time.Second

// Manager reconciles polled backend snapshots against the session registry.
// It tracks which session (if any) the current run belongs to and debounces
// cache writes while the run is producing output.
type Manager struct {
	store Store

	mu      sync.Mutex
	liveID  string
	pending []models.LogEntry
	timer   *time.Timer
	quiet   time.Duration
}

// NewManager creates a manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, quiet: quietPeriod}
}

// Live returns the ID of the session the current run is attributed to, or ""
// when no run is live.
func (m *Manager) Live() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveID
}

// Adopt attributes the current run to a specific session, bypassing workspace
// matching. Used when this console started the run itself.
func (m *Manager) Adopt(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liveID = id
}

// Observe feeds one polled snapshot through the reconciler.
//
// A running backend with no live session is matched against the registry by
// workspace path and its cache is seeded synchronously, so the adopting
// snapshot survives even an immediate crash; a running backend with a live
// session refreshes its cached logs behind the quiet-period debounce; a
// stopped backend flushes the live session synchronously so the final log
// state is never lost to the debounce window.
func (m *Manager) Observe(snap models.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case snap.Running && m.liveID == "":
		id := m.resolveLocked(snap.ActiveWorkspace)
		if id == "" {
			return
		}
		m.liveID = id
		m.pending = snap.Logs
		m.flushLocked()

	case snap.Running:
		m.pending = snap.Logs
		m.scheduleWriteLocked()

	case m.liveID != "":
		if m.timer != nil {
			m.timer.Stop()
			m.timer = nil
		}
		m.pending = snap.Logs
		m.flushLocked()
		m.liveID = ""
	}
}

// Flush forces an immediate write of any pending live-session logs. Called on
// shutdown so the debounce window cannot swallow the last update.
func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.liveID != "" && m.pending != nil {
		m.flushLocked()
	}
}

// resolveLocked finds the session whose workspace corresponds to the
// backend's active workspace path. An exact normalized match wins; failing
// that, a session matches when the active path ends with its group-qualified
// relative path. Paths from the backend may use a different root or separator
// convention than what the session recorded.
func (m *Manager) resolveLocked(active string) string {
	active = models.NormalizePath(active)
	if active == "" {
		return ""
	}

	for _, sess := range m.store.List() {
		if models.NormalizePath(sess.Workspace) == active {
			return sess.ID
		}
		if strings.HasSuffix(active, "/"+sess.RelPath()) {
			return sess.ID
		}
	}
	return ""
}

func (m *Manager) scheduleWriteLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.quiet, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.timer = nil
		if m.liveID != "" {
			m.flushLocked()
		}
	})
}

func (m *Manager) flushLocked() {
	if err := m.store.UpdateLogs(m.liveID, m.pending); err != nil {
		log.Printf("Warning: failed to persist session logs: %v", err)
	}
	m.pending = nil
}
