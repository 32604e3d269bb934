package session

import (
	"sync"
	"testing"
	"time"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

// fakeStore records UpdateLogs calls.
type fakeStore struct {
	mu       sync.Mutex
	sessions []*models.Session
	writes   []string
	lastLogs []models.LogEntry
}

func (f *fakeStore) List() []*models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Session(nil), f.sessions...)
}

func (f *fakeStore) Get(id string) (*models.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

func (f *fakeStore) UpdateLogs(id string, logs []models.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, id)
	f.lastLogs = logs
	return nil
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func newTestManager(quiet time.Duration, sessions ...*models.Session) (*Manager, *fakeStore) {
	store := &fakeStore{sessions: sessions}
	m := NewManager(store)
	m.quiet = quiet
	return m, store
}

func snapshot(running bool, ws string, msgs ...string) models.Snapshot {
	logs := make([]models.LogEntry, len(msgs))
	for i, msg := range msgs {
		logs[i] = models.LogEntry{Timestamp: float64(i), Message: msg, Kind: models.KindLog}
	}
	return models.Snapshot{Running: running, Logs: logs, ActiveWorkspace: ws}
}

func TestReconcileMatching(t *testing.T) {
	sessions := []*models.Session{
		models.NewSession("s1", "one", "ws1", ""),
		models.NewSession("s2", "two", "ws2", "groupA"),
		models.NewSession("s3", "three", "/data/agents/ws3", ""),
	}

	tests := []struct {
		name   string
		active string
		want   string
	}{
		{"exact normalized match", "/data/agents/ws3", "s3"},
		{"exact match with trailing slash", "/data/agents/ws3/", "s3"},
		{"exact match with backslashes", `\data\agents\ws3`, "s3"},
		{"suffix match bare workspace", "/data/agents/ws1", "s1"},
		{"suffix match group qualified", "/data/agents/groupA/ws2", "s2"},
		{"group path required in full", "/data/agents/groupB/ws2", ""},
		{"partial component does not match", "/data/agents/xws1", ""},
		{"empty active workspace", "", ""},
		{"no such workspace", "/data/agents/other", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(time.Hour, sessions...)
			m.Observe(snapshot(true, tt.active, "Starting Agent System"))
			if got := m.Live(); got != tt.want {
				t.Errorf("live session = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdoptionSeedsCacheImmediately(t *testing.T) {
	m, store := newTestManager(time.Hour, models.NewSession("s1", "one", "ws1", ""))

	m.Observe(snapshot(true, "/root/ws1", "a", "b"))

	// The adopting snapshot must not sit behind the (here: huge) quiet period.
	if n := store.writeCount(); n != 1 {
		t.Fatalf("wrote %d times on adoption, want 1", n)
	}
	if store.writes[0] != "s1" {
		t.Errorf("seeded session %q, want s1", store.writes[0])
	}
	if len(store.lastLogs) != 2 {
		t.Errorf("seeded %d log entries, want 2", len(store.lastLogs))
	}
}

func TestDebounceCoalescesWrites(t *testing.T) {
	m, store := newTestManager(30*time.Millisecond, models.NewSession("s1", "one", "ws1", ""))

	// Three ticks in quick succession while the run is active. The first
	// seeds the cache on adoption; the rest ride the debounce.
	m.Observe(snapshot(true, "/root/ws1", "a"))
	m.Observe(snapshot(true, "/root/ws1", "a", "b"))
	m.Observe(snapshot(true, "/root/ws1", "a", "b", "c"))

	if n := store.writeCount(); n != 1 {
		t.Fatalf("wrote %d times inside the quiet period, want only the adoption seed", n)
	}

	time.Sleep(100 * time.Millisecond)

	if n := store.writeCount(); n != 2 {
		t.Fatalf("wrote %d times after quiet period, want exactly 2", n)
	}
	if len(store.lastLogs) != 3 {
		t.Errorf("persisted %d log entries, want the latest snapshot of 3", len(store.lastLogs))
	}
}

func TestFlushOnRunEnd(t *testing.T) {
	m, store := newTestManager(time.Hour, models.NewSession("s1", "one", "ws1", ""))

	m.Observe(snapshot(true, "/root/ws1", "a"))
	m.Observe(snapshot(false, "", "a", "Mission Complete!"))

	// Run end must write synchronously, not wait out the (here: huge) quiet
	// period. One write for the adoption seed, one for the final state.
	if n := store.writeCount(); n != 2 {
		t.Fatalf("wrote %d times through run end, want 2", n)
	}
	if len(store.lastLogs) != 2 {
		t.Errorf("persisted %d log entries, want final snapshot of 2", len(store.lastLogs))
	}
	if m.Live() != "" {
		t.Error("live session should clear when the run ends")
	}
}

func TestIdleBackendIsNoop(t *testing.T) {
	m, store := newTestManager(time.Millisecond, models.NewSession("s1", "one", "ws1", ""))

	m.Observe(snapshot(false, ""))
	m.Observe(snapshot(false, ""))
	time.Sleep(20 * time.Millisecond)

	if n := store.writeCount(); n != 0 {
		t.Errorf("idle backend caused %d writes, want 0", n)
	}
	if m.Live() != "" {
		t.Errorf("idle backend set live session %q", m.Live())
	}
}

func TestUnmatchedRunNotAdopted(t *testing.T) {
	m, store := newTestManager(time.Millisecond, models.NewSession("s1", "one", "ws1", ""))

	m.Observe(snapshot(true, "/somewhere/else", "a"))
	time.Sleep(20 * time.Millisecond)

	if m.Live() != "" {
		t.Errorf("unmatched run adopted session %q", m.Live())
	}
	if n := store.writeCount(); n != 0 {
		t.Errorf("unmatched run caused %d writes, want 0", n)
	}
}

func TestAdoptBypassesMatching(t *testing.T) {
	m, store := newTestManager(time.Hour, models.NewSession("s1", "one", "ws1", ""))

	// This console started the run itself; the workspace the backend reports
	// is irrelevant.
	m.Adopt("s1")
	m.Observe(snapshot(true, "/unrelated/path", "a"))
	m.Observe(snapshot(false, "", "a", "done"))

	if n := store.writeCount(); n != 1 {
		t.Fatalf("wrote %d times, want 1", n)
	}
	if store.writes[0] != "s1" {
		t.Errorf("wrote to session %q, want s1", store.writes[0])
	}
}

func TestExplicitFlush(t *testing.T) {
	m, store := newTestManager(time.Hour, models.NewSession("s1", "one", "ws1", ""))

	// Adopted run with pending logs stuck behind the huge quiet period.
	m.Adopt("s1")
	m.Observe(snapshot(true, "/root/ws1", "a"))
	m.Flush()

	if n := store.writeCount(); n != 1 {
		t.Fatalf("wrote %d times after explicit flush, want 1", n)
	}
	if len(store.lastLogs) != 1 {
		t.Errorf("persisted %d log entries, want 1", len(store.lastLogs))
	}
}
