package session

import (
	"path/filepath"
	"testing"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "sessions.yaml"), filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestStoreCreateAndReload(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("alpha", "ws-alpha", "experiments")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("created session has empty ID")
	}
	if _, err := store.Create("beta", "ws-beta", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A fresh store over the same file sees both records.
	reopened, err := NewFileStore(store.path, store.logsDir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	sessions := reopened.List()
	if len(sessions) != 2 {
		t.Fatalf("reloaded %d sessions, want 2", len(sessions))
	}
	if sessions[0].Name != "alpha" || sessions[0].Group != "experiments" {
		t.Errorf("first session = %+v, want alpha/experiments", sessions[0])
	}
}

func TestStoreEnsureDefaultOnce(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.EnsureDefault("ws-default")
	if err != nil {
		t.Fatalf("EnsureDefault: %v", err)
	}
	if sess == nil || sess.Name != DefaultSessionName {
		t.Fatalf("expected a default session, got %+v", sess)
	}

	// Delete it, then ensure again: the flag keeps it from coming back.
	if err := store.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	again, err := store.EnsureDefault("ws-default")
	if err != nil {
		t.Fatalf("EnsureDefault: %v", err)
	}
	if again != nil {
		t.Errorf("default session recreated after deletion: %+v", again)
	}
	if len(store.List()) != 0 {
		t.Errorf("expected empty registry, got %d sessions", len(store.List()))
	}
}

func TestStoreCollapsePreferences(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("alpha", "ws", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.SetCollapse(sess.ID, "1", false); err != nil {
		t.Fatalf("SetCollapse: %v", err)
	}
	if err := store.SetCollapse(sess.ID, "research", true); err != nil {
		t.Fatalf("SetCollapse: %v", err)
	}

	reopened, err := NewFileStore(store.path, store.logsDir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.Get(sess.ID)
	if !ok {
		t.Fatal("session missing after reload")
	}
	if v, ok := got.Collapse["1"]; !ok || v {
		t.Errorf("collapse[1] = %v/%v, want false", v, ok)
	}
	if v := got.Collapse["research"]; !v {
		t.Error("collapse[research] should persist as true")
	}

	if err := store.SetCollapse("nope", "1", true); err == nil {
		t.Error("SetCollapse on unknown session should fail")
	}
}

func TestStoreLogRoundtrip(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("alpha", "ws", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Missing cache reads as empty.
	logs, err := store.LoadLogs(sess.ID)
	if err != nil {
		t.Fatalf("LoadLogs on empty cache: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected empty cache, got %d entries", len(logs))
	}

	want := []models.LogEntry{
		{Timestamp: 1.5, Message: "🚀 Starting Agent System", Kind: models.KindLog},
		{Timestamp: 2.5, Message: "❌ boom", Kind: models.KindError},
	}
	if err := store.UpdateLogs(sess.ID, want); err != nil {
		t.Fatalf("UpdateLogs: %v", err)
	}

	logs, err = store.LoadLogs(sess.ID)
	if err != nil {
		t.Fatalf("LoadLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(logs))
	}
	if logs[1].Kind != models.KindError || logs[1].Message != "❌ boom" {
		t.Errorf("second entry = %+v, want the error entry back", logs[1])
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("alpha", "ws", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.UpdateLogs(sess.ID, []models.LogEntry{{Message: "x"}}); err != nil {
		t.Fatalf("UpdateLogs: %v", err)
	}

	if err := store.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.Get(sess.ID); ok {
		t.Error("deleted session still present")
	}
	logs, err := store.LoadLogs(sess.ID)
	if err != nil {
		t.Fatalf("LoadLogs after delete: %v", err)
	}
	if len(logs) != 0 {
		t.Error("cached log should be gone after delete")
	}

	if err := store.Delete(sess.ID); err == nil {
		t.Error("deleting a missing session should fail")
	}
}
