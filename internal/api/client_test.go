package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"is_running": true,
			"waiting_for_input": false,
			"logs": [
				{"timestamp": 1.0, "message": "🚀 Starting Agent System", "type": "log"},
				{"timestamp": 2.0, "message": "❌ boom", "type": "error"},
				{"timestamp": 3.0, "message": "???", "type": "somekind_from_the_future"}
			]
		}`))
	}))
	defer srv.Close()

	snap, err := NewClient(srv.URL).Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !snap.Running || snap.WaitingForInput {
		t.Errorf("snapshot state = running:%v waiting:%v, want running only", snap.Running, snap.WaitingForInput)
	}
	if len(snap.Logs) != 3 {
		t.Fatalf("got %d logs, want 3", len(snap.Logs))
	}
	if snap.Logs[1].Kind != models.KindError {
		t.Errorf("second entry kind = %q, want error", snap.Logs[1].Kind)
	}
	// The client itself must degrade unknown wire kinds; downstream compares
	// against the known constants only.
	if snap.Logs[2].Kind != models.KindLog {
		t.Errorf("unknown kind = %q, want degraded to %q", snap.Logs[2].Kind, models.KindLog)
	}
}

func TestSnapshotMergesActiveWorkspace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			_, _ = w.Write([]byte(`{"is_running": true, "waiting_for_input": false, "logs": []}`))
		case "/api/workspace":
			_, _ = w.Write([]byte(`{
				"workspace_root": "/srv/agent/workspaces",
				"target_root": "/srv/agent/workspaces",
				"active_workspace_root": "/srv/agent/workspaces/groupA/abc123",
				"file_count": 4,
				"total_size": 2048
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	snap, err := NewClient(srv.URL).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ActiveWorkspace != "/srv/agent/workspaces/groupA/abc123" {
		t.Errorf("active workspace = %q", snap.ActiveWorkspace)
	}
}

func TestSnapshotToleratesWorkspaceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			_, _ = w.Write([]byte(`{"is_running": false, "waiting_for_input": false, "logs": []}`))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	snap, err := NewClient(srv.URL).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot should survive a workspace failure: %v", err)
	}
	if snap.ActiveWorkspace != "" {
		t.Errorf("active workspace = %q, want empty", snap.ActiveWorkspace)
	}
}

func TestRunSendsBody(t *testing.T) {
	var got RunRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/run" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"status": "started"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Run(context.Background(), RunRequest{
		Goal:          "summarize the data",
		WorkspaceRoot: "/srv/agent/workspaces/abc",
		Config:        map[string]bool{"enable_hitl": false},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Goal != "summarize the data" || got.WorkspaceRoot != "/srv/agent/workspaces/abc" {
		t.Errorf("backend saw %+v", got)
	}
	if v, ok := got.Config["enable_hitl"]; !ok || v {
		t.Errorf("config override missing: %+v", got.Config)
	}
}

func TestErrorBodyBecomesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with an error envelope, the backend's usual failure shape.
		_, _ = w.Write([]byte(`{"status": "error", "message": "Agent is already running"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Run(context.Background(), RunRequest{Goal: "g"})
	if err == nil {
		t.Fatal("expected error from error envelope")
	}
}

func TestWorkspaceQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/create-workspace":
			if got := r.URL.Query().Get("group"); got != "experiments" {
				t.Errorf("group param = %q", got)
			}
			_, _ = w.Write([]byte(`{"status": "created", "workspace": "ab12cd34ef56", "group": "experiments"}`))
		case "/api/delete-workspace":
			if r.Method != http.MethodDelete {
				t.Errorf("delete-workspace method = %s", r.Method)
			}
			q := r.URL.Query()
			if q.Get("workspace") != "ab12cd34ef56" || q.Get("group") != "experiments" {
				t.Errorf("params = %v", q)
			}
			_, _ = w.Write([]byte(`{"status": "success"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	name, err := c.CreateWorkspace(context.Background(), "experiments")
	if err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}
	if name != "ab12cd34ef56" {
		t.Errorf("workspace name = %q", name)
	}
	if err := c.DeleteWorkspace(context.Background(), name, "experiments"); err != nil {
		t.Fatalf("DeleteWorkspace: %v", err)
	}
}

func TestHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Status(context.Background()); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"config": {
			"enable_search_tool": true,
			"enable_hitl": false,
			"enable_simple_task_check": true,
			"enable_deep_research": false,
			"deep_research_use_simple_goal": true
		}}`))
	}))
	defer srv.Close()

	flags, err := NewClient(srv.URL).Config(context.Background())
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if flags.EnableHITL || !flags.EnableSearchTool || flags.EnableDeepResearch {
		t.Errorf("flags = %+v", flags)
	}
}
