package mockapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agentdeck-io/agentdeck/internal/api"
	"github.com/agentdeck-io/agentdeck/internal/models"
)

func newTestBackend(t *testing.T) (*Server, *api.Client) {
	t.Helper()
	s := NewServer("/srv/agent/workspaces", 0)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, api.NewClient(srv.URL)
}

func waitForIdle(t *testing.T, client *api.Client) models.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := client.Status(context.Background())
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if !snap.Running {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("run never finished")
	return models.Snapshot{}
}

func TestScriptedRunEmitsMarkers(t *testing.T) {
	_, client := newTestBackend(t)

	err := client.Run(context.Background(), api.RunRequest{
		Goal:   "produce a report",
		Config: map[string]bool{"enable_hitl": false},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := waitForIdle(t, client)

	all := make([]string, len(snap.Logs))
	for i, e := range snap.Logs {
		all[i] = e.Message
	}
	joined := strings.Join(all, "\n")

	for _, marker := range []string{
		"Starting Agent System",
		"Goal: produce a report",
		"Starting Deep Research",
		"Deep Research Complete",
		"Generating Plan",
		"PLAN REVIEW",
		"Executing Step 1:",
		"Selected Agent:",
		"Step completed successfully",
		"Mission Complete",
		"Final report saved to",
	} {
		if !strings.Contains(joined, marker) {
			t.Errorf("run log missing marker %q", marker)
		}
	}
}

func TestRunRejectedWhileRunning(t *testing.T) {
	_, client := newTestBackend(t)
	ctx := context.Background()

	// HITL gate keeps the first run alive until input arrives.
	if err := client.Run(ctx, api.RunRequest{Goal: "first"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	waitForInput(t, client)

	if err := client.Run(ctx, api.RunRequest{Goal: "second"}); err == nil {
		t.Error("second run should be rejected while the first is active")
	}

	if err := client.ProvideInput(ctx, "yes"); err != nil {
		t.Fatalf("ProvideInput: %v", err)
	}
	waitForIdle(t, client)
}

func waitForInput(t *testing.T, client *api.Client) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := client.Status(context.Background())
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if snap.WaitingForInput {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("backend never asked for input")
}

func TestHITLRejectionAbortsRun(t *testing.T) {
	_, client := newTestBackend(t)
	ctx := context.Background()

	if err := client.Run(ctx, api.RunRequest{Goal: "g"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	waitForInput(t, client)

	if err := client.ProvideInput(ctx, "no"); err != nil {
		t.Fatalf("ProvideInput: %v", err)
	}
	snap := waitForIdle(t, client)

	var sawAbort, sawMissionDone bool
	for _, e := range snap.Logs {
		if strings.Contains(e.Message, "Plan rejected") {
			sawAbort = true
		}
		if strings.Contains(e.Message, "Mission Complete") {
			sawMissionDone = true
		}
	}
	if !sawAbort {
		t.Error("rejected plan should log an abort")
	}
	if sawMissionDone {
		t.Error("rejected run must not reach mission completion")
	}
}

func TestCancelInput(t *testing.T) {
	_, client := newTestBackend(t)
	ctx := context.Background()

	if err := client.Run(ctx, api.RunRequest{Goal: "g"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	waitForInput(t, client)

	if err := client.CancelInput(ctx); err != nil {
		t.Fatalf("CancelInput: %v", err)
	}
	snap := waitForIdle(t, client)

	var sawControl bool
	for _, e := range snap.Logs {
		if e.Kind == models.KindControl && strings.Contains(e.Message, "cancelled input") {
			sawControl = true
		}
	}
	if !sawControl {
		t.Error("cancel should leave a control log entry")
	}

	// Cancelling again with nothing pending is an error envelope.
	if err := client.CancelInput(ctx); err == nil {
		t.Error("cancel without pending input should fail")
	}
}

func TestWorkspaceLifecycle(t *testing.T) {
	s, client := newTestBackend(t)
	ctx := context.Background()

	name, err := client.CreateWorkspace(ctx, "experiments")
	if err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}
	if len(name) != 12 {
		t.Errorf("workspace name = %q, want 12-char hash", name)
	}
	if got := s.WorkspacePath(name); got != "/srv/agent/workspaces/experiments/"+name {
		t.Errorf("workspace path = %q", got)
	}

	info, err := client.Workspace(ctx, "")
	if err != nil {
		t.Fatalf("Workspace: %v", err)
	}
	if info.WorkspaceRoot != "/srv/agent/workspaces" {
		t.Errorf("workspace root = %q", info.WorkspaceRoot)
	}
	if info.FileCount != 1 {
		t.Errorf("file count = %d, want 1", info.FileCount)
	}

	if err := client.DeleteWorkspace(ctx, name, "experiments"); err != nil {
		t.Fatalf("DeleteWorkspace: %v", err)
	}
	if err := client.DeleteWorkspace(ctx, name, "experiments"); err == nil {
		t.Error("deleting a missing workspace should fail")
	}
}

func TestActiveWorkspaceExposedDuringRun(t *testing.T) {
	_, client := newTestBackend(t)
	ctx := context.Background()

	err := client.Run(ctx, api.RunRequest{
		Goal:          "g",
		WorkspaceRoot: "/srv/agent/workspaces/experiments/abc123",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	waitForInput(t, client)

	snap, err := client.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ActiveWorkspace != "/srv/agent/workspaces/experiments/abc123" {
		t.Errorf("active workspace = %q", snap.ActiveWorkspace)
	}

	if err := client.CancelInput(ctx); err != nil {
		t.Fatalf("CancelInput: %v", err)
	}
	waitForIdle(t, client)

	snap, err = client.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ActiveWorkspace != "" {
		t.Errorf("active workspace after run = %q, want empty", snap.ActiveWorkspace)
	}
}
