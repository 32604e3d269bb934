package classify

import (
	"testing"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

func entries(msgs ...string) []models.LogEntry {
	logs := make([]models.LogEntry, len(msgs))
	for i, m := range msgs {
		logs[i] = models.LogEntry{Timestamp: float64(i), Message: m, Kind: models.KindLog}
	}
	return logs
}

func TestClassifyGrouping(t *testing.T) {
	logs := entries(
		"Starting Agent System",
		"Executing Step 1:Load data",
		"Selected Agent: CodeAgent",
		"Step completed successfully",
	)

	tree := Classify(logs, nil, nil, Options{HITL: false})

	if len(tree) != 2 {
		t.Fatalf("expected 2 top-level messages, got %d", len(tree))
	}
	if tree[0].Role != models.RoleSystem {
		t.Errorf("first message role = %s, want system", tree[0].Role)
	}

	step := tree[1]
	if step.Role != models.RoleStep {
		t.Fatalf("second message role = %s, want step", step.Role)
	}
	if step.GroupKey != "1" {
		t.Errorf("step group key = %q, want %q", step.GroupKey, "1")
	}
	if len(step.Children) != 1 {
		t.Fatalf("step has %d children, want 1", len(step.Children))
	}
	if step.Children[0].Role != models.RoleSubstep {
		t.Errorf("child role = %s, want substep", step.Children[0].Role)
	}
	if step.Status != models.StatusSuccess {
		t.Errorf("step status = %s, want success", step.Status)
	}
	if !step.Collapsed {
		t.Error("step should auto-collapse on success with HITL disabled")
	}
}

func TestClassifyIdempotent(t *testing.T) {
	logs := entries(
		"Starting Agent System",
		"Goal: build a report",
		"Starting Deep Research Phase...",
		"Executing Deep Research...",
		"Deep Research Complete",
		"Generating Plan...",
		"PLAN REVIEW\n✅ Plan Generated with 2 steps",
		"Executing Step 1:Load data",
		"Selected Agent: CodeAgent",
		"Step completed successfully",
		"Mission Complete!",
	)
	prefs := map[string]bool{"1": false}

	a := Classify(logs, nil, prefs, Options{})
	b := Classify(logs, nil, prefs, Options{})

	assertForestEqual(t, a, b)
}

func assertForestEqual(t *testing.T, a, b []*models.StructuredMessage) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("forest lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Role != y.Role || x.Content != y.Content ||
			x.Status != y.Status || x.Collapsed != y.Collapsed || x.GroupKey != y.GroupKey {
			t.Errorf("node %d differs: %+v vs %+v", i, x, y)
		}
		assertForestEqual(t, x.Children, y.Children)
	}
}

func TestPlanReviewPrecedence(t *testing.T) {
	// The review line contains the plain plan-generated marker as a
	// substring; it must be handled by the review rule, not the plain one.
	logs := entries(
		"Generating Plan...",
		"PLAN REVIEW\n============\n✅ Plan Generated with 3 steps:\n  Step 1: ...",
	)

	for _, tt := range []struct {
		name          string
		hitl          bool
		wantCollapsed bool
	}{
		{"hitl disabled collapses", false, true},
		{"hitl enabled stays expanded", true, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			tree := Classify(logs, nil, nil, Options{HITL: tt.hitl})
			if len(tree) != 1 {
				t.Fatalf("expected 1 top-level message, got %d", len(tree))
			}
			plan := tree[0]
			if plan.Role != models.RoleStep || plan.GroupKey != "planning" {
				t.Fatalf("expected a planning step, got role=%s group=%q", plan.Role, plan.GroupKey)
			}
			if len(plan.Children) != 1 {
				t.Fatalf("review line should attach as a substep, got %d children", len(plan.Children))
			}
			if plan.Status != models.StatusSuccess {
				t.Errorf("plan status = %s, want success", plan.Status)
			}
			if plan.Collapsed != tt.wantCollapsed {
				t.Errorf("plan collapsed = %v, want %v", plan.Collapsed, tt.wantCollapsed)
			}
		})
	}
}

func TestPlanReviewAfterPointerCleared(t *testing.T) {
	// An execution step opens between plan generation and the review line;
	// the review must still find the planning step by scanning top level.
	logs := entries(
		"Generating Plan...",
		"Executing Step 1:Prepare",
		"PLAN REVIEW\n✅ Plan Generated with 1 steps",
	)

	tree := Classify(logs, nil, nil, Options{})
	if len(tree) != 2 {
		t.Fatalf("expected 2 top-level messages, got %d", len(tree))
	}
	plan := tree[0]
	if plan.GroupKey != "planning" || len(plan.Children) != 1 {
		t.Fatalf("review did not attach to the planning step: %+v", plan)
	}
	if tree[1].GroupKey != "1" {
		t.Errorf("execution step group key = %q, want %q", tree[1].GroupKey, "1")
	}
}

func TestPlanReviewWithoutPlanningStep(t *testing.T) {
	tree := Classify(entries("PLAN REVIEW\n✅ Plan Generated with 1 steps"), nil, nil, Options{})
	if len(tree) != 1 {
		t.Fatalf("expected 1 message, got %d", len(tree))
	}
	if tree[0].Role != models.RoleAgent {
		t.Errorf("orphan review role = %s, want agent", tree[0].Role)
	}
}

func TestOrphanAgentSelection(t *testing.T) {
	tests := []struct {
		name string
		logs []models.LogEntry
	}{
		{
			name: "no step open",
			logs: entries("Selected Agent: CodeAgent"),
		},
		{
			name: "unrelated step open",
			logs: entries("Starting Deep Research Phase...", "Selected Agent: CodeAgent"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := Classify(tt.logs, nil, nil, Options{})
			for _, m := range tree {
				if m.Role == models.RoleAgent && m.Content == "Selected Agent: CodeAgent" {
					t.Error("orphan selection marker should be dropped, not emitted standalone")
				}
				for _, c := range m.Children {
					if c.Content == "Selected Agent: CodeAgent" {
						t.Errorf("selection marker attached to unrelated step %q", m.Content)
					}
				}
			}
		})
	}
}

func TestResearchLifecycle(t *testing.T) {
	logs := entries(
		"Starting Deep Research Phase...",
		"Executing Deep Research...",
		"Deep Research Complete",
	)

	tree := Classify(logs, nil, nil, Options{})
	if len(tree) != 1 {
		t.Fatalf("expected 1 top-level message, got %d", len(tree))
	}
	step := tree[0]
	if step.GroupKey != "research" {
		t.Errorf("group key = %q, want research", step.GroupKey)
	}
	if len(step.Children) != 1 {
		t.Errorf("research step has %d children, want 1", len(step.Children))
	}
	if step.Status != models.StatusSuccess || !step.Collapsed {
		t.Errorf("research step should close collapsed with success, got status=%s collapsed=%v",
			step.Status, step.Collapsed)
	}
}

func TestResearchFailure(t *testing.T) {
	logs := []models.LogEntry{
		{Timestamp: 0, Message: "Starting Deep Research Phase...", Kind: models.KindResearch},
		{Timestamp: 1, Message: "Deep Research failed: timeout", Kind: models.KindWarning},
	}

	tree := Classify(logs, nil, nil, Options{})
	if len(tree) != 1 {
		t.Fatalf("expected 1 top-level message, got %d", len(tree))
	}
	step := tree[0]
	if step.Status != models.StatusError {
		t.Errorf("failed research step status = %s, want error", step.Status)
	}
	if step.Collapsed {
		t.Error("failed research step should stay expanded")
	}
}

func TestErrorEntries(t *testing.T) {
	t.Run("attaches to open step", func(t *testing.T) {
		logs := []models.LogEntry{
			{Timestamp: 0, Message: "Executing Step 2:Train model", Kind: models.KindExecution},
			{Timestamp: 1, Message: "❌ Step Failed: out of memory", Kind: models.KindError},
		}
		tree := Classify(logs, nil, nil, Options{})
		if len(tree) != 1 {
			t.Fatalf("expected 1 top-level message, got %d", len(tree))
		}
		step := tree[0]
		if step.Status != models.StatusError {
			t.Errorf("step status = %s, want error", step.Status)
		}
		if len(step.Children) != 1 || step.Children[0].Status != models.StatusError {
			t.Errorf("error entry should attach as an error-flagged substep: %+v", step.Children)
		}
	})

	t.Run("standalone without open step", func(t *testing.T) {
		logs := []models.LogEntry{
			{Timestamp: 0, Message: "❌ System Error: boom", Kind: models.KindError},
		}
		tree := Classify(logs, nil, nil, Options{})
		if len(tree) != 1 || tree[0].Role != models.RoleAgent || tree[0].Status != models.StatusError {
			t.Fatalf("expected standalone error message, got %+v", tree)
		}
	})
}

func TestInputRequest(t *testing.T) {
	logs := []models.LogEntry{
		{Timestamp: 0, Message: "Approve plan? (yes/no)", Kind: models.KindInputRequest},
	}
	tree := Classify(logs, nil, nil, Options{})
	if len(tree) != 1 {
		t.Fatalf("expected 1 message, got %d", len(tree))
	}
	if tree[0].Role != models.RoleAgent || tree[0].Status != models.StatusWarning {
		t.Errorf("input request should be a warning-flagged agent message, got role=%s status=%s",
			tree[0].Role, tree[0].Status)
	}
}

func TestTerminalMarkers(t *testing.T) {
	logs := entries(
		"🏁 Mission Complete!",
		"Final report saved to workspace/report.md",
	)
	tree := Classify(logs, nil, nil, Options{})
	if len(tree) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(tree))
	}
	for i, m := range tree {
		if m.Role != models.RoleSystem || m.Status != models.StatusSuccess {
			t.Errorf("message %d: role=%s status=%s, want system/success", i, m.Role, m.Status)
		}
	}
}

func TestCollapsePreferenceWins(t *testing.T) {
	logs := entries(
		"Executing Step 1:Load data",
		"Step completed successfully",
	)

	// Auto-collapse would set collapsed=true; the durable preference keyed
	// by group key overrides it.
	tree := Classify(logs, nil, map[string]bool{"1": false}, Options{})
	if tree[0].Collapsed {
		t.Error("durable preference should keep the step expanded")
	}
}

func TestPriorTreePreservesCollapse(t *testing.T) {
	logs := entries(
		"Executing Step 1:Load data",
		"Step completed successfully",
	)

	prior := Classify(logs, nil, nil, Options{})
	if !prior[0].Collapsed {
		t.Fatal("precondition: step should auto-collapse")
	}

	// User expanded the step in the UI; no durable preference recorded.
	prior[0].Collapsed = false

	tree := Classify(logs, prior, nil, Options{})
	if tree[0].Collapsed {
		t.Error("collapse state from the prior tree should carry over")
	}
}

func TestFallbackInsideOpenStep(t *testing.T) {
	logs := entries(
		"Executing Step 1:Load data",
		"   Description: reads the CSV",
	)
	tree := Classify(logs, nil, nil, Options{})
	if len(tree) != 1 {
		t.Fatalf("expected 1 top-level message, got %d", len(tree))
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Role != models.RoleSubstep {
		t.Errorf("fallback entry should attach as untyped substep: %+v", tree[0].Children)
	}
}

func TestMalformedTextNeverFails(t *testing.T) {
	logs := entries(
		"",
		"Executing Step :no number",
		"PLAN REVIEW",
		"✅",
		"random noise ✓ ▶️",
	)
	tree := Classify(logs, nil, nil, Options{})
	if len(tree) == 0 {
		t.Fatal("classification of malformed text should still produce output")
	}
}
