package mockapi

import (
	"fmt"
	"time"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

// scriptStep is one planned step of the canned mission.
type scriptStep struct {
	title string
	agent string
}

var cannedPlan = []scriptStep{
	{"Collect input data", "CodeAgent"},
	{"Analyze findings", "AnalystAgent"},
	{"Write final report", "ReportAgent"},
}

// runScript plays a full agent run against the log buffer, emitting the same
// marker lines the real backend produces.
func (s *Server) runScript(goal string, flags models.FeatureFlags) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.waiting = false
		s.requestStop = false
		s.activeRoot = ""
		s.mu.Unlock()
	}()

	s.emit("🚀 Starting Agent System", models.KindLog)
	s.emit(fmt.Sprintf("🎯 Goal: %s", goal), models.KindLog)

	if flags.EnableDeepResearch {
		if !s.playResearch() {
			return
		}
	}

	if !s.playPlanning(flags) {
		return
	}

	for i, step := range cannedPlan {
		if s.stopped() {
			s.emit("🛑 Run stopped by user", models.KindControl)
			return
		}
		s.emit(fmt.Sprintf("▶️ Executing Step %d:%s", i+1, step.title), models.KindExecution)
		s.pause()
		s.emit(fmt.Sprintf("Selected Agent: %s", step.agent), models.KindLog)
		s.pause()
		s.emit("✅ Step completed successfully", models.KindSuccess)
	}

	s.emit("🏁 Mission Complete!", models.KindSuccess)
	s.emit("Final report saved to workspace/final_report.md", models.KindLog)
}

func (s *Server) playResearch() bool {
	s.emit("🔬 Starting Deep Research Phase...", models.KindResearch)
	s.pause()
	s.emit("Executing Deep Research...", models.KindResearch)
	s.pause()
	if s.stopped() {
		s.emit("⚠️ Deep Research failed: stopped by user", models.KindWarning)
		return false
	}
	s.emit("Research findings saved to research_findings.md", models.KindResearch)
	s.emit("✅ Deep Research Complete", models.KindSuccess)
	return true
}

func (s *Server) playPlanning(flags models.FeatureFlags) bool {
	s.emit("📋 Generating Plan...", models.KindLog)
	s.pause()

	review := fmt.Sprintf("PLAN REVIEW\n✅ Plan Generated with %d steps", len(cannedPlan))
	for i, step := range cannedPlan {
		review += fmt.Sprintf("\n  Step %d: %s (%s)", i+1, step.title, step.agent)
	}
	s.emit(review, models.KindLog)

	if !flags.EnableHITL {
		return true
	}

	// Human-in-the-loop gate: block the script until the console answers.
	s.mu.Lock()
	s.waiting = true
	s.appendLocked("Approve the plan? (yes/no)", models.KindInputRequest)
	s.mu.Unlock()

	answer := <-s.inputCh
	if answer == "CANCELLED_BY_USER" || answer == "no" {
		s.emit("❌ Plan rejected, aborting run", models.KindError)
		return false
	}
	s.emit("Plan approved, continuing", models.KindLog)
	return true
}

func (s *Server) emit(msg string, kind models.LogKind) {
	s.mu.Lock()
	s.appendLocked(msg, kind)
	s.mu.Unlock()
}

func (s *Server) pause() {
	time.Sleep(s.stepDelay)
}

func (s *Server) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestStop
}
