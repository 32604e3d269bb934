package classify

import "regexp"

// Marker texts emitted by the agent system. These are part of the wire
// contract: classification matches on exact substrings, so they must stay
// bit-identical to what the backend logs.
const (
	markerSystemStart   = "Starting Agent System"
	markerGoal          = "Goal:"
	markerResearchStart = "Starting Deep Research"
	markerResearchExec  = "Executing Deep Research"
	markerResearchSaved = "Research findings saved"
	markerResearchDone  = "Deep Research Complete"
	markerResearchFail  = "Deep Research failed"
	markerFinalReport   = "Final Report"
	markerPlanStart     = "Generating Plan"
	markerPlanReview    = "PLAN REVIEW"
	markerPlanDone      = "Plan Generated"
	markerAgentSelected = "Selected Agent:"
	markerAgentSelect2  = "Agent Selection"
	markerStepDone      = "Step completed successfully"
	markerSuccessGlyph  = "✅"
	markerMissionDone   = "Mission Complete"
	markerReportSaved   = "Final report saved to"
)

// stepExecPattern extracts the numeric identifier from execution-start
// markers of the form "Executing Step {n}:{text}".
var stepExecPattern = regexp.MustCompile(`Executing Step (\d+):`)

// Group keys for phase steps. Execution steps use their numeric identifier.
const (
	groupResearch = "research"
	groupPlanning = "planning"
)
