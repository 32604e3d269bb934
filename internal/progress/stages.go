// Package progress derives the run's discrete progress indicator from the
// log snapshot. Statuses are recomputed wholesale every tick by scanning for
// marker last-occurrence indices; there is no transition state to get out of
// sync after a reconnect.
package progress

import (
	"strings"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

// stageSpec names the markers that drive one stage. A stage completes when
// the last finish marker appears at or after the last start marker; any fail
// marker forces error regardless of later successes.
type stageSpec struct {
	id     string
	label  string
	starts []string
	ends   []string
	fails  []string
}

var (
	initializeStage = stageSpec{
		id:     "init",
		label:  "Initialize",
		starts: []string{"Starting Agent System"},
		ends:   []string{"Goal:"},
	}
	researchStage = stageSpec{
		id:     "research",
		label:  "Research",
		starts: []string{"Starting Deep Research"},
		ends:   []string{"Deep Research Complete"},
		fails:  []string{"Deep Research failed"},
	}
	planStage = stageSpec{
		id:     "plan",
		label:  "Plan",
		starts: []string{"Generating Plan"},
		ends:   []string{"Plan Generated"},
	}
	executeStage = stageSpec{
		id:     "execute",
		label:  "Execute",
		starts: []string{"Executing Step"},
		ends:   []string{"Step completed successfully", "Step Completed"},
		fails:  []string{"Step Failed"},
	}
	completeStage = stageSpec{
		id:     "complete",
		label:  "Complete",
		starts: []string{"Mission Complete"},
		ends:   []string{"Mission Complete"},
	}
)

// missionDoneMarker forces global completion handling.
const missionDoneMarker = "Mission Complete"

// DeriveStages computes the full stage list from a snapshot. The research
// stage only exists when deep research is enabled by configuration.
func DeriveStages(logs []models.LogEntry, researchEnabled bool) []models.ProgressStage {
	specs := []stageSpec{initializeStage}
	if researchEnabled {
		specs = append(specs, researchStage)
	}
	specs = append(specs, planStage, executeStage, completeStage)

	done := lastIndex(logs, missionDoneMarker) >= 0

	stages := make([]models.ProgressStage, len(specs))
	for i, spec := range specs {
		stages[i] = models.ProgressStage{
			ID:     spec.id,
			Label:  spec.label,
			Status: deriveStatus(logs, spec),
		}
	}

	// Mission completion forces the tail of the bar: a still-pending execute
	// stage (e.g. a simple task that skipped planning) reads as completed,
	// and the terminal stage always does.
	if done {
		for i := range stages {
			switch stages[i].ID {
			case "execute":
				if stages[i].Status == models.StagePending {
					stages[i].Status = models.StageCompleted
				}
			case "complete":
				stages[i].Status = models.StageCompleted
			}
		}
	}

	return stages
}

func deriveStatus(logs []models.LogEntry, spec stageSpec) models.StageStatus {
	if lastIndexAny(logs, spec.fails) >= 0 {
		return models.StageError
	}

	start := lastIndexAny(logs, spec.starts)
	if start < 0 {
		return models.StagePending
	}
	if end := lastIndexAny(logs, spec.ends); end >= start {
		return models.StageCompleted
	}
	return models.StageActive
}

// lastIndexAny returns the highest snapshot index at which any of the given
// markers occurs, or -1.
func lastIndexAny(logs []models.LogEntry, markers []string) int {
	best := -1
	for _, m := range markers {
		if i := lastIndex(logs, m); i > best {
			best = i
		}
	}
	return best
}

func lastIndex(logs []models.LogEntry, marker string) int {
	for i := len(logs) - 1; i >= 0; i-- {
		if strings.Contains(logs[i].Message, marker) {
			return i
		}
	}
	return -1
}
