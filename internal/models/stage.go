package models

// StageStatus is the derived status of one progress stage.
type StageStatus string

// Stage statuses. A stage only ever advances pending → active → completed
// or error; the whole list is recomputed from the snapshot every tick.
const (
	StagePending   StageStatus = "pending"
	StageActive    StageStatus = "active"
	StageCompleted StageStatus = "completed"
	StageError     StageStatus = "error"
)

// ProgressStage is one entry of the fixed progress indicator.
type ProgressStage struct {
	ID     string
	Label  string
	Status StageStatus
}
