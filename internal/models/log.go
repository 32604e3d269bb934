package models

// LogKind classifies a raw log entry as reported by the backend.
type LogKind string

// Log kinds emitted by the agent backend. Anything else degrades to KindLog.
const (
	KindLog          LogKind = "log"
	KindInputRequest LogKind = "input_request"
	KindControl      LogKind = "control"
	KindError        LogKind = "error"
	KindSuccess      LogKind = "success"
	KindWarning      LogKind = "warning"
	KindResearch     LogKind = "research"
	KindExecution    LogKind = "execution"
)

// ParseLogKind maps a wire string onto a known kind, falling back to KindLog.
func ParseLogKind(s string) LogKind {
	switch LogKind(s) {
	case KindInputRequest, KindControl, KindError, KindSuccess,
		KindWarning, KindResearch, KindExecution:
		return LogKind(s)
	default:
		return KindLog
	}
}

// LogEntry is a single timestamped line from the agent's run log.
// Entries are immutable once emitted; array order is the causal order.
type LogEntry struct {
	Timestamp float64 `json:"timestamp" yaml:"timestamp"`
	Message   string  `json:"message" yaml:"message"`
	Kind      LogKind `json:"type" yaml:"type"`
}

// Snapshot is the complete state of the active run as of one poll.
// Logs is a full replacement, not a delta.
type Snapshot struct {
	Running         bool
	WaitingForInput bool
	Logs            []LogEntry
	ActiveWorkspace string
}
