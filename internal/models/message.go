package models

// MessageRole identifies who (or what) a structured message belongs to.
type MessageRole string

// Message roles.
const (
	RoleSystem  MessageRole = "system"
	RoleUser    MessageRole = "user"
	RoleAgent   MessageRole = "agent"
	RoleStep    MessageRole = "step"
	RoleSubstep MessageRole = "substep"
)

// MessageStatus is the optional outcome attached to a structured message.
// The empty string means no status.
type MessageStatus string

// Message statuses.
const (
	StatusSuccess MessageStatus = "success"
	StatusError   MessageStatus = "error"
	StatusWarning MessageStatus = "warning"
	StatusInfo    MessageStatus = "info"
)

// StructuredMessage is one node of the classified message forest.
// Only steps carry children; GroupKey identifies the logical phase or
// execution step the node belongs to across tree rebuilds.
type StructuredMessage struct {
	ID        string
	Role      MessageRole
	Content   string
	Timestamp float64
	Status    MessageStatus
	Collapsed bool
	GroupKey  string
	Children  []*StructuredMessage
}

// IsStep reports whether the node can accept children.
func (m *StructuredMessage) IsStep() bool {
	return m.Role == RoleStep
}
