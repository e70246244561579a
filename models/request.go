package models

import "time"

// Request is the input to a single authorization decision. It identifies the
// calling agent, the action it wants to perform, and whatever optional
// attributes the action carries. A Request is immutable once constructed;
// the engine never mutates it.
type Request struct {
	AgentID      string     `json:"agent_id"`
	Action       string     `json:"action"`
	ResourceType string     `json:"resource_type,omitempty"`
	ResourceName string     `json:"resource_name,omitempty"`
	Amount       *float64   `json:"amount,omitempty"`
	HasApproval  bool       `json:"has_approval,omitempty"`

	// Timestamp is the instant used by time-window conditions. The zero
	// value means "use evaluation time"; the engine fills it in once per
	// call.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Request field names addressable by set-membership conditions.
const (
	FieldAgentID      = "agent_id"
	FieldAction       = "action"
	FieldResourceType = "resource_type"
	FieldResourceName = "resource_name"
)

// Field returns the named string field and whether it is present. An empty
// field counts as absent, so membership conditions treat it as "does not
// satisfy" rather than matching the empty string.
func (r Request) Field(name string) (string, bool) {
	var v string
	switch name {
	case FieldAgentID:
		v = r.AgentID
	case FieldAction:
		v = r.Action
	case FieldResourceType:
		v = r.ResourceType
	case FieldResourceName:
		v = r.ResourceName
	default:
		return "", false
	}
	return v, v != ""
}
