package models

import "time"

// Effect is what a matching rule contributes to a decision.
type Effect string

const (
	// EffectAllow grants access when the rule matches.
	EffectAllow Effect = "allow"
	// EffectDenyReason records the rule's reason text when the rule
	// matches. It never revokes a grant made by an allow rule.
	EffectDenyReason Effect = "deny_reason"
)

// Valid reports whether e is a known effect.
func (e Effect) Valid() bool {
	return e == EffectAllow || e == EffectDenyReason
}

// Condition kinds understood by the rule compiler.
const (
	ConditionWithinHours                = "within_hours"
	ConditionOutsideHours               = "outside_hours"
	ConditionAmountAtMost               = "amount_at_most"
	ConditionAmountAboveWithApproval    = "amount_above_with_approval"
	ConditionAmountAboveWithoutApproval = "amount_above_without_approval"
	ConditionInSet                      = "in_set"
	ConditionNotInSet                   = "not_in_set"
)

// ConditionDefinition is the static, serializable form of one rule
// condition. Which parameters are required depends on Kind: hour-window
// kinds use StartHour/EndHour, amount kinds use Limit, set kinds use
// Field and Values.
type ConditionDefinition struct {
	Kind      string   `json:"kind" db:"kind"`
	Field     string   `json:"field,omitempty"`
	Values    []string `json:"values,omitempty"`
	Limit     float64  `json:"limit,omitempty"`
	StartHour int      `json:"start_hour,omitempty"`
	EndHour   int      `json:"end_hour,omitempty"`
}

// RuleDefinition is the declarative form of one policy rule, as produced
// by rule sources (builtin tables, JSON files, the agent_rules table).
// Definitions are compiled into an executable rule set at startup; a
// definition that references an unknown condition kind or is otherwise
// malformed fails compilation, never evaluation.
type RuleDefinition struct {
	ID          string                `json:"id" db:"id"`
	Description string                `json:"description,omitempty" db:"description"`
	AgentID     string                `json:"agent_id" db:"agent_id"`
	// Action scopes the rule to one action. Empty matches any action,
	// which deny-reason rules use to cover whole verb families.
	Action     string                `json:"action,omitempty" db:"action"`
	Effect     Effect                `json:"effect" db:"effect"`
	Reason     string                `json:"reason,omitempty" db:"reason"`
	Conditions []ConditionDefinition `json:"conditions,omitempty"`
	Enabled    bool                  `json:"enabled" db:"enabled"`
	CreatedAt  time.Time             `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at,omitempty" db:"updated_at"`
}

// TableName returns the table name for rule definitions.
func (RuleDefinition) TableName() string {
	return "agent_rules"
}
