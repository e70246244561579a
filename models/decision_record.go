package models

import (
	"time"

	"github.com/google/uuid"
)

// DecisionRecord is the audit view of one evaluation: the request attributes
// that drove the decision plus the full decision output. Records are handed
// to an audit sink; the engine itself persists nothing.
type DecisionRecord struct {
	ID           uuid.UUID `json:"id"`
	RequestID    string    `json:"request_id,omitempty"`
	AgentID      string    `json:"agent_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceName string    `json:"resource_name,omitempty"`
	Amount       *float64  `json:"amount,omitempty"`
	HasApproval  bool      `json:"has_approval,omitempty"`
	Allowed      bool      `json:"allowed"`
	MatchedRules []string  `json:"matched_rules,omitempty"`
	DenyReasons  []string  `json:"deny_reasons,omitempty"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// NewDecisionRecord builds an audit record from a request and its decision.
func NewDecisionRecord(requestID string, req Request, dec Decision) *DecisionRecord {
	return &DecisionRecord{
		ID:           uuid.New(),
		RequestID:    requestID,
		AgentID:      req.AgentID,
		Action:       req.Action,
		ResourceType: req.ResourceType,
		ResourceName: req.ResourceName,
		Amount:       req.Amount,
		HasApproval:  req.HasApproval,
		Allowed:      dec.Allowed,
		MatchedRules: dec.MatchedRules,
		DenyReasons:  dec.DenyReasons,
		EvaluatedAt:  time.Now().UTC(),
	}
}
