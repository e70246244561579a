package policy

import (
	"fmt"

	"github.com/upb/agent-authz/models"
)

// Rule is a named unit of policy logic: an agent/action scope guard, a
// predicate, and an effect. Allow rules grant; deny-reason rules annotate.
type Rule struct {
	ID      string
	AgentID string
	// Action scopes the rule to one action. Empty matches any action.
	Action    string
	Effect    models.Effect
	Reason    string
	Predicate Predicate
}

// Matches reports whether the rule applies to the request: the scope guard
// must match and the predicate (if any) must be satisfied.
func (r *Rule) Matches(req models.Request) bool {
	if r.AgentID != "" && r.AgentID != req.AgentID {
		return false
	}
	if r.Action != "" && r.Action != req.Action {
		return false
	}
	return r.Predicate == nil || r.Predicate(req)
}

// RuleSet is an unordered collection of rules partitioned by effect. It is
// immutable after construction and safe to share across concurrent
// evaluations; policy reloads build a fresh RuleSet and swap it in whole.
type RuleSet struct {
	allow      []*Rule
	denyReason []*Rule
}

// NewRuleSet builds a rule set from rules, validating each: IDs must be
// unique, effects known, and deny-reason rules must carry reason text.
// Rule sets must not encode mutually exclusive semantics via ordering;
// matches within each partition are unioned.
func NewRuleSet(rules ...*Rule) (*RuleSet, error) {
	rs := &RuleSet{}
	seen := make(map[string]struct{}, len(rules))

	for _, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule has empty id")
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = struct{}{}

		switch r.Effect {
		case models.EffectAllow:
			rs.allow = append(rs.allow, r)
		case models.EffectDenyReason:
			if r.Reason == "" {
				return nil, fmt.Errorf("deny-reason rule %q has no reason text", r.ID)
			}
			rs.denyReason = append(rs.denyReason, r)
		default:
			return nil, fmt.Errorf("rule %q has unknown effect %q", r.ID, r.Effect)
		}
	}

	return rs, nil
}

// AllowRules returns the allow partition.
func (rs *RuleSet) AllowRules() []*Rule {
	return rs.allow
}

// DenyReasonRules returns the deny-reason partition.
func (rs *RuleSet) DenyReasonRules() []*Rule {
	return rs.denyReason
}

// Len returns the total number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.allow) + len(rs.denyReason)
}
