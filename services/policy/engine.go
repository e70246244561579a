package policy

import (
	"sync/atomic"
	"time"

	"github.com/upb/agent-authz/models"
	"go.uber.org/zap"
)

// Engine owns the active rule set and turns requests into decisions.
//
// Evaluate is total over well-formed requests: it never errors and never
// panics for business-level denial. It reads only the rule set and its
// argument, so any number of callers may evaluate concurrently without
// locking. Reloads replace the whole rule set atomically; a live rule set
// is never mutated in place.
type Engine struct {
	rules  atomic.Pointer[RuleSet]
	now    func() time.Time
	logger *zap.Logger
}

// NewEngine creates an engine over an initial rule set.
func NewEngine(rs *RuleSet, logger *zap.Logger) *Engine {
	e := &Engine{
		now:    time.Now,
		logger: logger,
	}
	e.rules.Store(rs)
	return e
}

// Replace swaps in a new rule set. In-flight evaluations finish against the
// set they started with.
func (e *Engine) Replace(rs *RuleSet) {
	e.rules.Store(rs)
	e.logger.Info("rule set replaced",
		zap.Int("allow_rules", len(rs.allow)),
		zap.Int("deny_reason_rules", len(rs.denyReason)))
}

// RuleSet returns the currently active rule set.
func (e *Engine) RuleSet() *RuleSet {
	return e.rules.Load()
}

// Evaluate decides whether the request is allowed and collects audit
// reasons.
//
// Default-deny is structural: allowed starts false and only an explicit
// allow-rule match flips it. Every allow rule is scanned without
// short-circuit so all matches are visible to audit; functionally only the
// union matters. Deny-reason rules are evaluated independently of the allow
// outcome and their reason texts are deduplicated.
func (e *Engine) Evaluate(req models.Request) models.Decision {
	rs := e.rules.Load()

	if req.Timestamp.IsZero() {
		// Wall clock is read once per call; every time-window condition
		// in this evaluation sees the same instant.
		req.Timestamp = e.now()
	}

	var dec models.Decision
	for _, r := range rs.allow {
		if r.Matches(req) {
			dec.Allowed = true
			dec.MatchedRules = append(dec.MatchedRules, r.ID)
		}
	}

	var seen map[string]struct{}
	for _, r := range rs.denyReason {
		if !r.Matches(req) {
			continue
		}
		if seen == nil {
			seen = make(map[string]struct{})
		}
		if _, dup := seen[r.Reason]; dup {
			continue
		}
		seen[r.Reason] = struct{}{}
		dec.DenyReasons = append(dec.DenyReasons, r.Reason)
	}

	e.logger.Debug("request evaluated",
		zap.String("agent_id", req.AgentID),
		zap.String("action", req.Action),
		zap.Bool("allowed", dec.Allowed),
		zap.Strings("matched_rules", dec.MatchedRules),
		zap.Int("deny_reasons", len(dec.DenyReasons)))

	return dec
}
