package policy

import (
	"fmt"
	"time"

	"github.com/upb/agent-authz/models"
)

// CompileOptions parameterize rule compilation.
type CompileOptions struct {
	// Location is the evaluator's time zone for hour-window conditions.
	// Nil means UTC.
	Location *time.Location
}

// Compile turns declarative rule definitions into an executable rule set.
//
// All construction-time validation happens here: an unknown condition kind,
// an invalid hour window, a set condition without field or values, or a
// deny-reason rule without reason text fails compilation. Evaluate never
// sees a malformed rule. Disabled definitions are skipped.
func Compile(defs []models.RuleDefinition, opts CompileOptions) (*RuleSet, error) {
	rules := make([]*Rule, 0, len(defs))

	for _, def := range defs {
		if !def.Enabled {
			continue
		}
		if def.AgentID == "" {
			return nil, fmt.Errorf("rule %q: agent_id is required", def.ID)
		}
		if !def.Effect.Valid() {
			return nil, fmt.Errorf("rule %q: unknown effect %q", def.ID, def.Effect)
		}

		preds := make([]Predicate, 0, len(def.Conditions))
		for i, cond := range def.Conditions {
			p, err := compileCondition(cond, opts)
			if err != nil {
				return nil, fmt.Errorf("rule %q: condition %d: %w", def.ID, i, err)
			}
			preds = append(preds, p)
		}

		rules = append(rules, &Rule{
			ID:        def.ID,
			AgentID:   def.AgentID,
			Action:    def.Action,
			Effect:    def.Effect,
			Reason:    def.Reason,
			Predicate: All(preds...),
		})
	}

	return NewRuleSet(rules...)
}

func compileCondition(cond models.ConditionDefinition, opts CompileOptions) (Predicate, error) {
	switch cond.Kind {
	case models.ConditionWithinHours, models.ConditionOutsideHours:
		if err := validateHourWindow(cond.StartHour, cond.EndHour); err != nil {
			return nil, err
		}
		if cond.Kind == models.ConditionWithinHours {
			return WithinHours(cond.StartHour, cond.EndHour, opts.Location), nil
		}
		return OutsideHours(cond.StartHour, cond.EndHour, opts.Location), nil

	case models.ConditionAmountAtMost:
		if cond.Limit < 0 {
			return nil, fmt.Errorf("negative amount limit %v", cond.Limit)
		}
		return AmountAtMost(cond.Limit), nil

	case models.ConditionAmountAboveWithApproval:
		if cond.Limit < 0 {
			return nil, fmt.Errorf("negative amount limit %v", cond.Limit)
		}
		return AmountAboveWithApproval(cond.Limit), nil

	case models.ConditionAmountAboveWithoutApproval:
		if cond.Limit < 0 {
			return nil, fmt.Errorf("negative amount limit %v", cond.Limit)
		}
		return AmountAboveWithoutApproval(cond.Limit), nil

	case models.ConditionInSet, models.ConditionNotInSet:
		if cond.Field == "" {
			return nil, fmt.Errorf("%s condition requires a field", cond.Kind)
		}
		if len(cond.Values) == 0 {
			return nil, fmt.Errorf("%s condition requires values", cond.Kind)
		}
		if cond.Kind == models.ConditionInSet {
			return InSet(cond.Field, cond.Values), nil
		}
		return NotInSet(cond.Field, cond.Values), nil

	default:
		return nil, fmt.Errorf("unknown condition kind %q", cond.Kind)
	}
}

func validateHourWindow(start, end int) error {
	if start < 0 || start > 23 {
		return fmt.Errorf("start hour %d out of range [0,23]", start)
	}
	if end < 1 || end > 24 {
		return fmt.Errorf("end hour %d out of range [1,24]", end)
	}
	if start >= end {
		return fmt.Errorf("start hour %d not before end hour %d", start, end)
	}
	return nil
}
