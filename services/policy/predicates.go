package policy

import (
	"time"

	"github.com/upb/agent-authz/models"
)

// Predicate is a pure boolean condition over a request. Predicates have no
// side effects and never fail: a condition that needs a field the request
// lacks evaluates to false.
type Predicate func(models.Request) bool

// WithinHours matches when the hour-of-day of the request timestamp, in the
// given location, satisfies start <= hour < end. A nil location means UTC.
func WithinHours(start, end int, loc *time.Location) Predicate {
	if loc == nil {
		loc = time.UTC
	}
	return func(req models.Request) bool {
		hour := req.Timestamp.In(loc).Hour()
		return hour >= start && hour < end
	}
}

// OutsideHours is the negation pair of WithinHours, used to author
// deny-reason rules for after-hours activity.
func OutsideHours(start, end int, loc *time.Location) Predicate {
	within := WithinHours(start, end, loc)
	return func(req models.Request) bool {
		return !within(req)
	}
}

// AmountAtMost matches when the request carries an amount and it does not
// exceed limit. A request without an amount never matches.
func AmountAtMost(limit float64) Predicate {
	return func(req models.Request) bool {
		return req.Amount != nil && *req.Amount <= limit
	}
}

// AmountAboveWithApproval matches over-limit amounts that carry an explicit
// approval flag: amount present, above limit, and HasApproval set.
func AmountAboveWithApproval(limit float64) Predicate {
	return func(req models.Request) bool {
		return req.Amount != nil && *req.Amount > limit && req.HasApproval
	}
}

// AmountAboveWithoutApproval is the negation pair of AmountAboveWithApproval
// within the over-limit branch: amount present, above limit, and no approval.
// Used to author the approval-required deny reason.
func AmountAboveWithoutApproval(limit float64) Predicate {
	return func(req models.Request) bool {
		return req.Amount != nil && *req.Amount > limit && !req.HasApproval
	}
}

// InSet matches when the named request field is present and a member of
// values.
func InSet(field string, values []string) Predicate {
	set := stringSet(values)
	return func(req models.Request) bool {
		v, ok := req.Field(field)
		if !ok {
			return false
		}
		_, member := set[v]
		return member
	}
}

// NotInSet matches when the named request field is present and NOT a member
// of values. Exclusion rather than enumeration: "has no PII" is expressed by
// listing the sensitive names, not every safe one. An absent field does not
// match.
func NotInSet(field string, values []string) Predicate {
	set := stringSet(values)
	return func(req models.Request) bool {
		v, ok := req.Field(field)
		if !ok {
			return false
		}
		_, member := set[v]
		return !member
	}
}

// All combines predicates conjunctively. With no predicates it matches
// everything, so a rule whose scope guard is its whole condition still works.
func All(preds ...Predicate) Predicate {
	return func(req models.Request) bool {
		for _, p := range preds {
			if !p(req) {
				return false
			}
		}
		return true
	}
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
