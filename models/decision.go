package models

// Decision is the outcome of evaluating one Request against a rule set.
//
// Allowed and DenyReasons are computed from independent rule partitions:
// a request can be allowed while still carrying deny reasons. The built-in
// rule families avoid that combination by authoring each deny-reason
// condition as the negation of the corresponding allow condition, but the
// engine does not enforce the pairing. DenyReasons is an audit annotation,
// not a veto.
type Decision struct {
	// Allowed is true iff at least one allow rule matched. No matching
	// allow rule means denied; there is no implicit grant.
	Allowed bool `json:"allowed"`

	// MatchedRules lists the IDs of every allow rule that matched, in
	// rule-set order. Retained for audit; only the union matters for
	// Allowed.
	MatchedRules []string `json:"matched_rules,omitempty"`

	// DenyReasons is the deduplicated union of reason texts from every
	// matching deny-reason rule.
	DenyReasons []string `json:"deny_reasons,omitempty"`
}
