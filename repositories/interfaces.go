// Package repositories defines the interfaces rule sources must satisfy.
// The engine itself never loads anything; a source produces declarative
// definitions and the caller compiles them into a rule set at startup (or
// on reload).
package repositories

import (
	"context"

	"github.com/upb/agent-authz/models"
)

// RuleSource loads declarative rule definitions from some backing store.
type RuleSource interface {
	// LoadDefinitions returns every enabled rule definition.
	LoadDefinitions(ctx context.Context) ([]models.RuleDefinition, error)
}

// BuiltinSource serves a fixed slice of definitions. Used for the built-in
// rule families and in tests.
type BuiltinSource struct {
	Definitions []models.RuleDefinition
}

// LoadDefinitions implements RuleSource.
func (s *BuiltinSource) LoadDefinitions(_ context.Context) ([]models.RuleDefinition, error) {
	return s.Definitions, nil
}
