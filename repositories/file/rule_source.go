// Package file loads rule definitions from a JSON policy file, for
// deployments that ship policy as static configuration instead of a
// database.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/upb/agent-authz/models"
	"go.uber.org/zap"
)

// document is the on-disk layout: a single object with a rules array, so
// the format can grow metadata without breaking existing files.
type document struct {
	Rules []models.RuleDefinition `json:"rules"`
}

// RuleSource reads rule definitions from a JSON file.
type RuleSource struct {
	path   string
	logger *zap.Logger
}

// NewRuleSource creates a file-backed rule source.
func NewRuleSource(path string, logger *zap.Logger) *RuleSource {
	return &RuleSource{path: path, logger: logger}
}

// LoadDefinitions implements repositories.RuleSource. The file is read in
// full on every call; reloads pick up edits without restarting.
func (s *RuleSource) LoadDefinitions(_ context.Context) ([]models.RuleDefinition, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %q: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %q: %w", s.path, err)
	}

	s.logger.Debug("loaded policy file",
		zap.String("path", s.path),
		zap.Int("rules", len(doc.Rules)))

	return doc.Rules, nil
}
