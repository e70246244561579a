package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/upb/agent-authz/models"
	"github.com/upb/agent-authz/repositories"
	"go.uber.org/zap"
)

// RuleRepository loads rule definitions from the agent_rules table.
// Conditions are stored as JSONB, so adding a condition kind needs no
// schema change.
type RuleRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *DB, logger *zap.Logger) repositories.RuleSource {
	return &RuleRepository{
		db:     db,
		logger: logger,
	}
}

// LoadDefinitions returns every enabled rule definition.
func (r *RuleRepository) LoadDefinitions(ctx context.Context) ([]models.RuleDefinition, error) {
	query := `
		SELECT id, description, agent_id, action, effect, reason, conditions, enabled, created_at, updated_at
		FROM agent_rules
		WHERE enabled = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var defs []models.RuleDefinition
	for rows.Next() {
		var def models.RuleDefinition
		var conditions []byte

		err := rows.Scan(
			&def.ID,
			&def.Description,
			&def.AgentID,
			&def.Action,
			&def.Effect,
			&def.Reason,
			&conditions,
			&def.Enabled,
			&def.CreatedAt,
			&def.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &def.Conditions); err != nil {
				return nil, fmt.Errorf("rule %q has malformed conditions: %w", def.ID, err)
			}
		}

		defs = append(defs, def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	r.logger.Debug("loaded rule definitions", zap.Int("count", len(defs)))
	return defs, nil
}
