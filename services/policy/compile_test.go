package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/agent-authz/models"
)

func TestCompileBuildsWorkingRules(t *testing.T) {
	defs := []models.RuleDefinition{
		{
			ID:      "hours-and-type",
			AgentID: "agent-a",
			Action:  "read",
			Effect:  models.EffectAllow,
			Conditions: []models.ConditionDefinition{
				{Kind: models.ConditionWithinHours, StartHour: 9, EndHour: 17},
				{Kind: models.ConditionInSet, Field: models.FieldResourceType, Values: []string{"report"}},
			},
			Enabled: true,
		},
	}

	rs, err := Compile(defs, CompileOptions{Location: time.UTC})
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())

	rule := rs.AllowRules()[0]
	in := models.Request{
		AgentID:      "agent-a",
		Action:       "read",
		ResourceType: "report",
		Timestamp:    time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
	}
	assert.True(t, rule.Matches(in))

	// Conditions are conjunctive: same request outside the window fails.
	out := in
	out.Timestamp = time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	assert.False(t, rule.Matches(out))
}

func TestCompileSkipsDisabledRules(t *testing.T) {
	defs := []models.RuleDefinition{
		{ID: "off", AgentID: "a", Effect: models.EffectAllow, Enabled: false},
		{ID: "on", AgentID: "a", Effect: models.EffectAllow, Enabled: true},
	}

	rs, err := Compile(defs, CompileOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, "on", rs.AllowRules()[0].ID)
}

func TestCompileFailsFast(t *testing.T) {
	tests := []struct {
		name    string
		def     models.RuleDefinition
		wantErr string
	}{
		{
			name: "unknown condition kind",
			def: models.RuleDefinition{
				ID: "r", AgentID: "a", Effect: models.EffectAllow, Enabled: true,
				Conditions: []models.ConditionDefinition{{Kind: "regex_match"}},
			},
			wantErr: "unknown condition kind",
		},
		{
			name: "unknown effect",
			def: models.RuleDefinition{
				ID: "r", AgentID: "a", Effect: models.Effect("veto"), Enabled: true,
			},
			wantErr: "unknown effect",
		},
		{
			name: "missing agent",
			def: models.RuleDefinition{
				ID: "r", Effect: models.EffectAllow, Enabled: true,
			},
			wantErr: "agent_id is required",
		},
		{
			name: "inverted hour window",
			def: models.RuleDefinition{
				ID: "r", AgentID: "a", Effect: models.EffectAllow, Enabled: true,
				Conditions: []models.ConditionDefinition{
					{Kind: models.ConditionWithinHours, StartHour: 17, EndHour: 9},
				},
			},
			wantErr: "not before end hour",
		},
		{
			name: "hour out of range",
			def: models.RuleDefinition{
				ID: "r", AgentID: "a", Effect: models.EffectAllow, Enabled: true,
				Conditions: []models.ConditionDefinition{
					{Kind: models.ConditionOutsideHours, StartHour: -1, EndHour: 9},
				},
			},
			wantErr: "out of range",
		},
		{
			name: "negative amount limit",
			def: models.RuleDefinition{
				ID: "r", AgentID: "a", Effect: models.EffectAllow, Enabled: true,
				Conditions: []models.ConditionDefinition{
					{Kind: models.ConditionAmountAtMost, Limit: -1},
				},
			},
			wantErr: "negative amount limit",
		},
		{
			name: "set condition without field",
			def: models.RuleDefinition{
				ID: "r", AgentID: "a", Effect: models.EffectAllow, Enabled: true,
				Conditions: []models.ConditionDefinition{
					{Kind: models.ConditionInSet, Values: []string{"x"}},
				},
			},
			wantErr: "requires a field",
		},
		{
			name: "set condition without values",
			def: models.RuleDefinition{
				ID: "r", AgentID: "a", Effect: models.EffectAllow, Enabled: true,
				Conditions: []models.ConditionDefinition{
					{Kind: models.ConditionNotInSet, Field: models.FieldResourceName},
				},
			},
			wantErr: "requires values",
		},
		{
			name: "deny rule without reason",
			def: models.RuleDefinition{
				ID: "r", AgentID: "a", Effect: models.EffectDenyReason, Enabled: true,
			},
			wantErr: "no reason text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]models.RuleDefinition{tt.def}, CompileOptions{})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
