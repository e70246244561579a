package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/agent-authz/models"
	"go.uber.org/zap"
)

func newMockRepo(t *testing.T) (*RuleRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &DB{DB: mockDB, logger: zap.NewNop()}
	return &RuleRepository{db: db, logger: zap.NewNop()}, mock
}

var ruleColumns = []string{
	"id", "description", "agent_id", "action", "effect", "reason",
	"conditions", "enabled", "created_at", "updated_at",
}

func TestLoadDefinitions(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(ruleColumns).
		AddRow(
			"payment-under-limit", "auto-grant under the limit", "payment-agent",
			"process_payment", "allow", "",
			[]byte(`[{"kind":"amount_at_most","limit":10000}]`),
			true, now, now,
		).
		AddRow(
			"payment-over-limit-unapproved", "", "payment-agent",
			"process_payment", "deny_reason", "payments above 10000.00 require explicit approval",
			[]byte(`[{"kind":"amount_above_without_approval","limit":10000}]`),
			true, now, now,
		)

	mock.ExpectQuery("SELECT id, description, agent_id, action, effect, reason, conditions, enabled").
		WillReturnRows(rows)

	defs, err := repo.LoadDefinitions(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "payment-under-limit", defs[0].ID)
	assert.Equal(t, models.EffectAllow, defs[0].Effect)
	require.Len(t, defs[0].Conditions, 1)
	assert.Equal(t, models.ConditionAmountAtMost, defs[0].Conditions[0].Kind)
	assert.Equal(t, float64(10000), defs[0].Conditions[0].Limit)

	assert.Equal(t, models.EffectDenyReason, defs[1].Effect)
	assert.NotEmpty(t, defs[1].Reason)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDefinitionsEmptyConditions(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(ruleColumns).
		AddRow("bare-grant", "", "ops-agent", "read", "allow", "", []byte(nil), true, now, now)

	mock.ExpectQuery("SELECT id, description").WillReturnRows(rows)

	defs, err := repo.LoadDefinitions(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Empty(t, defs[0].Conditions)
}

func TestLoadDefinitionsMalformedConditions(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(ruleColumns).
		AddRow("broken", "", "ops-agent", "read", "allow", "", []byte(`{not json`), true, now, now)

	mock.ExpectQuery("SELECT id, description").WillReturnRows(rows)

	_, err := repo.LoadDefinitions(context.Background())
	assert.ErrorContains(t, err, "malformed conditions")
}

func TestLoadDefinitionsQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, description").WillReturnError(assert.AnError)

	_, err := repo.LoadDefinitions(context.Background())
	assert.ErrorContains(t, err, "failed to query rules")
}
