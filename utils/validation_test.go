package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	AgentID string   `json:"agent_id" validate:"required"`
	Action  string   `json:"action" validate:"required,oneof=read update delete process_payment"`
	Amount  *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
}

func TestValidateStructOK(t *testing.T) {
	amt := 100.0
	err := ValidateStruct(sampleRequest{AgentID: "payment-agent", Action: "process_payment", Amount: &amt})
	assert.NoError(t, err)
}

func TestValidateStructMissingRequired(t *testing.T) {
	err := ValidateStruct(sampleRequest{Action: "read"})
	require.Error(t, err)

	fields := GetValidationFields(err)
	require.NotNil(t, fields)
	assert.Contains(t, fields["AgentID"], "required")
}

func TestValidateStructOneOf(t *testing.T) {
	err := ValidateStruct(sampleRequest{AgentID: "a", Action: "explode"})
	require.Error(t, err)
	assert.Contains(t, GetValidationFields(err)["Action"], "must be one of")
}

func TestValidateStructNegativeAmount(t *testing.T) {
	amt := -5.0
	err := ValidateStruct(sampleRequest{AgentID: "a", Action: "read", Amount: &amt})
	require.Error(t, err)
	assert.Contains(t, GetValidationFields(err)["Amount"], "greater than or equal to")
}

func TestGetValidationFieldsNonValidationError(t *testing.T) {
	assert.Nil(t, GetValidationFields(assert.AnError))
}
