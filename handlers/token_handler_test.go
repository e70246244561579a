package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/agent-authz/auth"
	"go.uber.org/zap"
)

func TestHandleIssueToken(t *testing.T) {
	tokens, err := auth.NewTokenService([]byte("test-secret-0123456789"), "agent-authz", time.Hour)
	require.NoError(t, err)
	h := NewTokenHandler(tokens, zap.NewNop())

	body, _ := json.Marshal(IssueTokenRequest{
		AgentID: "agent-invoice",
		Scopes:  []string{"invoices.Read"},
	})
	w := httptest.NewRecorder()
	h.HandleIssueToken(w, httptest.NewRequest(http.MethodPost, "/v1/tokens", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	// Issued token validates and carries the agent identity.
	claims, err := tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "agent-invoice", claims.AgentID)
	assert.True(t, auth.HasScope(claims.Scopes, "invoices.Read"))
}

func TestHandleIssueTokenValidation(t *testing.T) {
	tokens, err := auth.NewTokenService([]byte("test-secret-0123456789"), "agent-authz", time.Hour)
	require.NoError(t, err)
	h := NewTokenHandler(tokens, zap.NewNop())

	w := httptest.NewRecorder()
	h.HandleIssueToken(w, httptest.NewRequest(http.MethodPost, "/v1/tokens",
		bytes.NewReader([]byte(`{"scopes":["invoices.Read"]}`))))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
