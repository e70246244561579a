package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/agent-authz/services/credentials"
	"go.uber.org/zap"
)

func credentialRouter(t *testing.T) (http.Handler, *credentials.Manager) {
	t.Helper()
	manager := credentials.NewManager(credentials.NewLocalIssuer(), credentials.Config{
		TTL:           time.Hour,
		RenewalMargin: 5 * time.Minute,
	}, zap.NewNop())
	h := NewCredentialHandler(manager, zap.NewNop())

	r := chi.NewRouter()
	r.Post("/v1/credentials/{role}", h.HandleIssueCredentials)
	r.Delete("/v1/credentials/{role}", h.HandleRevokeCredentials)
	return r, manager
}

func TestHandleIssueCredentials(t *testing.T) {
	router, _ := credentialRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/credentials/billing-readonly", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp CredentialResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "billing-readonly", resp.Role)
	assert.NotEmpty(t, resp.LeaseID)
	assert.NotEmpty(t, resp.Username)
	assert.NotEmpty(t, resp.Password)
	assert.Greater(t, resp.TTL, int64(0))
}

func TestHandleIssueCredentialsReusesLease(t *testing.T) {
	router, _ := credentialRouter(t)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/v1/credentials/billing-readonly", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/v1/credentials/billing-readonly", nil))

	var a, b CredentialResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.LeaseID, b.LeaseID)
}

func TestHandleRevokeCredentials(t *testing.T) {
	router, manager := credentialRouter(t)

	issue := httptest.NewRecorder()
	router.ServeHTTP(issue, httptest.NewRequest(http.MethodPost, "/v1/credentials/billing-readonly", nil))
	require.Equal(t, http.StatusOK, issue.Code)

	revoke := httptest.NewRecorder()
	router.ServeHTTP(revoke, httptest.NewRequest(http.MethodDelete, "/v1/credentials/billing-readonly", nil))
	assert.Equal(t, http.StatusOK, revoke.Code)

	// A fresh lease is issued after revocation.
	var before CredentialResponse
	require.NoError(t, json.Unmarshal(issue.Body.Bytes(), &before))
	after, err := manager.Credentials(context.Background(), "billing-readonly")
	require.NoError(t, err)
	assert.NotEqual(t, before.LeaseID, after.LeaseID)
}
