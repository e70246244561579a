package handlers

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/agent-authz/utils"
	"go.uber.org/zap"
)

// IssueTokenRequest represents a request to mint an agent token
type IssueTokenRequest struct {
	AgentID string   `json:"agent_id" validate:"required"`
	Scopes  []string `json:"scopes,omitempty"`
}

// TokenResponse represents an issued agent token in API responses
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// TokenIssuer defines the interface for minting agent tokens
type TokenIssuer interface {
	Issue(agentID string, scopes []string) (string, error)
	TTLSeconds() int64
}

// TokenHandler mints bearer tokens for agents. Intended for local development
// and integration tests; production deployments front this with their own
// identity provider.
type TokenHandler struct {
	issuer TokenIssuer
	logger *zap.Logger
}

// NewTokenHandler creates a new TokenHandler
func NewTokenHandler(issuer TokenIssuer, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{
		issuer: issuer,
		logger: logger,
	}
}

// HandleIssueToken handles POST /v1/tokens
func (h *TokenHandler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	requestID := chimiddleware.GetReqID(r.Context())

	var body IssueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(body); err != nil {
		_ = utils.WriteBadRequest(w, "Validation failed", map[string]interface{}{
			"fields": utils.GetValidationFields(err),
		})
		return
	}

	token, err := h.issuer.Issue(body.AgentID, body.Scopes)
	if err != nil {
		h.logger.Error("failed to issue token",
			zap.String("request_id", requestID),
			zap.String("agent_id", body.AgentID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to issue token")
		return
	}

	h.logger.Info("agent token issued",
		zap.String("request_id", requestID),
		zap.String("agent_id", body.AgentID))

	_ = utils.WriteOK(w, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: h.issuer.TTLSeconds(),
	})
}
