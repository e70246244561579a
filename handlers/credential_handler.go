package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/agent-authz/models"
	"github.com/upb/agent-authz/utils"
	"go.uber.org/zap"
)

// CredentialResponse represents an issued credential lease in API responses
type CredentialResponse struct {
	LeaseID   string    `json:"lease_id"`
	Role      string    `json:"role"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TTL       int64     `json:"ttl_seconds"`
}

// CredentialService defines the interface for dynamic credential operations
type CredentialService interface {
	Credentials(ctx context.Context, role string) (*models.Credential, error)
	Revoke(ctx context.Context, role string) error
}

// CredentialHandler handles dynamic credential HTTP requests
type CredentialHandler struct {
	manager CredentialService
	logger  *zap.Logger
}

// NewCredentialHandler creates a new CredentialHandler
func NewCredentialHandler(manager CredentialService, logger *zap.Logger) *CredentialHandler {
	return &CredentialHandler{
		manager: manager,
		logger:  logger,
	}
}

// HandleIssueCredentials handles POST /v1/credentials/{role}. Repeated calls
// for the same role return the cached lease until it nears expiry.
func (h *CredentialHandler) HandleIssueCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimiddleware.GetReqID(ctx)

	role := chi.URLParam(r, "role")
	if role == "" {
		_ = utils.WriteBadRequest(w, "Missing credential role", nil)
		return
	}

	cred, err := h.manager.Credentials(ctx, role)
	if err != nil {
		h.logger.Error("failed to issue credentials",
			zap.String("request_id", requestID),
			zap.String("role", role),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to issue credentials")
		return
	}

	h.logger.Info("credentials issued",
		zap.String("request_id", requestID),
		zap.String("role", role),
		zap.String("lease_id", cred.LeaseID))

	_ = utils.WriteOK(w, CredentialResponse{
		LeaseID:   cred.LeaseID,
		Role:      cred.Role,
		Username:  cred.Username,
		Password:  cred.Password,
		IssuedAt:  cred.IssuedAt,
		ExpiresAt: cred.ExpiresAt,
		TTL:       int64(cred.TimeRemaining(time.Now().UTC()).Seconds()),
	})
}

// HandleRevokeCredentials handles DELETE /v1/credentials/{role}
func (h *CredentialHandler) HandleRevokeCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimiddleware.GetReqID(ctx)

	role := chi.URLParam(r, "role")
	if role == "" {
		_ = utils.WriteBadRequest(w, "Missing credential role", nil)
		return
	}

	if err := h.manager.Revoke(ctx, role); err != nil {
		h.logger.Error("failed to revoke credentials",
			zap.String("request_id", requestID),
			zap.String("role", role),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to revoke credentials")
		return
	}

	_ = utils.WriteOK(w, map[string]string{"status": "revoked", "role": role})
}
