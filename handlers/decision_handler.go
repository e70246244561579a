package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/agent-authz/models"
	"github.com/upb/agent-authz/utils"
	"go.uber.org/zap"
)

// EvaluateRequest represents a request to evaluate an authorization decision
type EvaluateRequest struct {
	AgentID      string    `json:"agent_id" validate:"required"`
	Action       string    `json:"action" validate:"required"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceName string    `json:"resource_name,omitempty"`
	Amount       *float64  `json:"amount,omitempty" validate:"omitempty,gte=0"`
	HasApproval  bool      `json:"has_approval,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
}

// DecisionResponse represents an authorization decision in API responses
type DecisionResponse struct {
	RequestID    string   `json:"request_id,omitempty"`
	Allowed      bool     `json:"allowed"`
	MatchedRules []string `json:"matched_rules,omitempty"`
	DenyReasons  []string `json:"deny_reasons,omitempty"`
}

// DecisionService defines the interface for evaluating authorization requests
type DecisionService interface {
	Evaluate(req models.Request) models.Decision
}

// AuditDispatcher defines the interface for dispatching audit records
type AuditDispatcher interface {
	Submit(rec *models.DecisionRecord) error
}

// DecisionHandler handles decision evaluation HTTP requests
type DecisionHandler struct {
	engine DecisionService
	audit  AuditDispatcher
	logger *zap.Logger
}

// NewDecisionHandler creates a new DecisionHandler
func NewDecisionHandler(engine DecisionService, audit AuditDispatcher, logger *zap.Logger) *DecisionHandler {
	return &DecisionHandler{
		engine: engine,
		audit:  audit,
		logger: logger,
	}
}

// HandleEvaluate handles POST /v1/decisions. The endpoint always answers 200
// for a well-formed request: the decision payload carries the allow/deny
// outcome, so callers can distinguish "denied" from "call failed".
func (h *DecisionHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimiddleware.GetReqID(ctx)

	var body EvaluateRequest
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

	req := models.Request{
		AgentID:      body.AgentID,
		Action:       body.Action,
		ResourceType: body.ResourceType,
		ResourceName: body.ResourceName,
		Amount:       body.Amount,
		HasApproval:  body.HasApproval,
		Timestamp:    body.Timestamp,
	}

	dec := h.engine.Evaluate(req)

	if err := h.audit.Submit(models.NewDecisionRecord(requestID, req, dec)); err != nil {
		h.logger.Warn("failed to submit audit record",
			zap.String("request_id", requestID),
			zap.Error(err))
	}

	h.logger.Debug("decision evaluated",
		zap.String("request_id", requestID),
		zap.String("agent_id", req.AgentID),
		zap.String("action", req.Action),
		zap.Bool("allowed", dec.Allowed))

	_ = utils.WriteOK(w, DecisionResponse{
		RequestID:    requestID,
		Allowed:      dec.Allowed,
		MatchedRules: dec.MatchedRules,
		DenyReasons:  dec.DenyReasons,
	})
}
