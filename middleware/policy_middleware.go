package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/agent-authz/models"
	"github.com/upb/agent-authz/utils"
	"go.uber.org/zap"
)

// DecisionMaker defines the interface for evaluating authorization requests
type DecisionMaker interface {
	Evaluate(req models.Request) models.Decision
}

// DecisionRecorder defines the interface for dispatching audit records
type DecisionRecorder interface {
	Submit(rec *models.DecisionRecord) error
}

// PolicyEnforcementMiddleware guards resource routes: it derives an
// authorization request from the HTTP request and the authenticated agent,
// evaluates it, and rejects the call when the decision denies it.
type PolicyEnforcementMiddleware struct {
	engine DecisionMaker
	audit  DecisionRecorder
	logger *zap.Logger
}

// NewPolicyEnforcementMiddleware creates a new PolicyEnforcementMiddleware
func NewPolicyEnforcementMiddleware(
	engine DecisionMaker,
	audit DecisionRecorder,
	logger *zap.Logger,
) *PolicyEnforcementMiddleware {
	return &PolicyEnforcementMiddleware{
		engine: engine,
		audit:  audit,
		logger: logger,
	}
}

// actionForMethod maps HTTP verbs on resource routes to policy actions.
var actionForMethod = map[string]string{
	http.MethodGet:    "read",
	http.MethodPost:   "create",
	http.MethodPut:    "update",
	http.MethodPatch:  "update",
	http.MethodDelete: "delete",
}

// EnforceResourceAccess evaluates resource route requests against the
// policy engine. Must run after RequireAgent: the principal comes from the
// validated token, never from the request body.
func (m *PolicyEnforcementMiddleware) EnforceResourceAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := chimiddleware.GetReqID(ctx)

		claims := GetAgentClaimsFromContext(ctx)
		if claims == nil {
			m.logger.Error("missing agent claims in context",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing agent identity")
			return
		}

		action, ok := actionForMethod[r.Method]
		if !ok {
			_ = utils.WriteForbidden(w, "Unsupported method", nil)
			return
		}

		req := models.Request{
			AgentID:      claims.AgentID,
			Action:       action,
			ResourceType: chi.URLParam(r, "type"),
			ResourceName: chi.URLParam(r, "name"),
		}

		dec := m.engine.Evaluate(req)

		if err := m.audit.Submit(models.NewDecisionRecord(requestID, req, dec)); err != nil {
			m.logger.Warn("failed to submit audit record",
				zap.String("request_id", requestID),
				zap.Error(err))
		}

		if !dec.Allowed {
			m.logger.Warn("request blocked by policy",
				zap.String("request_id", requestID),
				zap.String("agent_id", req.AgentID),
				zap.String("action", req.Action),
				zap.Strings("deny_reasons", dec.DenyReasons))

			details := map[string]interface{}{}
			if len(dec.DenyReasons) > 0 {
				details["deny_reasons"] = dec.DenyReasons
			}
			_ = utils.WriteForbidden(w, "Request blocked by policy", details)
			return
		}

		m.logger.Debug("policy enforcement passed",
			zap.String("request_id", requestID),
			zap.Strings("matched_rules", dec.MatchedRules))

		next.ServeHTTP(w, r.WithContext(WithDecision(ctx, dec)))
	})
}
