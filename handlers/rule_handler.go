package handlers

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/agent-authz/repositories"
	"github.com/upb/agent-authz/services/policy"
	"github.com/upb/agent-authz/utils"
	"go.uber.org/zap"
)

// RuleResponse represents a compiled rule in API responses
type RuleResponse struct {
	ID      string `json:"id"`
	AgentID string `json:"agent_id,omitempty"`
	Action  string `json:"action,omitempty"`
	Effect  string `json:"effect"`
	Reason  string `json:"reason,omitempty"`
}

// ReloadResponse summarizes a policy reload
type ReloadResponse struct {
	Status          string `json:"status"`
	AllowRules      int    `json:"allow_rules"`
	DenyReasonRules int    `json:"deny_reason_rules"`
}

// RuleStore defines the engine surface the rule handler needs
type RuleStore interface {
	RuleSet() *policy.RuleSet
	Replace(rs *policy.RuleSet)
}

// RuleHandler handles rule inspection and reload HTTP requests
type RuleHandler struct {
	store    RuleStore
	source   repositories.RuleSource
	location *time.Location
	logger   *zap.Logger
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(store RuleStore, source repositories.RuleSource, location *time.Location, logger *zap.Logger) *RuleHandler {
	return &RuleHandler{
		store:    store,
		source:   source,
		location: location,
		logger:   logger,
	}
}

// HandleListRules handles GET /v1/rules
func (h *RuleHandler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	rs := h.store.RuleSet()

	rules := make([]RuleResponse, 0, rs.Len())
	for _, rule := range rs.AllowRules() {
		rules = append(rules, ruleToResponse(rule))
	}
	for _, rule := range rs.DenyReasonRules() {
		rules = append(rules, ruleToResponse(rule))
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// HandleReloadRules handles POST /v1/rules/reload. It recompiles the rule set
// from the configured source and swaps it in atomically; in-flight
// evaluations keep the set they started with.
func (h *RuleHandler) HandleReloadRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimiddleware.GetReqID(ctx)

	defs, err := h.source.LoadDefinitions(ctx)
	if err != nil {
		h.logger.Error("failed to load rule definitions",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to load rule definitions")
		return
	}

	rs, err := policy.Compile(defs, policy.CompileOptions{Location: h.location})
	if err != nil {
		h.logger.Error("rule definitions failed to compile",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Rule definitions failed to compile", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	h.store.Replace(rs)

	h.logger.Info("rule set reloaded",
		zap.String("request_id", requestID),
		zap.Int("allow_rules", len(rs.AllowRules())),
		zap.Int("deny_reason_rules", len(rs.DenyReasonRules())))

	_ = utils.WriteOK(w, ReloadResponse{
		Status:          "reloaded",
		AllowRules:      len(rs.AllowRules()),
		DenyReasonRules: len(rs.DenyReasonRules()),
	})
}

func ruleToResponse(rule *policy.Rule) RuleResponse {
	return RuleResponse{
		ID:      rule.ID,
		AgentID: rule.AgentID,
		Action:  rule.Action,
		Effect:  string(rule.Effect),
		Reason:  rule.Reason,
	}
}
