package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/upb/agent-authz/app"
	"github.com/upb/agent-authz/middleware"
	"github.com/upb/agent-authz/utils"
)

// ResourceResponse represents an authorized resource access in API responses.
// The routes behind the enforcement middleware carry no real resource data;
// they echo the granted access so integrations can verify enforcement
// end to end.
type ResourceResponse struct {
	ResourceType string   `json:"resource_type"`
	ResourceName string   `json:"resource_name"`
	Action       string   `json:"action"`
	AgentID      string   `json:"agent_id"`
	MatchedRules []string `json:"matched_rules,omitempty"`
}

// GetResourceHandler handles GET /v1/resources/{type}/{name}
func GetResourceHandler(deps *app.Dependencies) http.HandlerFunc {
	return resourceHandler(deps, "read")
}

// MutateResourceHandler handles write verbs on /v1/resources/{type}/{name}
func MutateResourceHandler(deps *app.Dependencies) http.HandlerFunc {
	return resourceHandler(deps, "")
}

func resourceHandler(deps *app.Dependencies, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims := middleware.GetAgentClaimsFromContext(ctx)
		dec, ok := middleware.GetDecisionFromContext(ctx)
		if claims == nil || !ok {
			// The enforcement middleware always runs first on these routes.
			_ = utils.WriteInternalServerError(w, "Missing enforcement context")
			return
		}

		resolved := action
		if resolved == "" {
			resolved = actionForWriteMethod(r.Method)
		}

		_ = utils.WriteOK(w, ResourceResponse{
			ResourceType: chi.URLParam(r, "type"),
			ResourceName: chi.URLParam(r, "name"),
			Action:       resolved,
			AgentID:      claims.AgentID,
			MatchedRules: dec.MatchedRules,
		})
	}
}

func actionForWriteMethod(method string) string {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	}
	return ""
}
