package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/upb/agent-authz/app"
	"go.uber.org/zap"
)

// HealthCheck returns a simple health check handler
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// ReadinessCheck performs a more thorough readiness check
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		response := map[string]interface{}{
			"status": "ready",
			"checks": map[string]string{},
		}

		// Check database when the rule source is backed by one
		if deps.DB != nil {
			if err := deps.DB.HealthCheck(ctx); err != nil {
				response["status"] = "not_ready"
				response["checks"].(map[string]string)["database"] = "unhealthy"
				deps.Logger.Error("database health check failed", zap.Error(err))
			} else {
				response["checks"].(map[string]string)["database"] = "healthy"
			}
		}

		// Check the active rule set
		if deps.Engine.RuleSet().Len() == 0 {
			response["checks"].(map[string]string)["rules"] = "none_loaded"
		} else {
			response["checks"].(map[string]string)["rules"] = "loaded"
		}

		w.Header().Set("Content-Type", "application/json")
		if response["status"] == "ready" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}

// StatusHandler returns application status information
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := deps.Audit.Stats()

		response := map[string]interface{}{
			"version":       "0.1.0",
			"environment":   deps.Config.Environment,
			"policy_source": deps.Config.Policy.Source,
			"rules":         deps.Engine.RuleSet().Len(),
			"audit": map[string]interface{}{
				"pending": stats.PendingRecords,
				"dropped": stats.Dropped,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
