package middleware

import (
	"context"

	"github.com/upb/agent-authz/auth"
	"github.com/upb/agent-authz/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// claimsKey is the context key for validated agent claims
	claimsKey contextKey = "agent_claims"

	// decisionKey is the context key for the authorization decision
	decisionKey contextKey = "authz_decision"
)

// WithAgentClaims adds validated agent claims to the context
func WithAgentClaims(ctx context.Context, claims *auth.AgentClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetAgentClaimsFromContext retrieves validated agent claims from context
func GetAgentClaimsFromContext(ctx context.Context) *auth.AgentClaims {
	if val := ctx.Value(claimsKey); val != nil {
		if claims, ok := val.(*auth.AgentClaims); ok {
			return claims
		}
	}
	return nil
}

// WithDecision adds an authorization decision to the context
func WithDecision(ctx context.Context, dec models.Decision) context.Context {
	return context.WithValue(ctx, decisionKey, dec)
}

// GetDecisionFromContext retrieves the authorization decision from context
func GetDecisionFromContext(ctx context.Context) (models.Decision, bool) {
	if val := ctx.Value(decisionKey); val != nil {
		if dec, ok := val.(models.Decision); ok {
			return dec, true
		}
	}
	return models.Decision{}, false
}
