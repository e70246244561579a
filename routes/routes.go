package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/agent-authz/app"
	"github.com/upb/agent-authz/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	decisionHandler := handlers.NewDecisionHandler(deps.Engine, deps.Audit, deps.Logger)
	ruleHandler := handlers.NewRuleHandler(deps.Engine, deps.RuleSource, deps.Location, deps.Logger)
	credentialHandler := handlers.NewCredentialHandler(deps.Credentials, deps.Logger)
	tokenHandler := handlers.NewTokenHandler(deps.Tokens, deps.Logger)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Get("/status", handlers.StatusHandler(deps))
		r.Post("/tokens", tokenHandler.HandleIssueToken)

		// Decision evaluation (require agent authentication)
		r.Route("/decisions", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAgent)
			r.Post("/", decisionHandler.HandleEvaluate)
		})

		// Rule inspection and reload
		r.Route("/rules", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAgent)
			r.Get("/", ruleHandler.HandleListRules)
			r.Post("/reload", ruleHandler.HandleReloadRules)
		})

		// Dynamic credential leases
		r.Route("/credentials", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAgent)
			r.Post("/{role}", credentialHandler.HandleIssueCredentials)
			r.Delete("/{role}", credentialHandler.HandleRevokeCredentials)
		})

		// Protected resource routes: access is decided by the policy engine
		// from the authenticated agent, the HTTP verb, and the resource path.
		r.Route("/resources/{type}/{name}", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAgent)
			r.Use(deps.PolicyMiddleware.EnforceResourceAccess)
			r.Get("/", handlers.GetResourceHandler(deps))
			r.Post("/", handlers.MutateResourceHandler(deps))
			r.Put("/", handlers.MutateResourceHandler(deps))
			r.Patch("/", handlers.MutateResourceHandler(deps))
			r.Delete("/", handlers.MutateResourceHandler(deps))
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
