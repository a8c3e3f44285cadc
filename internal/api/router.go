package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "hash402/internal/api/context"
	"hash402/internal/api/handlers"
	"hash402/internal/api/middleware"
)

type Dependencies struct {
	AuthHandler    *handlers.AuthHandler
	APIKeyHandler  *handlers.APIKeyHandler
	APIHandler     *handlers.APIHandler
	WebhookHandler *handlers.WebhookHandler
	LogsHandler    *handlers.LogsHandler
	AdminHandler   *handlers.AdminHandler
	HealthHandler  *handlers.HealthHandler

	AuthMiddleware   *middleware.AuthMiddleware
	APIKeyMiddleware *middleware.APIKeyMiddleware
	RateLimiter      *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Session issuance (public)
	router.POST("/auth/wallet", wrap(deps.AuthHandler.WalletLogin))
	router.POST("/auth/login", wrap(deps.AuthHandler.Login))
	router.GET("/auth/me", chain(deps.AuthHandler.Me, deps.AuthMiddleware.Handle))

	// API key lifecycle (session-token protected, org-scoped)
	authMid := deps.AuthMiddleware
	router.GET("/apikeys", chain(deps.APIKeyHandler.List, authMid.Handle))
	router.POST("/apikeys", chain(deps.APIKeyHandler.Create, authMid.Handle))
	router.POST("/apikeys/:key_id/rotate", chain(deps.APIKeyHandler.Rotate, authMid.Handle))
	router.POST("/apikeys/:key_id/revoke", chain(deps.APIKeyHandler.Revoke, authMid.Handle))

	// Key-authorized API surface: authenticate, authorize scope, then
	// rate limit, so quota headers reflect the resolved credential.
	keyMid := deps.APIKeyMiddleware
	limiter := deps.RateLimiter
	router.POST("/api/validate",
		chain(deps.APIHandler.Validate, keyMid.Handle, middleware.RequireScope("write"), limiter.Handle))
	router.POST("/api/attest",
		chain(deps.APIHandler.Attest, keyMid.Handle, middleware.RequireScope("attest"), limiter.Handle))
	router.GET("/api/anchor/status",
		chain(deps.APIHandler.AnchorStatus, keyMid.Handle, middleware.RequireScope("read"), limiter.Handle))
	router.POST("/api/batch/commit",
		chain(deps.APIHandler.BatchCommit, keyMid.Handle, middleware.RequireScope("write"), limiter.Handle))
	router.POST("/api/webhooks/test",
		chain(deps.APIHandler.WebhookTest, keyMid.Handle, middleware.RequireScope("admin"), limiter.Handle))

	// Webhook endpoint management
	router.GET("/webhooks", chain(deps.WebhookHandler.List, authMid.Handle))
	router.POST("/webhooks", chain(deps.WebhookHandler.Create, authMid.Handle))
	router.DELETE("/webhooks/:webhook_id", chain(deps.WebhookHandler.Delete, authMid.Handle))

	// Request logs and metrics
	router.GET("/logs", chain(deps.LogsHandler.List, authMid.Handle))
	router.GET("/admin/metrics", chain(deps.AdminHandler.Metrics, authMid.Handle))

	router.GET("/health", wrap(deps.HealthHandler.Check))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
