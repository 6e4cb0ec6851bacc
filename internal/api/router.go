package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "hookstash/internal/api/context"
	"hookstash/internal/api/handlers"
	"hookstash/internal/api/middleware"
)

type Dependencies struct {
	AuthHandler    *handlers.AuthHandler
	WebhookHandler *handlers.WebhookHandler
	TaskHandler    *handlers.TaskHandler
	HealthHandler  *handlers.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/healthz", wrap(deps.HealthHandler.Check))

	// Login flow (entry point and provider callback share the path)
	router.GET("/accounts/login", wrap(deps.AuthHandler.Login))

	authMid := deps.AuthMiddleware
	rl := deps.RateLimiter

	// Webhook records
	router.POST("/api/v1/webhooks",
		chain(deps.WebhookHandler.Create, authMid.Handle, rl.Limit("api_write")))
	router.GET("/api/v1/webhooks",
		chain(deps.WebhookHandler.List, authMid.Handle, rl.Limit("api_read")))
	router.GET("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Get, authMid.Handle, rl.Limit("api_read")))
	router.DELETE("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Delete, authMid.Handle, rl.Limit("api_write")))
	router.POST("/api/v1/webhooks/:webhook_id/write",
		chain(deps.WebhookHandler.Write, authMid.Handle, rl.Limit("api_write")))

	// Task result polling
	router.GET("/api/v1/tasks/:task_id",
		chain(deps.TaskHandler.Get, authMid.Handle, rl.Limit("api_read")))

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
