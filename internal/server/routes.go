package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aliados/internal/auth"
	"aliados/internal/engine"
	"aliados/internal/handlers"
	"aliados/internal/handlers/api"
	"aliados/internal/middleware"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	Engine   *engine.Engine
	Auth     *auth.Authenticator
	Logins   handlers.LoginRecorder
	Gatherer prometheus.Gatherer
	Database handlers.Pinger // nil without DATABASE_URL
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, deps Deps) error {
	ids := middleware.NewSessionIdentityStore()

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(ids, deps.Auth, s.Cfg.IsMTLSEnabled(), s.log)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(deps.Engine, deps.Auth, ids, deps.Logins, s.Cfg, s.log)
	assistantHandler := api.NewAssistantHandler(deps.Engine)

	checks := map[string]handlers.Pinger{}
	if deps.Database != nil {
		checks["database"] = deps.Database
	}
	if s.Sessions != nil {
		checks["sessions"] = storagePinger{storage: s.Sessions}
	}
	healthHandler := handlers.NewHealthHandler(deps.Engine, checks)

	// Operational routes
	s.App.Get("/healthz", healthHandler.Healthz)
	if deps.Gatherer != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Single sign-on routes, only if OIDC is configured
	if s.Cfg.OIDCEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, deps.Auth, ids, deps.Logins, s.log)
		if err != nil {
			s.log.Warn("OIDC authentication is disabled", map[string]interface{}{"error": err.Error()})
		} else {
			s.App.Get("/auth/login", authHandler.Login)
			s.App.Get("/auth/callback", authHandler.Callback)
			s.App.Get("/auth/logout", authHandler.Logout)
		}
	}

	// Chat routes
	s.App.Get("/", authMiddleware.LoadIdentity, chatHandler.Index)
	s.App.Post("/chat", authMiddleware.LoadIdentity, chatHandler.Chat)
	s.App.Post("/logout", chatHandler.Logout)

	// JSON API
	v1 := s.App.Group("/api/v1", authMiddleware.LoadIdentity, authMiddleware.RequireIdentity)
	v1.Post("/ask", assistantHandler.Ask)
	v1.Get("/stats", assistantHandler.Stats)
	v1.Get("/partners", authMiddleware.RequireAdmin, assistantHandler.Partners)

	return nil
}
