package main

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"hash402/internal/api"
	"hash402/internal/api/handlers"
	"hash402/internal/api/middleware"
	"hash402/internal/engine/keys"
	"hash402/internal/engine/session"
	"hash402/internal/pkg/logger"
	"hash402/internal/platform/audit"
	"hash402/internal/platform/auth"
	"hash402/internal/platform/config"
	"hash402/internal/platform/database"
	"hash402/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	keyRepo := repositories.NewAPIKeyRepository(db)
	webhookRepo := repositories.NewWebhookRepository(db)
	logRepo := repositories.NewRequestLogRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	keyIssuer := keys.NewService(keyRepo)
	sessionSvc := session.NewService(userRepo, accountRepo, tokenSvc)
	auditLog := audit.NewLogger(logRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(sessionSvc, userRepo)
	apiKeyHandler := handlers.NewAPIKeyHandler(keyIssuer, keyRepo)
	apiHandler := handlers.NewAPIHandler(cfg.Solana.ProgramID, logRepo, webhookRepo, auditLog)
	webhookHandler := handlers.NewWebhookHandler(webhookRepo)
	logsHandler := handlers.NewLogsHandler(logRepo)
	adminHandler := handlers.NewAdminHandler(logRepo)
	healthHandler := handlers.NewHealthHandler(db)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(keyRepo)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	router := api.NewRouter(&api.Dependencies{
		AuthHandler:    authHandler,
		APIKeyHandler:  apiKeyHandler,
		APIHandler:     apiHandler,
		WebhookHandler: webhookHandler,
		LogsHandler:    logsHandler,
		AdminHandler:   adminHandler,
		HealthHandler:  healthHandler,

		AuthMiddleware:   authMiddleware,
		APIKeyMiddleware: apiKeyMiddleware,
		RateLimiter:      rateLimiter,
	})

	handler := middleware.CORS(cfg.CORS)(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Info().Str("addr", addr).Msg("server starting")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
