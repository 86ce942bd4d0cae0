// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"yadawity-service/internal/config"
	authHandler "yadawity-service/internal/handlers/auth"
	"yadawity-service/internal/middleware"
	"yadawity-service/internal/pkg/ratelimit"
	"yadawity-service/internal/repository/postgres"
	authUsecase "yadawity-service/internal/service/auth"
	"yadawity-service/internal/service/email"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.Connect(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	codeRepo := postgres.NewAuthCodeRepository(pool)

	// ----- Attempt limiter & mailer -----
	limiter := ratelimit.NewAttemptLimiter(ratelimit.Window)
	mailer := email.NewSender(logger)

	// ----- Services -----
	authService := authUsecase.NewAuthService(
		userRepo,
		sessionRepo,
		codeRepo,
		limiter,
		mailer,
		logger,
	)

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService, logger)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:    authHandlerInst,
		AuthMiddleware: authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
