// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/basharmd94/orderapp-sub000/internal/config"
	"github.com/basharmd94/orderapp-sub000/internal/db"
	authHandler "github.com/basharmd94/orderapp-sub000/internal/handlers/auth"
	orderHandler "github.com/basharmd94/orderapp-sub000/internal/handlers/order"
	rbacHandler "github.com/basharmd94/orderapp-sub000/internal/handlers/rbac"
	userHandler "github.com/basharmd94/orderapp-sub000/internal/handlers/user"
	wsHandler "github.com/basharmd94/orderapp-sub000/internal/handlers/websocket"
	"github.com/basharmd94/orderapp-sub000/internal/middleware"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/jwt"
	"github.com/basharmd94/orderapp-sub000/internal/repository/postgres"
	authService "github.com/basharmd94/orderapp-sub000/internal/service/auth"
	orderService "github.com/basharmd94/orderapp-sub000/internal/service/order"
	rbacService "github.com/basharmd94/orderapp-sub000/internal/service/rbac"
	userService "github.com/basharmd94/orderapp-sub000/internal/service/user"
	"github.com/basharmd94/orderapp-sub000/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	cancel context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if s.cfg.JWT.Secret == "" {
		return fmt.Errorf("SECRET_KEY must be set")
	}

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		// The blacklist degrades to database-only lookups without redis.
		logger.Warn("redis unavailable, blacklist cache disabled", zap.Error(err))
		redisClient = nil
	}

	// ----- JWT Manager -----
	jwtManager := jwt.NewManager(s.cfg.JWT)

	// ----- Repositories -----
	identityRepo := postgres.NewIdentityRepository(pool)
	attemptRepo := postgres.NewLoginAttemptRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	blacklistRepo := postgres.NewBlacklistRepository(pool)
	rbacRepo := postgres.NewRBACRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// ----- Services -----
	blacklist := authService.NewBlacklist(blacklistRepo, redisClient, s.cfg.JWT.RefreshTTL, logger)

	authSvc := authService.NewService(
		identityRepo,
		attemptRepo,
		sessionRepo,
		blacklist,
		jwtManager,
		hub,
		logger,
		s.cfg.MaxLoginAttempts,
		s.cfg.LockoutWindow,
	)
	rbacSvc := rbacService.NewService(rbacRepo, logger)
	userSvc := userService.NewService(identityRepo, authSvc, s.cfg.AdminRegistrationCode, logger)
	orderSvc := orderService.NewService(orderRepo, s.cfg.MaxBulkConcurrency, logger)

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authSvc, logger)
	userHandlerInst := userHandler.NewUserHandler(userSvc, logger)
	orderHandlerInst := orderHandler.NewOrderHandler(orderSvc, logger)
	rbacHandlerInst := rbacHandler.NewRBACHandler(rbacSvc, logger)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authSvc, rbacSvc)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:    authHandlerInst,
		UserHandler:    userHandlerInst,
		OrderHandler:   orderHandlerInst,
		RBACHandler:    rbacHandlerInst,
		WSHandler:      wsHandlerInst,
		AuthMiddleware: authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown stops background loops (hub, blacklist purge).
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}
