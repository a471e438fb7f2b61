// Package main runs the attendance dashboard API server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/attendix/backend/config"
	"github.com/attendix/backend/internal/attendance"
	"github.com/attendix/backend/internal/audit"
	"github.com/attendix/backend/internal/auth"
	"github.com/attendix/backend/internal/middleware"
	"github.com/attendix/backend/internal/portal"
	"github.com/attendix/backend/internal/session"
	"github.com/attendix/backend/internal/worker"
	"github.com/attendix/backend/pkg/database"
	"github.com/attendix/backend/pkg/queue"
	"github.com/attendix/backend/pkg/redis"
	"github.com/attendix/backend/pkg/response"
	"github.com/attendix/backend/pkg/utils"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	sealer, err := utils.NewSealer(cfg.Session.SealKeyHex)
	if err != nil {
		logger.Fatal("session seal key", zap.Error(err))
	}

	jwtService := session.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	sessionStore := session.NewStore(rdb.Client, sealer, time.Duration(cfg.Session.TTLHours)*time.Hour, logger)
	portalClient := portal.NewClient(cfg.Portal.BaseURL, time.Duration(cfg.Portal.TimeoutSec)*time.Second, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authHandler := auth.NewHandler(portalClient, sessionStore, jwtService, jobQueue, cfg.Session, logger)

	// Attendance dashboard
	attendanceHandler := attendance.NewHandler(portalClient, sessionStore, jobQueue, cfg.Session, logger)

	// Login audit
	auditRepo := audit.NewRepository(pool)
	auditHandler := audit.NewHandler(auditRepo)
	auditWriter := worker.NewAuditWriter(auditRepo, jobQueue, logger)
	pruner := worker.NewPruner(auditRepo,
		time.Duration(cfg.Audit.RetentionDays)*24*time.Hour,
		time.Duration(cfg.Audit.PruneIntervalHours)*time.Hour,
		logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	router.POST("/auth/login", authHandler.Login)

	// Protected API (session required)
	api := router.Group("")
	api.Use(middleware.Session(jwtService, sessionStore, cfg.Session))
	{
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/me", authHandler.Me)
		api.GET("/auth/activity", auditHandler.GetActivity)

		api.GET("/attendance", attendanceHandler.GetDashboard)
		api.POST("/attendance/project", attendanceHandler.ProjectWhatIf)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background workers (audit queue drain + retention pruning)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go auditWriter.Run(workerCtx)
	go pruner.Run(workerCtx)
	logger.Info("audit worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
