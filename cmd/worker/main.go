// Package main runs the standalone audit worker (queue drain + retention pruning).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/attendix/backend/config"
	"github.com/attendix/backend/internal/audit"
	"github.com/attendix/backend/internal/worker"
	"github.com/attendix/backend/pkg/database"
	"github.com/attendix/backend/pkg/queue"
	"github.com/attendix/backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	auditRepo := audit.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	writer := worker.NewAuditWriter(auditRepo, jobQueue, logger)
	pruner := worker.NewPruner(auditRepo,
		time.Duration(cfg.Audit.RetentionDays)*24*time.Hour,
		time.Duration(cfg.Audit.PruneIntervalHours)*time.Hour,
		logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go writer.Run(workerCtx)
	go pruner.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
