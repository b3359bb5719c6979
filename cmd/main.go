package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"push-notifications-relay/internal/client"
	"push-notifications-relay/internal/config"
	"push-notifications-relay/internal/controller"
	"push-notifications-relay/internal/db"
	httpserver "push-notifications-relay/internal/http"
	"push-notifications-relay/internal/metrics"
	"push-notifications-relay/internal/queue"
	"push-notifications-relay/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer rdb.Close()

	reportQueue := queue.NewRedisQueue(rdb, cfg.QueueKey)
	reportsClient := client.NewHTTPReportsClient(cfg.SubmitTimeout)
	reportJob := service.NewReportJob(reportsClient, cfg.OverrideHost, cfg.SubmitTimeout)

	worker := service.NewReportWorker(reportQueue, reportJob, cfg.WorkerCount, cfg.MaxAttempts, cfg.RetryBackoff)
	worker.Run(ctx)

	reportService := service.NewReportService(reportQueue)
	reportController := controller.NewReportController(reportService)

	server := httpserver.NewServer(reportController, rdb)

	go func() {
		logrus.Infof("starting server on %s", cfg.HTTPPort)
		if err := server.Listen(cfg.HTTPPort); err != nil {
			logrus.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("shutdown signal received")

	if err := server.Shutdown(); err != nil {
		logrus.Errorf("server shutdown: %v", err)
	}
	worker.Shutdown()
}
