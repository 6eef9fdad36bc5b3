package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	resjob "stockops-backend/internal/domains/reservation/job"
	stockjob "stockops-backend/internal/domains/stock/job"
	"stockops-backend/internal/infrastructure/queue"
	"stockops-backend/internal/shared"
	"stockops-backend/pkg/container"
	"stockops-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found", nil)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	if err := run(); err != nil {
		logger.Error("worker exited with error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	c, err := container.New(ctx)
	if err != nil {
		return err
	}
	defer c.Cleanup()

	server := asynq.NewServer(queue.RedisOpt(&c.Config.Redis), asynq.Config{
		Concurrency: 20,
		Queues: map[string]int{
			shared.QueueCritical: 6,
			shared.QueueDefault:  3,
			shared.QueueLow:      1,
		},
	})

	mux := asynq.NewServeMux()
	mux.Handle(shared.TypeReservationExpirySweep, resjob.NewExpirySweepHandler(c.ReservationService))
	mux.Handle(shared.TypeStockSnapshotSync, stockjob.NewSnapshotSyncHandler(
		c.StockService, c.Cache, c.Config.Stock.SnapshotTTL))

	scheduler := queue.NewScheduler(&c.Config.Redis)
	err = scheduler.Register(
		c.Config.Stock.ReservationSweepInterval,
		shared.TypeReservationExpirySweep,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(1),
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("worker starting", map[string]interface{}{"concurrency": 20})
		if err := server.Run(mux); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := scheduler.Run(); err != nil {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", map[string]interface{}{"signal": sig.String()})
	}

	scheduler.Shutdown()
	server.Shutdown()
	return nil
}
