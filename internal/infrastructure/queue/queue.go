package queue

import (
	"fmt"

	"github.com/hibiken/asynq"

	"stockops-backend/internal/config"
)

func RedisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg *config.RedisConfig) *asynq.Client {
	return asynq.NewClient(RedisOpt(cfg))
}

// Scheduler registers cron-style recurring tasks.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(cfg *config.RedisConfig) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(RedisOpt(cfg), nil),
	}
}

func (s *Scheduler) Register(cronSpec, taskType string, opts ...asynq.Option) error {
	task := asynq.NewTask(taskType, nil)
	if _, err := s.scheduler.Register(cronSpec, task, opts...); err != nil {
		return fmt.Errorf("failed to register scheduled task %s: %w", taskType, err)
	}
	return nil
}

func (s *Scheduler) Run() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
