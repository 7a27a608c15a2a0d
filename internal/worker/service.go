package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/megano/internal/config"
	"github.com/megano/internal/logger"
	"github.com/megano/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	holdSweepInterval = time.Minute
	holdSweepBatch    = 100
)

// Service 异步队列服务；队列未启用时只运行本地扫描
type Service struct {
	name         string
	server       *asynq.Server
	scheduler    *asynq.Scheduler
	mux          *asynq.ServeMux
	consumer     *Consumer
	sweepSpec    string
	sweepEvery   time.Duration
	localSweeper bool
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	s := &Service{
		name:       "worker",
		consumer:   consumer,
		sweepEvery: holdSweepInterval,
	}
	if cfg == nil || !cfg.Enabled {
		logger.Warnw("worker_queue_disabled_local_sweeper")
		s.localSweeper = true
		return s, nil
	}

	opt, serverCfg := queue.BuildServerConfig(cfg)
	s.server = asynq.NewServer(opt, serverCfg)
	s.mux = asynq.NewServeMux()
	consumer.Register(s.mux)

	s.sweepSpec = strings.TrimSpace(cfg.DiscountSweepSpec)
	if s.sweepSpec == "" {
		s.sweepSpec = "@every 1m"
	}
	s.scheduler = asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := s.scheduler.Register(s.sweepSpec, queue.NewDiscountExpireTask(), asynq.Queue(queue.DefaultQueue)); err != nil {
		return nil, err
	}
	return s, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务，阻塞至 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("worker not initialized")
	}
	if s.server != nil {
		if err := s.server.Start(s.mux); err != nil {
			return err
		}
	}
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			return err
		}
		logger.Infow("worker_scheduler_started", "discount_sweep_spec", s.sweepSpec)
	}
	s.runSweepLoop(ctx)
	return nil
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	_ = ctx
	if s.scheduler != nil {
		s.scheduler.Shutdown()
	}
	if s.server != nil {
		s.server.Shutdown()
	}
	return nil
}

func (s *Service) runSweepLoop(ctx context.Context) {
	runOnce := func() {
		s.consumer.sweepHolds()
		if s.localSweeper {
			_ = s.consumer.handleDiscountExpire(ctx, nil)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
