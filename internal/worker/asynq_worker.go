package worker

import (
	"context"
	"errors"
	"time"

	"github.com/megano/internal/logger"
	"github.com/megano/internal/provider"
	"github.com/megano/internal/queue"
	"github.com/megano/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderHoldExpire, c.handleOrderHoldExpire)
	mux.HandleFunc(queue.TaskDiscountExpire, c.handleDiscountExpire)
}

func (c *Consumer) handleOrderHoldExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_hold_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderHoldExpirePayload(task)
	if err != nil {
		logger.Warnw("worker_order_hold_expire_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_hold_expire_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.ReservationService == nil {
		logger.Warnw("worker_order_hold_expire_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	released, err := c.ReservationService.ReleaseHold(payload.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("worker_order_hold_expire_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_hold_expire_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if !released {
		logger.Debugw("worker_order_hold_expire_skip_settled", "order_id", payload.OrderID)
	}
	return nil
}

func (c *Consumer) handleDiscountExpire(ctx context.Context, _ *asynq.Task) error {
	if c == nil || c.CatalogService == nil {
		logger.Debugw("worker_discount_expire_skip_nil", "consumer_nil", c == nil)
		return nil
	}
	count, err := c.CatalogService.DeactivateExpiredDiscounts(ctx, c.now())
	if err != nil {
		logger.Warnw("worker_discount_expire_failed", "error", err)
		return err
	}
	if count > 0 {
		logger.Infow("worker_discount_expire_done", "count", count)
	}
	return nil
}

// sweepHolds 兜底释放过期占用（延时任务丢失或队列未启用时）
func (c *Consumer) sweepHolds() {
	if c == nil || c.ReservationService == nil {
		return
	}
	count, err := c.ReservationService.ReleaseExpired(holdSweepBatch)
	if err != nil {
		logger.Warnw("worker_hold_sweep_failed", "error", err)
		return
	}
	if count > 0 {
		logger.Infow("worker_hold_sweep_released", "count", count)
	}
}
