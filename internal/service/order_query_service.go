package service

import (
	"context"

	"github.com/megano/internal/logger"
	"github.com/megano/internal/models"
	"github.com/megano/internal/repository"
	"github.com/megano/internal/session"

	"gorm.io/gorm"
)

// OrderQueryService 订单查询与员工侧订单操作
type OrderQueryService struct {
	gate        *OrderGate
	orderRepo   repository.OrderRepository
	reservation *ReservationService
}

// NewOrderQueryService 创建订单查询服务
func NewOrderQueryService(gate *OrderGate, orderRepo repository.OrderRepository, reservation *ReservationService) *OrderQueryService {
	return &OrderQueryService{gate: gate, orderRepo: orderRepo, reservation: reservation}
}

// DetailInput 订单详情查询输入
type DetailInput struct {
	OrderID uint
	BuyerID uint
	IsStaff bool
	State   *session.State
}

// Detail 订单详情；结算完成后才从会话中移除订单令牌
func (s *OrderQueryService) Detail(input DetailInput) (*models.Order, error) {
	order, err := s.load(input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanViewDetail(order, input.BuyerID, input.IsStaff); err != nil {
		return nil, err
	}
	if input.State != nil && ownsOrder(order, input.BuyerID) {
		if order.Payment != nil && order.Payment.IsPassed {
			input.State.ClearOrder()
		} else {
			input.State.SetOrder(order.ID)
		}
	}
	return order, nil
}

// GetForStaff 员工查看订单
func (s *OrderQueryService) GetForStaff(orderID uint) (*models.Order, error) {
	return s.load(orderID)
}

// ListByBuyer 买家历史订单
func (s *OrderQueryService) ListByBuyer(buyerID uint, page, pageSize int) ([]models.Order, int64, error) {
	if buyerID == 0 {
		return nil, 0, ErrForbidden
	}
	return s.orderRepo.ListByBuyer(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		BuyerID:  buyerID,
	})
}

// ListAdmin 员工订单列表
func (s *OrderQueryService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// Confirm 员工确认订单
func (s *OrderQueryService) Confirm(orderID uint) (*models.Order, error) {
	order, err := s.load(orderID)
	if err != nil {
		return nil, err
	}
	if order.IsCanceled {
		return nil, ErrOrderCanceled
	}
	if _, err := s.orderRepo.MarkConfirmed(orderID); err != nil {
		return nil, err
	}
	order.IsConfirmed = true
	return order, nil
}

// Cancel 员工取消未支付订单并释放占用
func (s *OrderQueryService) Cancel(orderID uint) (*models.Order, error) {
	order, err := s.load(orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, ErrForbidden
	}
	released := false
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.reservation.releaseInTx(tx, order)
		if err != nil {
			return err
		}
		released = ok
		_, err = s.orderRepo.WithTx(tx).MarkCanceled(orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if released {
		notifyStock(context.Background(), s.reservation.stock, order.Items)
	}
	logger.Infow("order_canceled", "order_id", orderID)
	return s.load(orderID)
}

// Delete 删除订单，级联删除订单项与支付记录，未支付订单的占用先释放
func (s *OrderQueryService) Delete(orderID uint) error {
	order, err := s.load(orderID)
	if err != nil {
		return err
	}
	released := false
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.reservation.releaseInTx(tx, order)
		if err != nil {
			return err
		}
		released = ok
		return s.orderRepo.WithTx(tx).Delete(orderID)
	})
	if err != nil {
		return err
	}
	if released {
		notifyStock(context.Background(), s.reservation.stock, order.Items)
	}
	logger.Infow("order_deleted", "order_id", orderID, "was_paid", order.IsPaid)
	return nil
}

// load 读取订单，过期占用在读时释放
func (s *OrderQueryService) load(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if s.reservation != nil {
		if err := s.reservation.ReleaseIfExpired(order); err != nil {
			logger.Warnw("order_lazy_hold_release_failed", "order_id", orderID, "error", err)
		}
	}
	return order, nil
}
