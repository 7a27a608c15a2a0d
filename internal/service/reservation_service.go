package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/megano/internal/logger"
	"github.com/megano/internal/models"
	"github.com/megano/internal/repository"

	"gorm.io/gorm"
)

var errHoldReleaseMismatch = errors.New("reserved stock lower than order quantity")

// StockNotifier 库存台账事务提交后的通知，用于清理读穿缓存
type StockNotifier interface {
	StockChanged(ctx context.Context, shopProductIDs []uint)
}

func notifyStock(ctx context.Context, n StockNotifier, items []models.OrderItem) {
	if n == nil || len(items) == 0 {
		return
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ShopProductID)
	}
	n.StockChanged(ctx, ids)
}

// ReservationService 待支付订单的库存占用生命周期
type ReservationService struct {
	orderRepo       repository.OrderRepository
	shopProductRepo repository.ShopProductRepository
	stock           StockNotifier
	now             func() time.Time
}

// NewReservationService 创建库存占用服务
func NewReservationService(orderRepo repository.OrderRepository, shopProductRepo repository.ShopProductRepository, stock StockNotifier) *ReservationService {
	return &ReservationService{
		orderRepo:       orderRepo,
		shopProductRepo: shopProductRepo,
		stock:           stock,
		now:             time.Now,
	}
}

// reserveItems 在事务内逐行占用库存，返回因并发失去库存的行的缺货说明
func reserveItems(ledger repository.ShopProductRepository, items []models.OrderItem) ([]string, error) {
	var shortages []string
	for _, item := range items {
		affected, err := ledger.ReserveStock(item.ShopProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if affected > 0 {
			continue
		}
		current, err := ledger.GetByID(item.ShopProductID)
		if err != nil {
			return nil, err
		}
		available := 0
		if current != nil && current.IsActive {
			available = current.AvailableCount
		}
		shortages = append(shortages, shortageMessage(item.Name, available, item.Quantity))
	}
	return shortages, nil
}

// consumeItems 在事务内把订单数量计入已售；占用仍在时从占用扣，否则从可售扣
func consumeItems(ledger repository.ShopProductRepository, items []models.OrderItem, reserved bool) error {
	for _, item := range items {
		var affected int64
		var err error
		if reserved {
			affected, err = ledger.ConsumeReservedStock(item.ShopProductID, item.Quantity)
		} else {
			affected, err = ledger.ConsumeAvailableStock(item.ShopProductID, item.Quantity)
		}
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrSettlementOutOfStock
		}
	}
	return nil
}

// ReleaseHold 释放订单的库存占用，订单保持待支付；已支付或已释放时返回 false
func (s *ReservationService) ReleaseHold(orderID uint) (bool, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, ErrOrderNotFound
	}
	if !order.StockReserved || order.IsPaid {
		return false, nil
	}

	released := false
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		released, txErr = s.releaseInTx(tx, order)
		return txErr
	})
	if err != nil {
		return false, err
	}
	if released {
		notifyStock(context.Background(), s.stock, order.Items)
		logger.Infow("order_hold_released", "order_id", order.ID, "items", len(order.Items))
	}
	return released, nil
}

// releaseInTx 在给定事务内认领并释放订单占用的库存
func (s *ReservationService) releaseInTx(tx *gorm.DB, order *models.Order) (bool, error) {
	affected, err := s.orderRepo.WithTx(tx).MarkHoldReleased(order.ID)
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}
	ledger := s.shopProductRepo.WithTx(tx)
	for _, item := range order.Items {
		rows, err := ledger.ReleaseStock(item.ShopProductID, item.Quantity)
		if err != nil {
			return false, err
		}
		if rows == 0 {
			return false, fmt.Errorf("%w: order %d item %d", errHoldReleaseMismatch, order.ID, item.ShopProductID)
		}
	}
	return true, nil
}

// ReleaseIfExpired 读取订单时懒释放过期占用
func (s *ReservationService) ReleaseIfExpired(order *models.Order) error {
	if order == nil || !order.HoldExpired(s.now()) {
		return nil
	}
	released, err := s.ReleaseHold(order.ID)
	if err != nil {
		return err
	}
	if released {
		order.StockReserved = false
		order.HoldExpiresAt = nil
	}
	return nil
}

// ReleaseExpired 批量释放过期占用，返回释放的订单数
func (s *ReservationService) ReleaseExpired(limit int) (int, error) {
	orders, err := s.orderRepo.ListHoldExpired(s.now(), limit)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, order := range orders {
		released, err := s.ReleaseHold(order.ID)
		if err != nil {
			logger.Warnw("order_hold_release_failed", "order_id", order.ID, "error", err)
			continue
		}
		if released {
			count++
		}
	}
	return count, nil
}
