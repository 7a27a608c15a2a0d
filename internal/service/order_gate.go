package service

import (
	"github.com/megano/internal/constants"
	"github.com/megano/internal/models"
	"github.com/megano/internal/repository"
	"github.com/megano/internal/session"
)

// OrderGate 订单状态门禁：根据会话标记与持久化标记决定下一步能否执行
//
//	NO_CART -> CART_ACTIVE -> ORDER_PENDING -> ORDER_PAID
//	                              ^      |
//	                              +------+ 支付失败可重试
type OrderGate struct {
	orderRepo repository.OrderRepository
}

// NewOrderGate 创建门禁
func NewOrderGate(orderRepo repository.OrderRepository) *OrderGate {
	return &OrderGate{orderRepo: orderRepo}
}

// Stage 推导当前阶段
func (g *OrderGate) Stage(state *session.State) (string, error) {
	if orderID, ok := state.OrderID(); ok {
		order, err := g.orderRepo.GetByID(orderID)
		if err != nil {
			return "", err
		}
		if order != nil {
			if order.IsPaid {
				return constants.StageOrderPaid, nil
			}
			return constants.StageOrderPending, nil
		}
	}
	if state.CartNonEmpty() {
		return constants.StageCartActive, nil
	}
	return constants.StageNoCart, nil
}

// CanCheckout 下单前置条件：已登录且购物车非空
func (g *OrderGate) CanCheckout(buyerID uint, state *session.State) error {
	if buyerID == 0 || !state.CartNonEmpty() {
		return ErrForbidden
	}
	return nil
}

// CanPay 支付前置条件：已登录且会话持有订单令牌
func (g *OrderGate) CanPay(buyerID uint, state *session.State) (uint, error) {
	orderID, ok := state.OrderID()
	if buyerID == 0 || !ok {
		return 0, ErrForbidden
	}
	return orderID, nil
}

// CanViewProgress 支付进度页前置条件：已登录、持有订单令牌且购物车已交出
func (g *OrderGate) CanViewProgress(buyerID uint, state *session.State) (uint, error) {
	orderID, err := g.CanPay(buyerID, state)
	if err != nil {
		return 0, err
	}
	if state.HasCart() {
		return 0, ErrForbidden
	}
	return orderID, nil
}

// CanViewDetail 订单详情访问控制：本人且已提交付款账号，或员工
func (g *OrderGate) CanViewDetail(order *models.Order, buyerID uint, isStaff bool) error {
	if order == nil {
		return ErrOrderNotFound
	}
	if isStaff {
		return nil
	}
	if ownsOrder(order, buyerID) && order.Payment.HasAccount() {
		return nil
	}
	return ErrForbidden
}

func ownsOrder(order *models.Order, buyerID uint) bool {
	return order != nil && buyerID != 0 && order.BuyerID != nil && *order.BuyerID == buyerID
}
