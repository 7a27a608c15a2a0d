package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/megano/internal/config"
	"github.com/megano/internal/constants"
	"github.com/megano/internal/logger"
	"github.com/megano/internal/models"
	"github.com/megano/internal/repository"
	"github.com/megano/internal/session"

	"gorm.io/gorm"
)

var errOrderAlreadyPaid = errors.New("order already marked paid")

// PaymentGateway 支付网关抽象
type PaymentGateway interface {
	Authorize(ctx context.Context, account string) (bool, error)
}

// ParityGateway 模拟网关：账号最后一位为偶数数字时通过
type ParityGateway struct{}

// Authorize 校验账号尾号奇偶
func (ParityGateway) Authorize(_ context.Context, account string) (bool, error) {
	last, size := utf8.DecodeLastRuneInString(account)
	if size == 0 || last < '0' || last > '9' {
		return false, nil
	}
	return (last-'0')%2 == 0, nil
}

// NewPaymentGateway 根据配置选择网关
func NewPaymentGateway(name string) PaymentGateway {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "parity":
		return ParityGateway{}
	default:
		logger.Warnw("payment_gateway_unknown_fallback_parity", "gateway", name)
		return ParityGateway{}
	}
}

// SubmitPaymentInput 提交支付输入
type SubmitPaymentInput struct {
	BuyerID uint
	State   *session.State
	Account string
}

// PaymentOutcome 支付结果
type PaymentOutcome struct {
	OrderID    uint         `json:"order_id"`
	Outcome    string       `json:"outcome"`
	Passed     bool         `json:"is_passed"`
	TotalPrice models.Money `json:"total_price"`
	NextStep   string       `json:"next"`
}

// PaymentProgress 支付进度视图
type PaymentProgress struct {
	OrderID    uint         `json:"order_id"`
	TotalPrice models.Money `json:"total_price"`
	IsPassed   bool         `json:"is_passed"`
}

// PaymentService 模拟支付
type PaymentService struct {
	gate            *OrderGate
	gateway         PaymentGateway
	orderRepo       repository.OrderRepository
	paymentRepo     repository.PaymentRepository
	shopProductRepo repository.ShopProductRepository
	stock           StockNotifier
	accountLength   int
	now             func() time.Time
}

// NewPaymentService 创建支付服务
func NewPaymentService(gate *OrderGate, gateway PaymentGateway, orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, shopProductRepo repository.ShopProductRepository, stock StockNotifier, cfg config.PaymentConfig) *PaymentService {
	length := cfg.AccountLength
	if length <= 0 {
		length = 9
	}
	if gateway == nil {
		gateway = ParityGateway{}
	}
	return &PaymentService{
		gate:            gate,
		gateway:         gateway,
		orderRepo:       orderRepo,
		paymentRepo:     paymentRepo,
		shopProductRepo: shopProductRepo,
		stock:           stock,
		accountLength:   length,
		now:             time.Now,
	}
}

// Submit 提交付款账号；进入此步骤即交出购物车，无论结果如何
func (s *PaymentService) Submit(ctx context.Context, input SubmitPaymentInput) (*PaymentOutcome, error) {
	orderID, err := s.gate.CanPay(input.BuyerID, input.State)
	if err != nil {
		return nil, err
	}
	input.State.ClearCart()

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !ownsOrder(order, input.BuyerID) {
		return nil, ErrForbidden
	}
	if order.IsCanceled {
		return nil, ErrOrderCanceled
	}

	// 按原始输入计长，不去除空白
	account := input.Account
	if utf8.RuneCountInString(account) != s.accountLength {
		logger.Infow("payment_invalid_account", "order_id", order.ID, "length", utf8.RuneCountInString(account))
		return nil, ErrInvalidPaymentInstrument
	}

	outcome := &PaymentOutcome{OrderID: order.ID, NextStep: constants.NextStepPaymentProgress}
	if order.Payment != nil {
		outcome.TotalPrice = order.Payment.TotalPrice
	}
	if order.IsPaid {
		outcome.Outcome = constants.PaymentOutcomeSettled
		outcome.Passed = true
		return outcome, nil
	}

	passed, err := s.gateway.Authorize(ctx, account)
	if err != nil {
		return nil, err
	}
	if !passed {
		if _, err := s.paymentRepo.RecordAccount(order.ID, account); err != nil {
			return nil, err
		}
		logger.Infow("payment_declined", "order_id", order.ID, "buyer_id", input.BuyerID)
		outcome.Outcome = constants.PaymentOutcomeDeclined
		return outcome, nil
	}

	settled, err := s.Settle(order.ID, account)
	if err != nil {
		logger.Warnw("payment_settlement_failed", "order_id", order.ID, "error", err)
		return nil, err
	}
	outcome.Passed = true
	outcome.Outcome = constants.PaymentOutcomePassed
	if !settled {
		outcome.Outcome = constants.PaymentOutcomeSettled
	}
	return outcome, nil
}

// Settle 结算订单：标记支付并把库存计入已售，整单在一个事务内完成
// 已结算的订单再次结算为空操作，返回 false
func (s *PaymentService) Settle(orderID uint, account string) (bool, error) {
	settled := false
	var items []models.OrderItem
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		passedRows, err := s.paymentRepo.WithTx(tx).MarkPassed(orderID, account, s.now())
		if err != nil {
			return err
		}
		if passedRows == 0 {
			return nil
		}
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		// 认领占用：与到期释放竞争同一行，只有一方能把 stock_reserved 置为 false
		claimed, err := orderRepo.MarkHoldReleased(orderID)
		if err != nil {
			return err
		}
		paidRows, err := orderRepo.MarkPaid(orderID)
		if err != nil {
			return err
		}
		if paidRows == 0 {
			current, err := orderRepo.GetByID(orderID)
			if err != nil {
				return err
			}
			if current != nil && current.IsCanceled {
				return ErrOrderCanceled
			}
			return errOrderAlreadyPaid
		}
		if err := consumeItems(s.shopProductRepo.WithTx(tx), order.Items, claimed > 0); err != nil {
			return err
		}
		items = order.Items
		settled = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if settled {
		notifyStock(context.Background(), s.stock, items)
		logger.Infow("payment_settled", "order_id", orderID)
	}
	return settled, nil
}

// Progress 支付进度视图
func (s *PaymentService) Progress(buyerID uint, state *session.State) (*PaymentProgress, error) {
	orderID, err := s.gate.CanViewProgress(buyerID, state)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !ownsOrder(order, buyerID) {
		return nil, ErrForbidden
	}
	progress := &PaymentProgress{OrderID: order.ID}
	if order.Payment != nil {
		progress.TotalPrice = order.Payment.TotalPrice
		progress.IsPassed = order.Payment.IsPassed
	}
	return progress, nil
}
