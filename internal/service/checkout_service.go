package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/megano/internal/config"
	"github.com/megano/internal/constants"
	"github.com/megano/internal/logger"
	"github.com/megano/internal/models"
	"github.com/megano/internal/queue"
	"github.com/megano/internal/repository"
	"github.com/megano/internal/session"

	"gorm.io/gorm"
)

// CheckoutService 结账编排：购物车转订单
type CheckoutService struct {
	gate            *OrderGate
	catalog         CatalogLookup
	optionRepo      repository.CheckoutOptionRepository
	orderRepo       repository.OrderRepository
	paymentRepo     repository.PaymentRepository
	shopProductRepo repository.ShopProductRepository
	queueClient     *queue.Client
	stock           StockNotifier
	cfg             config.CheckoutConfig
	now             func() time.Time
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(gate *OrderGate, catalog CatalogLookup, optionRepo repository.CheckoutOptionRepository, orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, shopProductRepo repository.ShopProductRepository, queueClient *queue.Client, stock StockNotifier, cfg config.CheckoutConfig) *CheckoutService {
	return &CheckoutService{
		gate:            gate,
		catalog:         catalog,
		optionRepo:      optionRepo,
		orderRepo:       orderRepo,
		paymentRepo:     paymentRepo,
		shopProductRepo: shopProductRepo,
		queueClient:     queueClient,
		stock:           stock,
		cfg:             cfg,
		now:             time.Now,
	}
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	BuyerID            uint
	State              *session.State
	DeliveryCategoryID uint
	PaymentCategoryID  uint
	Name               string
	Phone              string
	Email              string
	City               string
	Address            string
	Comment            string
}

// SummaryItem 订单摘要行
type SummaryItem struct {
	ItemID        uint         `json:"item_id"`
	Name          string       `json:"name"`
	Quantity      int          `json:"quantity"`
	PriceSnapshot models.Money `json:"price_snapshot"`
	LineTotal     models.Money `json:"line_total"`
}

// OrderSummary 订单摘要视图
type OrderSummary struct {
	Items          []SummaryItem `json:"items"`
	CartTotal      models.Money  `json:"cart_total"`
	TotalPrice     models.Money  `json:"total_price"`
	IsFreeDelivery bool          `json:"is_free_delivery"`
	DeliveryFee    models.Money  `json:"delivery_fee"`
	NotEnoughGoods []string      `json:"not_enough_goods,omitempty"`
}

// CheckoutResult 下单结果
type CheckoutResult struct {
	Order    *models.Order `json:"order"`
	Summary  *OrderSummary `json:"summary"`
	NextStep string        `json:"next"`
}

// DeliveryInfo 配送方式元数据
type DeliveryInfo struct {
	Title    string       `json:"title"`
	Price    models.Money `json:"price"`
	Codename string       `json:"codename"`
}

// CheckoutOptions 可选配送与支付方式
type CheckoutOptions struct {
	Delivery []models.DeliveryCategory `json:"delivery"`
	Payment  []models.PaymentCategory  `json:"payment"`
}

type checkoutPlan struct {
	summary   OrderSummary
	items     []models.OrderItem
	shortages []string
}

// PlaceOrder 校验库存、计算运费、在单个事务内占用库存并落库订单
func (s *CheckoutService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*CheckoutResult, error) {
	if err := s.gate.CanCheckout(input.BuyerID, input.State); err != nil {
		return nil, err
	}
	contact, err := normalizeContact(input)
	if err != nil {
		return nil, err
	}
	delivery, err := s.resolveDelivery(input.DeliveryCategoryID)
	if err != nil {
		return nil, err
	}
	payment, err := s.optionRepo.GetActivePaymentCategory(input.PaymentCategoryID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentCategoryNotFound
	}

	plan, err := s.buildPlan(input.State, delivery)
	if err != nil {
		return nil, err
	}
	if len(plan.shortages) > 0 {
		return nil, &OutOfStockError{Messages: plan.shortages}
	}

	holdExpiresAt := s.now().UTC().Add(s.cfg.HoldDuration())
	buyerID := input.BuyerID
	order := &models.Order{
		BuyerID:            &buyerID,
		DeliveryCategoryID: delivery.ID,
		Name:               contact.Name,
		Phone:              contact.Phone,
		Email:              contact.Email,
		City:               contact.City,
		Address:            contact.Address,
		Comment:            contact.Comment,
		IsFreeDelivery:     plan.summary.IsFreeDelivery,
		DeliveryPrice:      plan.summary.DeliveryFee,
		StockReserved:      true,
		HoldExpiresAt:      &holdExpiresAt,
	}
	paymentItem := &models.PaymentItem{
		PaymentCategoryID: payment.ID,
		TotalPrice:        plan.summary.TotalPrice,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, plan.items); err != nil {
			return err
		}
		shortages, err := reserveItems(s.shopProductRepo.WithTx(tx), plan.items)
		if err != nil {
			return err
		}
		if len(shortages) > 0 {
			return &OutOfStockError{Messages: shortages}
		}
		paymentItem.OrderID = order.ID
		return s.paymentRepo.WithTx(tx).Create(paymentItem)
	})
	if err != nil {
		if errors.Is(err, ErrOutOfStock) {
			logger.Infow("checkout_stock_lost_to_concurrent_order", "buyer_id", input.BuyerID, "error", err)
			return nil, err
		}
		return nil, fmt.Errorf("place order: %w", err)
	}
	notifyStock(ctx, s.stock, plan.items)
	order.Payment = paymentItem
	order.DeliveryCategory = delivery

	input.State.SetOrder(order.ID)

	if err := s.queueClient.EnqueueOrderHoldExpire(queue.OrderHoldExpirePayload{OrderID: order.ID}, s.cfg.HoldDuration()); err != nil {
		logger.Warnw("order_enqueue_hold_expire_failed",
			"order_id", order.ID,
			"error", err,
		)
	}
	logger.Infow("checkout_order_placed",
		"order_id", order.ID,
		"buyer_id", input.BuyerID,
		"items", len(plan.items),
		"total_price", paymentItem.TotalPrice.String(),
	)

	next := constants.NextStepHome
	if payment.Codename == s.cfg.CardPaymentCodename {
		next = constants.NextStepPayment
	}
	summary := plan.summary
	return &CheckoutResult{Order: order, Summary: &summary, NextStep: next}, nil
}

// PreviewCheckout 计算订单摘要，不落库
func (s *CheckoutService) PreviewCheckout(buyerID uint, state *session.State, deliveryCategoryID uint) (*OrderSummary, error) {
	if err := s.gate.CanCheckout(buyerID, state); err != nil {
		return nil, err
	}
	var delivery *models.DeliveryCategory
	if deliveryCategoryID != 0 {
		resolved, err := s.resolveDelivery(deliveryCategoryID)
		if err != nil {
			return nil, err
		}
		delivery = resolved
	}
	plan, err := s.buildPlan(state, delivery)
	if err != nil {
		return nil, err
	}
	summary := plan.summary
	summary.NotEnoughGoods = plan.shortages
	return &summary, nil
}

// DeliveryInfo 配送方式元数据
func (s *CheckoutService) DeliveryInfo(deliveryCategoryID uint) (*DeliveryInfo, error) {
	delivery, err := s.optionRepo.GetDeliveryCategory(deliveryCategoryID)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, ErrDeliveryCategoryNotFound
	}
	return &DeliveryInfo{Title: delivery.Name, Price: delivery.Price, Codename: delivery.Codename}, nil
}

// Options 可选的配送与支付方式
func (s *CheckoutService) Options() (*CheckoutOptions, error) {
	delivery, err := s.optionRepo.ListActiveDeliveryCategories()
	if err != nil {
		return nil, err
	}
	payment, err := s.optionRepo.ListActivePaymentCategories()
	if err != nil {
		return nil, err
	}
	return &CheckoutOptions{Delivery: delivery, Payment: payment}, nil
}

func (s *CheckoutService) resolveDelivery(id uint) (*models.DeliveryCategory, error) {
	delivery, err := s.optionRepo.GetDeliveryCategory(id)
	if err != nil {
		return nil, err
	}
	if delivery == nil || !delivery.IsActive {
		return nil, ErrDeliveryCategoryNotFound
	}
	return delivery, nil
}

// buildPlan 按实时库存校验每一行，delivery 为空时不计运费
func (s *CheckoutService) buildPlan(state *session.State, delivery *models.DeliveryCategory) (*checkoutPlan, error) {
	keys := state.CartKeys()
	ids := make([]uint, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, parseCartKey(key))
	}
	live, err := s.catalog.LookupActiveItems(ids)
	if err != nil {
		return nil, err
	}

	plan := &checkoutPlan{summary: OrderSummary{Items: make([]SummaryItem, 0, len(keys))}}
	cartTotal := models.Money{}
	shops := make(map[uint]struct{})
	for i, key := range keys {
		line := state.Cart[key]
		price := snapshotPrice(line)
		lineTotal := price.Times(line.Quantity)
		cartTotal = cartTotal.Plus(lineTotal)

		item, ok := live[ids[i]]
		if !ok {
			plan.shortages = append(plan.shortages, fmt.Sprintf("%d: not available", ids[i]))
			continue
		}
		shops[item.ShopID] = struct{}{}
		if line.Quantity > item.AvailableCount {
			plan.shortages = append(plan.shortages, shortageMessage(item.Name, item.AvailableCount, line.Quantity))
			continue
		}
		plan.items = append(plan.items, models.OrderItem{
			ShopProductID:    item.ID,
			Name:             item.Name,
			PriceOnAddMoment: price,
			Quantity:         line.Quantity,
		})
		plan.summary.Items = append(plan.summary.Items, SummaryItem{
			ItemID:        item.ID,
			Name:          item.Name,
			Quantity:      line.Quantity,
			PriceSnapshot: price,
			LineTotal:     lineTotal,
		})
	}

	eligible := len(shops) == 1 && cartTotal.GreaterThanOrEqual(s.cfg.Threshold())
	plan.summary.CartTotal = cartTotal
	plan.summary.TotalPrice = cartTotal
	plan.summary.DeliveryFee = models.Money{}
	if delivery != nil {
		if eligible && delivery.Codename == s.cfg.RegularDeliveryCodename {
			plan.summary.IsFreeDelivery = true
		} else {
			plan.summary.DeliveryFee = delivery.Price
			plan.summary.TotalPrice = cartTotal.Plus(delivery.Price)
		}
	}
	return plan, nil
}

func shortageMessage(name string, available, quantity int) string {
	return fmt.Sprintf("%s: in stock - %d, in cart - %d", name, available, quantity)
}

func normalizeContact(input PlaceOrderInput) (PlaceOrderInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.City = strings.TrimSpace(input.City)
	input.Address = strings.TrimSpace(input.Address)
	input.Comment = strings.TrimSpace(input.Comment)
	if input.Name == "" || input.Phone == "" || input.City == "" || input.Address == "" {
		return input, fmt.Errorf("%w: contact fields required", ErrInvalidInput)
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return input, err
	}
	input.Email = email
	return input, nil
}
