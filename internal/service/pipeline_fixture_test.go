package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/megano/internal/config"
	"github.com/megano/internal/constants"
	"github.com/megano/internal/models"
	"github.com/megano/internal/queue"
	"github.com/megano/internal/repository"
	"github.com/megano/internal/session"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type pipelineFixture struct {
	db          *gorm.DB
	catalog     *CatalogService
	cart        *CartService
	gate        *OrderGate
	checkout    *CheckoutService
	payment     *PaymentService
	reservation *ReservationService
	orders      *OrderQueryService
	notices     *stockRecorder

	category *models.Category
	regular  *models.DeliveryCategory
	express  *models.DeliveryCategory
	card     *models.PaymentCategory
	cash     *models.PaymentCategory
}

func setupPipeline(t *testing.T) *pipelineFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:checkout_pipeline_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	categoryRepo := repository.NewCategoryRepository(db)
	shopProductRepo := repository.NewShopProductRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	optionRepo := repository.NewCheckoutOptionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}

	f := &pipelineFixture{db: db}
	f.catalog = NewCatalogService(categoryRepo, shopProductRepo, discountRepo, time.Minute)
	f.notices = &stockRecorder{next: f.catalog}
	f.cart = NewCartService(f.catalog)
	f.gate = NewOrderGate(orderRepo)
	f.checkout = NewCheckoutService(f.gate, f.catalog, optionRepo, orderRepo, paymentRepo, shopProductRepo, queueClient, f.notices, config.CheckoutConfig{
		FreeDeliveryThreshold:   "2000",
		RegularDeliveryCodename: constants.DeliveryCodenameRegular,
		CardPaymentCodename:     constants.PaymentCodenameBankCard,
		ReservationHoldMinutes:  30,
	})
	f.payment = NewPaymentService(f.gate, ParityGateway{}, orderRepo, paymentRepo, shopProductRepo, f.notices, config.PaymentConfig{AccountLength: 9})
	f.reservation = NewReservationService(orderRepo, shopProductRepo, f.notices)
	f.orders = NewOrderQueryService(f.gate, orderRepo, f.reservation)

	f.category = &models.Category{Name: "Phones", Slug: "phones", IsActive: true}
	mustCreate(t, db, f.category)
	f.regular = &models.DeliveryCategory{Name: "Regular", Codename: constants.DeliveryCodenameRegular, Price: money(t, "200"), IsActive: true}
	f.express = &models.DeliveryCategory{Name: "Express", Codename: constants.DeliveryCodenameExpress, Price: money(t, "500"), IsActive: true}
	f.card = &models.PaymentCategory{Name: "Card", Codename: constants.PaymentCodenameBankCard, IsActive: true}
	f.cash = &models.PaymentCategory{Name: "Cash", Codename: constants.PaymentCodenameCash, IsActive: true}
	mustCreate(t, db, f.regular)
	mustCreate(t, db, f.express)
	mustCreate(t, db, f.card)
	mustCreate(t, db, f.cash)
	return f
}

// stockRecorder 记录库存变更通知并转发给目录服务
type stockRecorder struct {
	next  StockNotifier
	calls [][]uint
}

func (r *stockRecorder) StockChanged(ctx context.Context, ids []uint) {
	r.calls = append(r.calls, append([]uint(nil), ids...))
	if r.next != nil {
		r.next.StockChanged(ctx, ids)
	}
}

func (r *stockRecorder) reset() {
	r.calls = nil
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T failed: %v", value, err)
	}
}

func money(t *testing.T, raw string) models.Money {
	t.Helper()
	m, err := models.ParseMoney(raw)
	if err != nil {
		t.Fatalf("parse money %q failed: %v", raw, err)
	}
	return m
}

func (f *pipelineFixture) createBuyer(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "hash", Status: constants.UserStatusActive}
	mustCreate(t, f.db, user)
	return user
}

func (f *pipelineFixture) createShop(t *testing.T, name string) *models.Shop {
	t.Helper()
	shop := &models.Shop{Name: name, IsActive: true}
	mustCreate(t, f.db, shop)
	return shop
}

func (f *pipelineFixture) createItem(t *testing.T, shop *models.Shop, name, price string, available int) *models.ShopProduct {
	t.Helper()
	product := &models.Product{CategoryID: f.category.ID, Name: name}
	mustCreate(t, f.db, product)
	item := &models.ShopProduct{
		ProductID:      product.ID,
		ShopID:         shop.ID,
		Price:          money(t, price),
		AvailableCount: available,
		IsActive:       true,
	}
	mustCreate(t, f.db, item)
	return item
}

func (f *pipelineFixture) stock(t *testing.T, id uint) models.ShopProduct {
	t.Helper()
	var item models.ShopProduct
	if err := f.db.First(&item, id).Error; err != nil {
		t.Fatalf("reload stock failed: %v", err)
	}
	return item
}

func (f *pipelineFixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var total int64
	if err := f.db.Model(model).Count(&total).Error; err != nil {
		t.Fatalf("count %T failed: %v", model, err)
	}
	return total
}

func (f *pipelineFixture) fillCart(t *testing.T, state *session.State, item *models.ShopProduct, quantity int) {
	t.Helper()
	if _, err := f.cart.AddItem(state, item.ID, quantity, true); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
}

func orderInput(buyer *models.User, state *session.State, delivery *models.DeliveryCategory, payment *models.PaymentCategory) PlaceOrderInput {
	return PlaceOrderInput{
		BuyerID:            buyer.ID,
		State:              state,
		DeliveryCategoryID: delivery.ID,
		PaymentCategoryID:  payment.ID,
		Name:               "Ivan Petrov",
		Phone:              "+79990001122",
		Email:              buyer.Email,
		City:               "Moscow",
		Address:            "Tverskaya 1",
		Comment:            "call before delivery",
	}
}
