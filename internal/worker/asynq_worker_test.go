package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/megano/internal/config"
	"github.com/megano/internal/constants"
	"github.com/megano/internal/models"
	"github.com/megano/internal/provider"
	"github.com/megano/internal/queue"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupConsumer(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	cfg := config.Defaults()
	cfg.Redis.Enabled = false
	cfg.Queue.Enabled = false
	return NewConsumer(provider.NewContainer(cfg)), db
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T failed: %v", value, err)
	}
}

func createStock(t *testing.T, db *gorm.DB, available, reserved int) *models.ShopProduct {
	t.Helper()
	shop := &models.Shop{Name: "Shop A", IsActive: true}
	mustCreate(t, db, shop)
	category := &models.Category{Name: "Phones", Slug: fmt.Sprintf("phones-%d", time.Now().UnixNano()), IsActive: true}
	mustCreate(t, db, category)
	product := &models.Product{CategoryID: category.ID, Name: "Phone X"}
	mustCreate(t, db, product)
	price, err := models.ParseMoney("150.00")
	if err != nil {
		t.Fatalf("parse money failed: %v", err)
	}
	item := &models.ShopProduct{
		ProductID:      product.ID,
		ShopID:         shop.ID,
		Price:          price,
		AvailableCount: available,
		ReservedCount:  reserved,
		IsActive:       true,
	}
	mustCreate(t, db, item)
	return item
}

func createHeldOrder(t *testing.T, db *gorm.DB, item *models.ShopProduct, quantity int, expiresAt time.Time) *models.Order {
	t.Helper()
	delivery := &models.DeliveryCategory{Name: "Regular", Codename: constants.DeliveryCodenameRegular, IsActive: true}
	if err := db.Where("codename = ?", delivery.Codename).FirstOrCreate(delivery).Error; err != nil {
		t.Fatalf("ensure delivery category failed: %v", err)
	}
	expiresAt = expiresAt.UTC()
	order := &models.Order{
		DeliveryCategoryID: delivery.ID,
		Name:               "Ivan",
		Phone:              "+70000000000",
		Email:              "ivan@example.com",
		City:               "Moscow",
		Address:            "Tverskaya 1",
		StockReserved:      true,
		HoldExpiresAt:      &expiresAt,
		Items: []models.OrderItem{
			{ShopProductID: item.ID, Name: "Phone X", PriceOnAddMoment: item.Price, Quantity: quantity},
		},
	}
	mustCreate(t, db, order)
	return order
}

func reloadStock(t *testing.T, db *gorm.DB, id uint) models.ShopProduct {
	t.Helper()
	var row models.ShopProduct
	if err := db.First(&row, id).Error; err != nil {
		t.Fatalf("reload stock failed: %v", err)
	}
	return row
}

func TestHandleOrderHoldExpireReleasesStock(t *testing.T) {
	consumer, db := setupConsumer(t)
	item := createStock(t, db, 3, 2)
	order := createHeldOrder(t, db, item, 2, time.Now().Add(-time.Minute))

	task, err := queue.NewOrderHoldExpireTask(queue.OrderHoldExpirePayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderHoldExpire(context.Background(), task); err != nil {
		t.Fatalf("handle hold expire failed: %v", err)
	}

	stock := reloadStock(t, db, item.ID)
	if stock.AvailableCount != 5 || stock.ReservedCount != 0 {
		t.Fatalf("hold should return to available: available=%d reserved=%d", stock.AvailableCount, stock.ReservedCount)
	}
	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.StockReserved || reloaded.IsPaid || reloaded.IsCanceled {
		t.Fatalf("released order must stay pending without hold: %+v", reloaded)
	}

	// 重复投递不得重复归还库存
	if err := consumer.handleOrderHoldExpire(context.Background(), task); err != nil {
		t.Fatalf("redelivered task failed: %v", err)
	}
	if again := reloadStock(t, db, item.ID); again.AvailableCount != 5 || again.ReservedCount != 0 {
		t.Fatalf("redelivery must be a no-op: available=%d reserved=%d", again.AvailableCount, again.ReservedCount)
	}
}

func TestHandleOrderHoldExpireSkipsInvalidPayload(t *testing.T) {
	consumer, _ := setupConsumer(t)

	empty, err := queue.NewOrderHoldExpireTask(queue.OrderHoldExpirePayload{})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderHoldExpire(context.Background(), empty); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}

	missing, err := queue.NewOrderHoldExpireTask(queue.OrderHoldExpirePayload{OrderID: 404})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderHoldExpire(context.Background(), missing); err != nil {
		t.Fatalf("missing order should be skipped, got %v", err)
	}
}

func TestSweepHoldsReleasesOnlyExpired(t *testing.T) {
	consumer, db := setupConsumer(t)
	item := createStock(t, db, 0, 3)
	createHeldOrder(t, db, item, 1, time.Now().Add(-time.Minute))
	live := createHeldOrder(t, db, item, 2, time.Now().Add(time.Hour))

	consumer.sweepHolds()

	stock := reloadStock(t, db, item.ID)
	if stock.AvailableCount != 1 || stock.ReservedCount != 2 {
		t.Fatalf("only the expired hold should be released: available=%d reserved=%d", stock.AvailableCount, stock.ReservedCount)
	}
	var reloaded models.Order
	if err := db.First(&reloaded, live.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !reloaded.StockReserved {
		t.Fatalf("live hold must be kept")
	}
}

func TestHandleDiscountExpire(t *testing.T) {
	consumer, db := setupConsumer(t)
	item := createStock(t, db, 3, 0)
	now := time.Now().UTC()
	consumer.now = func() time.Time { return now }

	discount := &models.Discount{Name: "Spring", Percent: 10, DateStart: now.Add(-48 * time.Hour), DateEnd: now.Add(-time.Hour), IsActive: true}
	mustCreate(t, db, discount)
	if err := db.Model(item).Update("discount_id", discount.ID).Error; err != nil {
		t.Fatalf("attach discount failed: %v", err)
	}

	if err := consumer.handleDiscountExpire(context.Background(), queue.NewDiscountExpireTask()); err != nil {
		t.Fatalf("handle discount expire failed: %v", err)
	}
	var reloaded models.Discount
	if err := db.First(&reloaded, discount.ID).Error; err != nil {
		t.Fatalf("reload discount failed: %v", err)
	}
	if reloaded.IsActive {
		t.Fatalf("expired discount must be deactivated")
	}
	if stock := reloadStock(t, db, item.ID); stock.DiscountID != nil {
		t.Fatalf("expired discount must be detached from items")
	}
}

func TestNewServiceWithoutQueue(t *testing.T) {
	if _, err := NewService(nil, nil); err == nil {
		t.Fatalf("nil consumer should be rejected")
	}

	consumer, _ := setupConsumer(t)
	svc, err := NewService(&config.QueueConfig{Enabled: false}, consumer)
	if err != nil {
		t.Fatalf("new service failed: %v", err)
	}
	if !svc.localSweeper || svc.server != nil || svc.scheduler != nil {
		t.Fatalf("disabled queue should run local sweeper only")
	}
	if svc.Name() != "worker" {
		t.Fatalf("unexpected service name %q", svc.Name())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start with canceled ctx should return cleanly: %v", err)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}
