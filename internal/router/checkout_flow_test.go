package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/megano/internal/config"
	"github.com/megano/internal/constants"
	"github.com/megano/internal/models"
	"github.com/megano/internal/provider"
	"github.com/megano/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// apiClient 模拟浏览器：沿用会话ID，可选携带令牌
type apiClient struct {
	t         *testing.T
	engine    *gin.Engine
	sessionID string
	token     string
}

func (a *apiClient) do(method, path string, body interface{}) apiResponse {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.sessionID != "" {
		req.Header.Set(session.HeaderSessionID, a.sessionID)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		a.t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	if id := w.Header().Get(session.HeaderSessionID); id != "" {
		a.sessionID = id
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		a.t.Fatalf("unmarshal %s %s failed: %v body=%s", method, path, err, w.Body.String())
	}
	return resp
}

func decodeData(t *testing.T, resp apiResponse, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, out); err != nil {
		t.Fatalf("unmarshal data failed: %v data=%s", err, string(resp.Data))
	}
}

type shopFixture struct {
	engine  *gin.Engine
	db      *gorm.DB
	item    *models.ShopProduct
	card    *models.PaymentCategory
	cash    *models.PaymentCategory
	regular *models.DeliveryCategory
}

func setupShop(t *testing.T) *shopFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:router_flow_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	cfg.Server.Mode = "debug"
	cfg.Redis.Enabled = false
	cfg.Queue.Enabled = false
	cfg.UserJWT.SecretKey = testJWTSecret
	cfg.Payment.AccountLength = 9
	engine := SetupRouter(cfg, provider.NewContainer(cfg))

	create := func(value interface{}) {
		if err := db.Create(value).Error; err != nil {
			t.Fatalf("create %T failed: %v", value, err)
		}
	}
	price, err := models.ParseMoney("150.00")
	if err != nil {
		t.Fatalf("parse money failed: %v", err)
	}
	fee, err := models.ParseMoney("200")
	if err != nil {
		t.Fatalf("parse money failed: %v", err)
	}
	shop := &models.Shop{Name: "Shop A", IsActive: true}
	create(shop)
	category := &models.Category{Name: "Phones", Slug: "phones", IsActive: true}
	create(category)
	product := &models.Product{CategoryID: category.ID, Name: "Phone X"}
	create(product)
	f := &shopFixture{engine: engine, db: db}
	f.item = &models.ShopProduct{ProductID: product.ID, ShopID: shop.ID, Price: price, AvailableCount: 3, IsActive: true}
	create(f.item)
	f.regular = &models.DeliveryCategory{Name: "Regular", Codename: constants.DeliveryCodenameRegular, Price: fee, IsActive: true}
	create(f.regular)
	f.card = &models.PaymentCategory{Name: "Card", Codename: constants.PaymentCodenameBankCard, IsActive: true}
	create(f.card)
	f.cash = &models.PaymentCategory{Name: "Cash", Codename: constants.PaymentCodenameCash, IsActive: true}
	create(f.cash)
	return f
}

func (f *shopFixture) client(t *testing.T) *apiClient {
	return &apiClient{t: t, engine: f.engine}
}

func (f *shopFixture) register(t *testing.T, a *apiClient, email string) {
	t.Helper()
	resp := a.do(http.MethodPost, "/api/v1/auth/register", gin.H{"email": email, "password": "secret-pass-1"})
	if resp.StatusCode != 0 {
		t.Fatalf("register failed: %+v", resp)
	}
	var auth struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &auth)
	if auth.Token == "" {
		t.Fatalf("register should issue a token")
	}
	a.token = auth.Token
}

func (f *shopFixture) orderBody(paymentID uint) gin.H {
	return gin.H{
		"delivery_category_id": f.regular.ID,
		"payment_category_id":  paymentID,
		"name":                 "Ivan",
		"phone":                "+70000000000",
		"email":                "ivan@example.com",
		"city":                 "Moscow",
		"address":              "Tverskaya 1",
	}
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	f := setupShop(t)
	a := f.client(t)

	// 匿名访客可以加购，但不能下单
	if resp := a.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": f.item.ID, "quantity": 5}); resp.StatusCode != 0 {
		t.Fatalf("anonymous add to cart failed: %+v", resp)
	}
	if a.sessionID == "" {
		t.Fatalf("session id should be issued")
	}
	if resp := a.do(http.MethodPost, "/api/v1/checkout", f.orderBody(f.card.ID)); resp.StatusCode != 403 {
		t.Fatalf("anonymous checkout want 403 got %+v", resp)
	}

	f.register(t, a, "buyer@example.com")

	var cart struct {
		TotalCount int `json:"total_count"`
	}
	resp := a.do(http.MethodGet, "/api/v1/cart", nil)
	decodeData(t, resp, &cart)
	if cart.TotalCount != 5 {
		t.Fatalf("cart should survive login, got %d", cart.TotalCount)
	}

	resp = a.do(http.MethodPost, "/api/v1/checkout", f.orderBody(f.card.ID))
	if resp.StatusCode != 409 {
		t.Fatalf("oversized cart want 409 got %+v", resp)
	}
	var shortage struct {
		NotEnoughGoods []string `json:"not_enough_goods"`
	}
	decodeData(t, resp, &shortage)
	if len(shortage.NotEnoughGoods) != 1 || shortage.NotEnoughGoods[0] != "Phone X: in stock - 3, in cart - 5" {
		t.Fatalf("unexpected shortage messages: %v", shortage.NotEnoughGoods)
	}

	if resp := a.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": f.item.ID, "quantity": 2, "replace": true}); resp.StatusCode != 0 {
		t.Fatalf("replace cart line failed: %+v", resp)
	}
	resp = a.do(http.MethodPost, "/api/v1/checkout", f.orderBody(f.card.ID))
	if resp.StatusCode != 0 {
		t.Fatalf("place order failed: %+v", resp)
	}
	var placed struct {
		Order struct {
			ID uint `json:"id"`
		} `json:"order"`
		NextStep string `json:"next"`
	}
	decodeData(t, resp, &placed)
	if placed.Order.ID == 0 || placed.NextStep != constants.NextStepPayment {
		t.Fatalf("card order should continue to payment: %+v", placed)
	}

	var state struct {
		Stage string `json:"stage"`
	}
	decodeData(t, a.do(http.MethodGet, "/api/v1/checkout/state", nil), &state)
	if state.Stage != constants.StageOrderPending {
		t.Fatalf("stage want %s got %s", constants.StageOrderPending, state.Stage)
	}

	resp = a.do(http.MethodPost, "/api/v1/payment", gin.H{"account": "12345"})
	if resp.StatusCode != 400 {
		t.Fatalf("short account want 400 got %+v", resp)
	}
	var invalid struct {
		Next string `json:"next"`
	}
	decodeData(t, resp, &invalid)
	if invalid.Next != constants.NextStepHome {
		t.Fatalf("invalid account should send buyer home, got %q", invalid.Next)
	}

	resp = a.do(http.MethodPost, "/api/v1/payment", gin.H{"account": "123456788"})
	if resp.StatusCode != 0 {
		t.Fatalf("payment failed: %+v", resp)
	}
	var outcome struct {
		Outcome string `json:"outcome"`
		Passed  bool   `json:"is_passed"`
	}
	decodeData(t, resp, &outcome)
	if outcome.Outcome != constants.PaymentOutcomePassed || !outcome.Passed {
		t.Fatalf("even account should pass: %+v", outcome)
	}

	var progress struct {
		IsPassed bool `json:"is_passed"`
	}
	decodeData(t, a.do(http.MethodGet, "/api/v1/payment/progress", nil), &progress)
	if !progress.IsPassed {
		t.Fatalf("progress should report passed payment")
	}

	if resp := a.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", placed.Order.ID), nil); resp.StatusCode != 0 {
		t.Fatalf("owner should see paid order: %+v", resp)
	}

	var stock models.ShopProduct
	if err := f.db.First(&stock, f.item.ID).Error; err != nil {
		t.Fatalf("reload stock failed: %v", err)
	}
	if stock.AvailableCount != 1 || stock.ReservedCount != 0 || stock.SoldCount != 2 {
		t.Fatalf("unexpected ledger after settlement: %+v", stock)
	}
}

func TestOrderDetailForbiddenForOtherBuyer(t *testing.T) {
	f := setupShop(t)
	owner := f.client(t)
	f.register(t, owner, "owner@example.com")
	owner.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": f.item.ID, "quantity": 1})
	resp := owner.do(http.MethodPost, "/api/v1/checkout", f.orderBody(f.card.ID))
	if resp.StatusCode != 0 {
		t.Fatalf("place order failed: %+v", resp)
	}
	var placed struct {
		Order struct {
			ID uint `json:"id"`
		} `json:"order"`
	}
	decodeData(t, resp, &placed)
	path := fmt.Sprintf("/api/v1/orders/%d", placed.Order.ID)

	stranger := f.client(t)
	f.register(t, stranger, "stranger@example.com")
	if resp := stranger.do(http.MethodGet, path, nil); resp.StatusCode != 403 {
		t.Fatalf("foreign order want 403 got %+v", resp)
	}
	anonymous := f.client(t)
	if resp := anonymous.do(http.MethodGet, path, nil); resp.StatusCode != 403 {
		t.Fatalf("anonymous order detail want 403 got %+v", resp)
	}
	if resp := stranger.do(http.MethodGet, "/api/v1/orders/999999", nil); resp.StatusCode != 404 {
		t.Fatalf("missing order want 404 got %+v", resp)
	}
}

func TestPaymentWithoutOrderIsForbidden(t *testing.T) {
	f := setupShop(t)
	a := f.client(t)
	f.register(t, a, "buyer@example.com")

	if resp := a.do(http.MethodPost, "/api/v1/payment", gin.H{"account": "123456788"}); resp.StatusCode != 403 {
		t.Fatalf("payment without order want 403 got %+v", resp)
	}
	if resp := a.do(http.MethodGet, "/api/v1/payment/progress", nil); resp.StatusCode != 403 {
		t.Fatalf("progress without order want 403 got %+v", resp)
	}
}
