package service

import (
	"context"
	"errors"
	"testing"

	"github.com/megano/internal/constants"
	"github.com/megano/internal/models"
	"github.com/megano/internal/session"
)

func TestParityGateway(t *testing.T) {
	cases := map[string]bool{
		"1234 3456": true,
		"1234 3457": false,
		"1234 345a": false,
		"000000000": true,
		"":          false,
	}
	for account, want := range cases {
		got, err := ParityGateway{}.Authorize(context.Background(), account)
		if err != nil {
			t.Fatalf("authorize %q failed: %v", account, err)
		}
		if got != want {
			t.Fatalf("authorize %q: want %v got %v", account, want, got)
		}
	}
}

type placedOrder struct {
	buyer *models.User
	item  *models.ShopProduct
	state *session.State
	order *models.Order
}

func placeCardOrder(t *testing.T, f *pipelineFixture, quantity, available int) placedOrder {
	t.Helper()
	buyer := f.createBuyer(t, "buyer@example.com")
	shop := f.createShop(t, "Shop A")
	item := f.createItem(t, shop, "Phone X", "150.00", available)
	state := session.New("payment")
	f.fillCart(t, state, item, quantity)
	result, err := f.checkout.PlaceOrder(context.Background(), orderInput(buyer, state, f.regular, f.card))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	return placedOrder{buyer: buyer, item: item, state: state, order: result.Order}
}

func (f *pipelineFixture) reloadOrder(t *testing.T, id uint) *models.Order {
	t.Helper()
	var order models.Order
	if err := f.db.Preload("Payment").First(&order, id).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	return &order
}

func TestSubmitPaymentPassSettlesLedger(t *testing.T) {
	f := setupPipeline(t)
	p := placeCardOrder(t, f, 10, 100)

	outcome, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: p.state, Account: "1234 3456"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !outcome.Passed || outcome.Outcome != constants.PaymentOutcomePassed || outcome.NextStep != constants.NextStepPaymentProgress {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	stock := f.stock(t, p.item.ID)
	if stock.AvailableCount != 90 || stock.ReservedCount != 0 || stock.SoldCount != 10 {
		t.Fatalf("unexpected ledger: %+v", stock)
	}
	order := f.reloadOrder(t, p.order.ID)
	if !order.IsPaid || order.StockReserved || !order.Payment.IsPassed || *order.Payment.FromAccount != "1234 3456" {
		t.Fatalf("unexpected order after settlement: %+v / %+v", order, order.Payment)
	}
	if p.state.HasCart() {
		t.Fatalf("cart must be cleared on payment submission")
	}
	if _, ok := p.state.OrderID(); !ok {
		t.Fatalf("order token is cleared only by the detail view")
	}
}

func TestSubmitPaymentDeclineKeepsOrderPending(t *testing.T) {
	f := setupPipeline(t)
	p := placeCardOrder(t, f, 10, 100)

	outcome, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: p.state, Account: "1234 3457"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if outcome.Passed || outcome.Outcome != constants.PaymentOutcomeDeclined {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	stock := f.stock(t, p.item.ID)
	if stock.AvailableCount != 90 || stock.ReservedCount != 10 || stock.SoldCount != 0 {
		t.Fatalf("ledger must be unchanged by a decline: %+v", stock)
	}
	order := f.reloadOrder(t, p.order.ID)
	if order.IsPaid || order.Payment.IsPassed {
		t.Fatalf("order must stay unpaid: %+v", order)
	}
	if !order.Payment.HasAccount() {
		t.Fatalf("declined account is recorded for the detail view")
	}
	if id, ok := p.state.OrderID(); !ok || id != p.order.ID {
		t.Fatalf("order token must be retained")
	}
	if p.state.HasCart() {
		t.Fatalf("cart must be cleared regardless of outcome")
	}

	retry, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: p.state, Account: "1234 3458"})
	if err != nil || !retry.Passed {
		t.Fatalf("retry should pass: %+v %v", retry, err)
	}
	if stock := f.stock(t, p.item.ID); stock.SoldCount != 10 || stock.AvailableCount != 90 {
		t.Fatalf("unexpected ledger after retry: %+v", stock)
	}
}

func TestSubmitPaymentInvalidAccountLength(t *testing.T) {
	f := setupPipeline(t)
	p := placeCardOrder(t, f, 2, 10)

	_, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: p.state, Account: "12345"})
	if !errors.Is(err, ErrInvalidPaymentInstrument) {
		t.Fatalf("expected invalid instrument, got %v", err)
	}
	order := f.reloadOrder(t, p.order.ID)
	if order.IsPaid || order.Payment.IsPassed || order.Payment.FromAccount != nil {
		t.Fatalf("payment record must be untouched: %+v", order.Payment)
	}
	if _, ok := p.state.OrderID(); !ok {
		t.Fatalf("order must remain pending in session")
	}
}

func TestSubmitPaymentGate(t *testing.T) {
	f := setupPipeline(t)
	p := placeCardOrder(t, f, 1, 10)

	if _, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: session.New("fresh"), Account: "1234 3456"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden without order token, got %v", err)
	}
	if _, err := f.payment.Submit(context.Background(), SubmitPaymentInput{State: p.state, Account: "1234 3456"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for anonymous caller, got %v", err)
	}
	stranger := f.createBuyer(t, "stranger@example.com")
	if _, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: stranger.ID, State: p.state, Account: "1234 3456"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for another buyer, got %v", err)
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	f := setupPipeline(t)
	p := placeCardOrder(t, f, 4, 10)

	settled, err := f.payment.Settle(p.order.ID, "1234 3456")
	if err != nil || !settled {
		t.Fatalf("first settle: settled=%v err=%v", settled, err)
	}
	settled, err = f.payment.Settle(p.order.ID, "1234 3456")
	if err != nil || settled {
		t.Fatalf("second settle must be a no-op: settled=%v err=%v", settled, err)
	}
	stock := f.stock(t, p.item.ID)
	if stock.SoldCount != 4 || stock.AvailableCount != 6 || stock.ReservedCount != 0 {
		t.Fatalf("double settlement detected: %+v", stock)
	}

	outcome, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: p.state, Account: "1234 3456"})
	if err != nil || outcome.Outcome != constants.PaymentOutcomeSettled {
		t.Fatalf("resubmission on a paid order: %+v %v", outcome, err)
	}
	if stock := f.stock(t, p.item.ID); stock.SoldCount != 4 {
		t.Fatalf("resubmission mutated ledger: %+v", stock)
	}
}

func TestSettleAfterHoldReleaseUsesAvailableStock(t *testing.T) {
	f := setupPipeline(t)
	p := placeCardOrder(t, f, 3, 10)

	released, err := f.reservation.ReleaseHold(p.order.ID)
	if err != nil || !released {
		t.Fatalf("release failed: %v %v", released, err)
	}
	if stock := f.stock(t, p.item.ID); stock.AvailableCount != 10 || stock.ReservedCount != 0 {
		t.Fatalf("release must return units to available: %+v", stock)
	}

	outcome, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: p.state, Account: "1234 3456"})
	if err != nil || !outcome.Passed {
		t.Fatalf("submit failed: %+v %v", outcome, err)
	}
	stock := f.stock(t, p.item.ID)
	if stock.AvailableCount != 7 || stock.SoldCount != 3 || stock.ReservedCount != 0 {
		t.Fatalf("unexpected ledger: %+v", stock)
	}
}

func TestSettleAbortsWhenReleasedStockWasSold(t *testing.T) {
	f := setupPipeline(t)
	p := placeCardOrder(t, f, 3, 10)

	if _, err := f.reservation.ReleaseHold(p.order.ID); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := f.db.Model(&models.ShopProduct{}).Where("id = ?", p.item.ID).
		Updates(map[string]interface{}{"available_count": 2, "sold_count": 8}).Error; err != nil {
		t.Fatalf("simulate other sales failed: %v", err)
	}

	_, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: p.state, Account: "1234 3456"})
	if !errors.Is(err, ErrSettlementOutOfStock) || !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected settlement out of stock, got %v", err)
	}
	order := f.reloadOrder(t, p.order.ID)
	if order.IsPaid || order.Payment.IsPassed {
		t.Fatalf("settlement must roll back: %+v", order)
	}
	if stock := f.stock(t, p.item.ID); stock.AvailableCount != 2 || stock.SoldCount != 8 {
		t.Fatalf("ledger must be unchanged: %+v", stock)
	}
}

func TestPaymentProgress(t *testing.T) {
	f := setupPipeline(t)
	p := placeCardOrder(t, f, 1, 10)

	if _, err := f.payment.Progress(p.buyer.ID, p.state); !errors.Is(err, ErrForbidden) {
		t.Fatalf("progress requires the cart to be handed off, got %v", err)
	}
	if _, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: p.state, Account: "1234 3456"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	progress, err := f.payment.Progress(p.buyer.ID, p.state)
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if progress.OrderID != p.order.ID || !progress.IsPassed || progress.TotalPrice.String() != "350.00" {
		t.Fatalf("unexpected progress: %+v", progress)
	}
}

func TestSettleRejectsCanceledOrder(t *testing.T) {
	f := setupPipeline(t)
	p := placeCardOrder(t, f, 3, 10)

	if _, err := f.orders.Cancel(p.order.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	f.notices.reset()

	settled, err := f.payment.Settle(p.order.ID, "123456788")
	if !errors.Is(err, ErrOrderCanceled) || settled {
		t.Fatalf("expected order canceled, got settled=%v err=%v", settled, err)
	}
	stock := f.stock(t, p.item.ID)
	if stock.AvailableCount != 10 || stock.ReservedCount != 0 || stock.SoldCount != 0 {
		t.Fatalf("canceled order must not consume stock: %+v", stock)
	}
	order := f.reloadOrder(t, p.order.ID)
	if order.IsPaid || !order.IsCanceled || order.Payment.IsPassed {
		t.Fatalf("settlement must roll back: %+v / %+v", order, order.Payment)
	}
	if len(f.notices.calls) != 0 {
		t.Fatalf("rolled back settlement must not notify: %v", f.notices.calls)
	}
}

func TestSubmitCountsRawAccountLength(t *testing.T) {
	f := setupPipeline(t)
	p := placeCardOrder(t, f, 1, 10)

	_, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: p.state, Account: "123456788 "})
	if !errors.Is(err, ErrInvalidPaymentInstrument) {
		t.Fatalf("ten characters with trailing space must be rejected, got %v", err)
	}
	outcome, err := f.payment.Submit(context.Background(), SubmitPaymentInput{BuyerID: p.buyer.ID, State: p.state, Account: " 12345678"})
	if err != nil || !outcome.Passed {
		t.Fatalf("nine raw characters must be accepted: %+v %v", outcome, err)
	}
	order := f.reloadOrder(t, p.order.ID)
	if order.Payment.FromAccount == nil || *order.Payment.FromAccount != " 12345678" {
		t.Fatalf("account must be stored as entered: %+v", order.Payment)
	}
}

func TestSettleNotifiesStockChange(t *testing.T) {
	f := setupPipeline(t)
	var evicted []string
	f.catalog.invalidate = func(_ context.Context, keys ...string) error {
		evicted = append(evicted, keys...)
		return nil
	}
	p := placeCardOrder(t, f, 2, 10)
	if len(f.notices.calls) != 1 || len(f.notices.calls[0]) != 1 || f.notices.calls[0][0] != p.item.ID {
		t.Fatalf("checkout must notify reserved items: %v", f.notices.calls)
	}
	if len(evicted) != 1 || evicted[0] != "products_phones" {
		t.Fatalf("checkout must evict the category list: %v", evicted)
	}
	f.notices.reset()
	evicted = nil

	if settled, err := f.payment.Settle(p.order.ID, "1234 3456"); err != nil || !settled {
		t.Fatalf("settle failed: %v %v", settled, err)
	}
	if len(f.notices.calls) != 1 || f.notices.calls[0][0] != p.item.ID {
		t.Fatalf("settlement must notify consumed items: %v", f.notices.calls)
	}
	if len(evicted) != 1 || evicted[0] != "products_phones" {
		t.Fatalf("settlement must evict the category list: %v", evicted)
	}

	f.notices.reset()
	if settled, err := f.payment.Settle(p.order.ID, "1234 3456"); err != nil || settled {
		t.Fatalf("second settle: %v %v", settled, err)
	}
	if len(f.notices.calls) != 0 {
		t.Fatalf("no-op settlement must not notify: %v", f.notices.calls)
	}
}
