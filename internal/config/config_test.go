package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDefaultsCheckout(t *testing.T) {
	cfg := Defaults()
	if !cfg.Checkout.Threshold().Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("unexpected free delivery threshold: %s", cfg.Checkout.Threshold())
	}
	if cfg.Checkout.RegularDeliveryCodename != "regular-delivery" {
		t.Fatalf("unexpected regular codename: %s", cfg.Checkout.RegularDeliveryCodename)
	}
	if cfg.Checkout.CardPaymentCodename != "bank-card" {
		t.Fatalf("unexpected card codename: %s", cfg.Checkout.CardPaymentCodename)
	}
	if cfg.Payment.AccountLength != 9 {
		t.Fatalf("unexpected account length: %d", cfg.Payment.AccountLength)
	}
	if cfg.Checkout.HoldDuration() != 30*time.Minute {
		t.Fatalf("unexpected hold duration: %s", cfg.Checkout.HoldDuration())
	}
	if cfg.Queue.Queues["critical"] != 5 {
		t.Fatalf("unexpected queue weights: %+v", cfg.Queue.Queues)
	}
}

func TestCheckoutThresholdInvalidFallsBackToZero(t *testing.T) {
	cfg := CheckoutConfig{FreeDeliveryThreshold: "abc"}
	if !cfg.Threshold().IsZero() {
		t.Fatalf("expected zero threshold, got %s", cfg.Threshold())
	}
	if (SessionConfig{}).TTL() != 14*24*time.Hour {
		t.Fatalf("unexpected default session ttl")
	}
}
