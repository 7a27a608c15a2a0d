package session

import (
	"strings"
	"testing"
)

func TestDecodeDropsInvalidLines(t *testing.T) {
	raw := []byte(`{"v":1,"cart":{"42":{"quantity":2,"price":"10.50"},"7":{"quantity":0,"price":"1"},"x":{"quantity":1,"price":"1"},"9":{"quantity":1,"price":"abc"}},"order":5}`)
	state := Decode("sid", raw)
	if len(state.Cart) != 1 {
		t.Fatalf("expected one valid line, got %+v", state.Cart)
	}
	if line := state.Cart["42"]; line.Quantity != 2 || line.Price != "10.50" {
		t.Fatalf("unexpected line: %+v", line)
	}
	if id, ok := state.OrderID(); !ok || id != 5 {
		t.Fatalf("unexpected order id: %d %v", id, ok)
	}
	if !state.Modified() {
		t.Fatalf("dropped lines should mark the session modified")
	}
}

func TestDecodeUnknownVersionResets(t *testing.T) {
	state := Decode("sid", []byte(`{"v":99,"cart":{"1":{"quantity":1,"price":"1"}}}`))
	if state.HasCart() {
		t.Fatalf("unknown version should reset cart")
	}
	if state.Version != CurrentVersion {
		t.Fatalf("unexpected version: %d", state.Version)
	}
}

func TestEncodeKeepsEmptyCartDistinctFromMissing(t *testing.T) {
	state := New("sid")
	state.EnsureCart()
	raw, err := Encode(state)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !strings.Contains(string(raw), `"cart":{}`) {
		t.Fatalf("expected empty cart container, got %s", raw)
	}
	if !Decode("sid", raw).HasCart() {
		t.Fatalf("empty cart should survive round trip")
	}

	state.ClearCart()
	raw, _ = Encode(state)
	if Decode("sid", raw).HasCart() {
		t.Fatalf("cleared cart should be absent")
	}
}

func TestOrderTokenSetAndClear(t *testing.T) {
	state := New("sid")
	state.SetOrder(3)
	if !state.Modified() {
		t.Fatalf("set order should modify session")
	}
	state.markSaved()
	state.SetOrder(3)
	if state.Modified() {
		t.Fatalf("setting the same order should not modify session")
	}
	state.ClearOrder()
	if _, ok := state.OrderID(); ok {
		t.Fatalf("order should be cleared")
	}
}

func TestCartKeysNumericOrder(t *testing.T) {
	state := New("sid")
	cart := state.EnsureCart()
	cart["10"] = CartLine{Quantity: 1, Price: "1"}
	cart["2"] = CartLine{Quantity: 1, Price: "1"}
	keys := state.CartKeys()
	if len(keys) != 2 || keys[0] != "2" || keys[1] != "10" {
		t.Fatalf("unexpected key order: %v", keys)
	}
}
