package giftbuilder

import (
	"strings"
	"testing"
	"unicode/utf8"

	"hampr/cart"
	"hampr/models"
)

func product(id string, price float64) models.Product {
	return models.Product{ProductID: id, Name: "product " + id, Price: price}
}

func TestStepGatingOnChooseProducts(t *testing.T) {
	f := NewFlow()
	f.Start("u1")

	if got := f.Next("u1"); got != StepChooseProducts {
		t.Fatalf("expected choose-products, got %s", got)
	}
	// no items selected: advance is silently ignored
	if got := f.Next("u1"); got != StepChooseProducts {
		t.Fatalf("expected to stay on choose-products, got %s", got)
	}

	f.SetItem("u1", product("P1", 10), 1)
	if got := f.Next("u1"); got != StepGreetingCard {
		t.Fatalf("expected greeting-card, got %s", got)
	}
	if got := f.Next("u1"); got != StepCustomMessage {
		t.Fatalf("expected custom-message, got %s", got)
	}
	// terminal step: no further advance
	if got := f.Next("u1"); got != StepCustomMessage {
		t.Fatalf("expected to stay on custom-message, got %s", got)
	}
}

func TestBackFromFirstStepIsNoop(t *testing.T) {
	f := NewFlow()
	f.Start("u1")

	if got := f.Back("u1"); got != StepChooseBox {
		t.Fatalf("expected choose-box, got %s", got)
	}
}

func TestZeroQuantityPrunesSelection(t *testing.T) {
	f := NewFlow()
	f.Start("u1")

	f.SetItem("u1", product("P1", 10), 2)
	f.SetItem("u1", product("P2", 20), 1)
	if got := f.TotalItems("u1"); got != 3 {
		t.Fatalf("expected 3 items, got %d", got)
	}

	f.SetItem("u1", product("P1", 10), 0)
	if got := f.TotalItems("u1"); got != 1 {
		t.Fatalf("expected 1 item after prune, got %d", got)
	}
}

func TestMessageTruncation(t *testing.T) {
	f := NewFlow()
	f.Start("u1")
	f.SetItem("u1", product("P1", 10), 1)

	long := strings.Repeat("x", MaxMessageLen+50)
	f.SetDetails("u1", long, "Alex", "birthday")

	carts := cart.NewMemStore()
	bundle, ok := f.Confirm("u1", carts)
	if !ok {
		t.Fatal("expected confirm to succeed")
	}
	if got := utf8.RuneCountInString(bundle.Message); got != MaxMessageLen {
		t.Fatalf("expected message truncated to %d characters, got %d", MaxMessageLen, got)
	}
}

func TestMessageTruncationKeepsValidUTF8(t *testing.T) {
	f := NewFlow()
	f.Start("u1")
	f.SetItem("u1", product("P1", 10), 1)

	// a multi-byte character straddling the cap must not be split
	long := strings.Repeat("a", MaxMessageLen-1) + "héllo wörld"
	f.SetDetails("u1", long, "Alex", "birthday")

	carts := cart.NewMemStore()
	bundle, ok := f.Confirm("u1", carts)
	if !ok {
		t.Fatal("expected confirm to succeed")
	}
	if !utf8.ValidString(bundle.Message) {
		t.Fatalf("truncated message is invalid UTF-8: %q", bundle.Message)
	}
	if got := utf8.RuneCountInString(bundle.Message); got != MaxMessageLen {
		t.Fatalf("expected %d characters, got %d", MaxMessageLen, got)
	}
	if bundle.Message[len(bundle.Message)-1] != 'h' {
		t.Fatalf("expected message to end at the h, got %q", bundle.Message[len(bundle.Message)-10:])
	}
}

func TestConfirmBundlePrice(t *testing.T) {
	f := NewFlow()
	f.Start("u1")
	f.ChooseBox("u1", "box-red")
	f.SetItem("u1", product("P1", 50), 2)
	f.SetItem("u1", product("P2", 30), 1)

	carts := cart.NewMemStore()
	bundle, ok := f.Confirm("u1", carts)
	if !ok {
		t.Fatal("expected confirm to succeed")
	}
	if bundle.Price != 130 {
		t.Fatalf("expected bundle price 130, got %v", bundle.Price)
	}
	if !bundle.IsGift {
		t.Fatal("bundle must be flagged as gift")
	}
	if bundle.BoxID != "box-red" {
		t.Fatalf("expected box-red, got %s", bundle.BoxID)
	}
	if len(bundle.GiftItems) != 2 {
		t.Fatalf("expected 2 gift lines, got %d", len(bundle.GiftItems))
	}

	items := carts.Items("u1")
	if len(items) != 1 || !items[0].IsGift {
		t.Fatalf("expected one gift line in cart, got %+v", items)
	}
}

func TestConfirmEmptySelectionIsNoop(t *testing.T) {
	f := NewFlow()
	f.Start("u1")

	carts := cart.NewMemStore()
	if _, ok := f.Confirm("u1", carts); ok {
		t.Fatal("expected confirm with empty selection to be a no-op")
	}
	if got := len(carts.Items("u1")); got != 0 {
		t.Fatalf("cart must stay untouched, got %d lines", got)
	}
}

func TestConfirmAbandonsBuilderState(t *testing.T) {
	f := NewFlow()
	f.Start("u1")
	f.SetItem("u1", product("P1", 10), 1)

	carts := cart.NewMemStore()
	if _, ok := f.Confirm("u1", carts); !ok {
		t.Fatal("expected confirm to succeed")
	}

	if got := f.TotalItems("u1"); got != 0 {
		t.Fatalf("expected fresh builder after confirm, got %d items", got)
	}
	if got := f.Step("u1"); got != StepChooseBox {
		t.Fatalf("expected fresh builder at choose-box, got %s", got)
	}
}

func TestConfirmedBundlesNeverMergeInCart(t *testing.T) {
	carts := cart.NewMemStore()

	for i := 0; i < 2; i++ {
		f := NewFlow()
		f.Start("u1")
		f.SetItem("u1", product("P1", 10), 1)
		if _, ok := f.Confirm("u1", carts); !ok {
			t.Fatal("expected confirm to succeed")
		}
	}

	if got := len(carts.Items("u1")); got != 2 {
		t.Fatalf("expected 2 separate bundles, got %d", got)
	}
}
