package cart

import (
	"encoding/json"
	"testing"

	"hampr/models"
)

// newTestStore swaps the Redis snapshot calls for an in-memory map so tests
// never touch a real Redis and never see each other's state. Passing the same
// map to two stores simulates a restart.
func newTestStore(snaps map[string][]byte) *Store {
	s := NewStore()
	s.saveSnap = func(userID string, c *userCart) {
		data, _ := json.Marshal(c)
		snaps[userID] = data
	}
	s.loadSnap = func(userID string, c *userCart) bool {
		data, ok := snaps[userID]
		if !ok {
			return false
		}
		return json.Unmarshal(data, c) == nil
	}
	s.dropSnap = func(userID string) { delete(snaps, userID) }
	return s
}

func plainItem(id string, price float64) models.CartItem {
	return models.CartItem{ItemID: id, Name: "item " + id, Price: price, Quantity: 1}
}

func TestAddToCartMergesPlainItems(t *testing.T) {
	s := newTestStore(map[string][]byte{})

	for i := 0; i < 3; i++ {
		s.AddToCart("u1", plainItem("A", 10))
	}

	items := s.Items("u1")
	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", items[0].Quantity)
	}
}

func TestAddToCartGiftBundlesNeverMerge(t *testing.T) {
	s := newTestStore(map[string][]byte{})

	bundle := models.CartItem{
		ItemID:   "GIFT1",
		Price:    100,
		Quantity: 1,
		IsGift:   true,
		GiftItems: []models.GiftLine{
			{ProductID: "P1", Price: 50, Quantity: 2},
		},
	}

	s.AddToCart("u1", bundle)
	s.AddToCart("u1", bundle) // identical content

	if got := len(s.Items("u1")); got != 2 {
		t.Fatalf("expected 2 distinct bundle lines, got %d", got)
	}
}

func TestAddToCartScenario(t *testing.T) {
	s := newTestStore(map[string][]byte{})

	s.AddToCart("u1", models.CartItem{ItemID: "A", Price: 10, Quantity: 2})
	s.AddToCart("u1", models.CartItem{ItemID: "A", Price: 10})

	items := s.Items("u1")
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("expected single line with qty 3, got %+v", items)
	}
	if total := s.CartTotal("u1"); total != 30 {
		t.Fatalf("expected total 30, got %v", total)
	}
}

func TestUpdateQuantityIgnoresBelowOne(t *testing.T) {
	s := newTestStore(map[string][]byte{})
	s.AddToCart("u1", plainItem("X", 5))

	s.UpdateQuantity("u1", "X", 0)
	s.UpdateQuantity("u1", "X", -1)

	items := s.Items("u1")
	if len(items) != 1 {
		t.Fatalf("item was removed; expected it to remain")
	}
	if items[0].Quantity != 1 {
		t.Fatalf("expected quantity unchanged at 1, got %d", items[0].Quantity)
	}

	s.UpdateQuantity("u1", "X", 7)
	if got := s.Items("u1")[0].Quantity; got != 7 {
		t.Fatalf("expected quantity 7, got %d", got)
	}
}

func TestCartTotalIncludesGiftBundles(t *testing.T) {
	s := newTestStore(map[string][]byte{})

	s.AddToCart("u1", models.CartItem{ItemID: "A", Price: 10, Quantity: 2})
	s.AddToCart("u1", models.CartItem{
		ItemID:   "GIFT1",
		Price:    130, // 2*50 + 1*30
		Quantity: 1,
		IsGift:   true,
		GiftItems: []models.GiftLine{
			{ProductID: "P1", Price: 50, Quantity: 2},
			{ProductID: "P2", Price: 30, Quantity: 1},
		},
	})

	if total := s.CartTotal("u1"); total != 150 {
		t.Fatalf("expected total 150, got %v", total)
	}
	if count := s.CartItemsCount("u1"); count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := newTestStore(map[string][]byte{})
	s.AddToCart("u1", plainItem("A", 1))
	s.AddToCart("u1", plainItem("B", 2))

	s.RemoveFromCart("u1", "A")
	if got := len(s.Items("u1")); got != 1 {
		t.Fatalf("expected 1 line after remove, got %d", got)
	}

	s.ClearCart("u1")
	if got := len(s.Items("u1")); got != 0 {
		t.Fatalf("expected empty cart, got %d lines", got)
	}
}

func TestAddOpensPanel(t *testing.T) {
	s := newTestStore(map[string][]byte{})

	if s.IsOpen("u1") {
		t.Fatal("panel should start closed")
	}
	s.AddToCart("u1", plainItem("A", 1))
	if !s.IsOpen("u1") {
		t.Fatal("adding should open the panel")
	}

	s.CloseCart("u1")
	if s.IsOpen("u1") {
		t.Fatal("panel should be closed")
	}
	s.ToggleCart("u1")
	if !s.IsOpen("u1") {
		t.Fatal("toggle should open the panel")
	}
}

func TestCartRestoredAfterRestart(t *testing.T) {
	snaps := map[string][]byte{}

	s1 := newTestStore(snaps)
	s1.AddToCart("u1", models.CartItem{ItemID: "A", Price: 10, Quantity: 2})
	s1.AddToCart("u1", models.CartItem{
		ItemID:   "GIFT1",
		Price:    50,
		Quantity: 1,
		IsGift:   true,
		BoxID:    "box-m",
		GiftItems: []models.GiftLine{
			{ProductID: "P1", Name: "Soap", Price: 25, Quantity: 2},
		},
		Message:   "happy birthday",
		Recipient: "Sam",
		Occasion:  "birthday",
	})
	s1.CloseCart("u1")

	// a fresh store sharing the snapshot map stands in for a restart
	s2 := newTestStore(snaps)

	items := s2.Items("u1")
	if len(items) != 2 {
		t.Fatalf("expected 2 restored lines, got %d", len(items))
	}
	if items[0].ItemID != "A" || items[0].Quantity != 2 {
		t.Fatalf("plain line mangled: %+v", items[0])
	}
	bundle := items[1]
	if !bundle.IsGift || bundle.BoxID != "box-m" || bundle.Message != "happy birthday" {
		t.Fatalf("bundle metadata lost: %+v", bundle)
	}
	if len(bundle.GiftItems) != 1 || bundle.GiftItems[0].ProductID != "P1" || bundle.GiftItems[0].Quantity != 2 {
		t.Fatalf("bundle contents lost: %+v", bundle.GiftItems)
	}
	if total := s2.CartTotal("u1"); total != 70 {
		t.Fatalf("expected restored total 70, got %v", total)
	}
	if s2.IsOpen("u1") {
		t.Fatal("panel flag should be restored closed")
	}

	// clearing drops the snapshot, so the next restart starts empty
	s2.ClearCart("u1")
	s3 := newTestStore(snaps)
	if got := len(s3.Items("u1")); got != 0 {
		t.Fatalf("expected no snapshot after clear, got %d lines", got)
	}
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	s := newTestStore(map[string][]byte{})
	s.AddToCart("u1", plainItem("A", 1))

	if got := len(s.Items("u2")); got != 0 {
		t.Fatalf("expected empty cart for other user, got %d lines", got)
	}
}
