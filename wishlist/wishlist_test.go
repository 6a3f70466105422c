package wishlist

import (
	"encoding/json"
	"testing"

	"hampr/models"
)

// newTestStore swaps the Redis snapshot calls for an in-memory map so tests
// never touch a real Redis and never see each other's state.
func newTestStore(snaps map[string][]byte) *Store {
	s := NewStore()
	s.saveSnap = func(userID string, list []models.WishlistItem) {
		data, _ := json.Marshal(list)
		snaps[userID] = data
	}
	s.loadSnap = func(userID string, list *[]models.WishlistItem) bool {
		data, ok := snaps[userID]
		if !ok {
			return false
		}
		return json.Unmarshal(data, list) == nil
	}
	return s
}

func item(id string) models.WishlistItem {
	return models.WishlistItem{ProductID: id, Name: "Item " + id, Price: 10}
}

func TestAddIsIdempotent(t *testing.T) {
	s := newTestStore(map[string][]byte{})
	s.Add("u1", item("P1"))
	s.Add("u1", item("P1"))
	s.Add("u1", item("P1"))

	if got := len(s.Items("u1")); got != 1 {
		t.Fatalf("expected 1 saved item, got %d", got)
	}
	if !s.Has("u1", "P1") {
		t.Fatal("expected P1 saved")
	}
}

func TestRemoveMissingIsNoOp(t *testing.T) {
	s := newTestStore(map[string][]byte{})
	s.Add("u1", item("P1"))
	s.Remove("u1", "P2")

	if got := len(s.Items("u1")); got != 1 {
		t.Fatalf("expected 1 item after removing absent id, got %d", got)
	}
	s.Remove("u1", "P1")
	if s.Has("u1", "P1") {
		t.Fatal("P1 should be gone")
	}
}

func TestToggleFlipsMembership(t *testing.T) {
	s := newTestStore(map[string][]byte{})

	if !s.Toggle("u1", item("P1")) {
		t.Fatal("first toggle should save")
	}
	if s.Toggle("u1", item("P1")) {
		t.Fatal("second toggle should remove")
	}
	if s.Has("u1", "P1") {
		t.Fatal("P1 should be gone after two toggles")
	}
}

func TestWishlistRestoredAfterRestart(t *testing.T) {
	snaps := map[string][]byte{}

	s1 := newTestStore(snaps)
	s1.Add("u1", item("P1"))
	s1.Add("u1", item("P2"))
	s1.Remove("u1", "P2")

	// a fresh store sharing the snapshot map stands in for a restart
	s2 := newTestStore(snaps)
	if !s2.Has("u1", "P1") {
		t.Fatal("saved item lost across restart")
	}
	if s2.Has("u1", "P2") {
		t.Fatal("removed item came back across restart")
	}
	if got := len(s2.Items("u1")); got != 1 {
		t.Fatalf("expected 1 restored item, got %d", got)
	}
}

func TestListsAreIsolatedPerUser(t *testing.T) {
	s := newTestStore(map[string][]byte{})
	s.Add("u1", item("P1"))
	s.Add("u2", item("P2"))

	if s.Has("u2", "P1") || s.Has("u1", "P2") {
		t.Fatal("lists leaked across users")
	}

	// returned slice is a copy
	items := s.Items("u1")
	items[0].ProductID = "hacked"
	if !s.Has("u1", "P1") {
		t.Fatal("mutating the returned slice changed the store")
	}
}
