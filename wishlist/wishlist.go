package wishlist

import (
	"sync"

	"hampr/models"
	"hampr/rdx"
)

const snapshotName = "wishlist"

// Store keeps each user's saved items. Set semantics keyed by product id:
// no duplicates, no quantity.
type Store struct {
	mu    sync.Mutex
	lists map[string][]models.WishlistItem

	saveSnap func(userID string, list []models.WishlistItem)
	loadSnap func(userID string, list *[]models.WishlistItem) bool
}

func NewStore() *Store {
	return &Store{
		lists: make(map[string][]models.WishlistItem),
		saveSnap: func(userID string, list []models.WishlistItem) {
			rdx.SaveSnapshot(snapshotName, userID, list)
		},
		loadSnap: func(userID string, list *[]models.WishlistItem) bool {
			return rdx.LoadSnapshot(snapshotName, userID, list)
		},
	}
}

func (s *Store) listFor(userID string) []models.WishlistItem {
	if l, ok := s.lists[userID]; ok {
		return l
	}
	var l []models.WishlistItem
	s.loadSnap(userID, &l)
	s.lists[userID] = l
	return l
}

// Add saves an item; adding an already-saved id is a no-op.
func (s *Store) Add(userID string, item models.WishlistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listFor(userID)

	for _, it := range l {
		if it.ProductID == item.ProductID {
			return
		}
	}
	s.lists[userID] = append(l, item)
	s.saveSnap(userID, s.lists[userID])
}

// Remove drops the item with the given product id, if present.
func (s *Store) Remove(userID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listFor(userID)

	for i, it := range l {
		if it.ProductID == productID {
			s.lists[userID] = append(l[:i], l[i+1:]...)
			s.saveSnap(userID, s.lists[userID])
			return
		}
	}
}

// Toggle adds the item if absent, removes it if present. Returns true when
// the item ends up saved.
func (s *Store) Toggle(userID string, item models.WishlistItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listFor(userID)

	for i, it := range l {
		if it.ProductID == item.ProductID {
			s.lists[userID] = append(l[:i], l[i+1:]...)
			s.saveSnap(userID, s.lists[userID])
			return false
		}
	}
	s.lists[userID] = append(l, item)
	s.saveSnap(userID, s.lists[userID])
	return true
}

func (s *Store) Has(userID, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.listFor(userID) {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *Store) Items(userID string) []models.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listFor(userID)
	out := make([]models.WishlistItem, len(l))
	copy(out, l)
	return out
}
