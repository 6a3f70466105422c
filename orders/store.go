package orders

import (
	"sync"

	"hampr/models"
	"hampr/rdx"
)

const snapshotName = "orders"

// Store is the locally authoritative order history. AddOrder always succeeds
// synchronously; remote mirroring happens out-of-band through the outbox and
// never rolls a local order back. Each user's history is snapshotted to Redis
// on mutation and restored on their first access after a restart.
type Store struct {
	mu      sync.Mutex
	orders  []models.Order // newest first
	warmed  map[string]bool
	publish func(models.OrderEvent)

	saveSnap func(userID string, history []models.Order)
	loadSnap func(userID string) ([]models.Order, bool)
}

// NewStore builds the store. publish, when non-nil, receives an {old, new}
// snapshot pair for every effective status change; it feeds the order change
// feed.
func NewStore(publish func(models.OrderEvent)) *Store {
	return &Store{
		warmed:  make(map[string]bool),
		publish: publish,
		saveSnap: func(userID string, history []models.Order) {
			rdx.SaveSnapshot(snapshotName, userID, history)
		},
		loadSnap: func(userID string) ([]models.Order, bool) {
			var history []models.Order
			ok := rdx.LoadSnapshot(snapshotName, userID, &history)
			return history, ok
		},
	}
}

// warmLocked restores the user's snapshotted history on first access. Orders
// already in memory win over restored ones with the same id; restored orders
// are appended after the in-memory ones, which keeps newest-first intact
// since anything restored predates the current process. Caller holds s.mu.
func (s *Store) warmLocked(userID string) {
	if userID == "" || s.warmed[userID] {
		return
	}
	s.warmed[userID] = true

	restored, ok := s.loadSnap(userID)
	if !ok {
		return
	}
	seen := make(map[string]bool, len(s.orders))
	for _, o := range s.orders {
		seen[o.OrderID] = true
	}
	for _, o := range restored {
		if !seen[o.OrderID] {
			s.orders = append(s.orders, o)
		}
	}
}

// AddOrder prepends the order to local history. The item list is deep-copied
// so later cart mutations cannot retroactively change a placed order.
func (s *Store) AddOrder(order models.Order) {
	order.Items = snapshotItems(order.Items)

	s.mu.Lock()
	s.warmLocked(order.UserID)
	s.orders = append([]models.Order{order}, s.orders...)
	history := s.historyLocked(order.UserID)
	s.mu.Unlock()

	if order.UserID != "" {
		s.saveSnap(order.UserID, history)
	}
}

// UpdateOrderStatus mutates the matching order's status in place. Last local
// write wins; no reconciliation against server-pushed state. An effective
// change (old != new) is published to the change feed.
func (s *Store) UpdateOrderStatus(orderID string, status models.OrderStatus) bool {
	if !models.ValidOrderStatus(status) {
		return false
	}

	s.mu.Lock()
	var old, updated models.Order
	found := false
	for i := range s.orders {
		if s.orders[i].OrderID == orderID {
			old = s.orders[i]
			s.orders[i].Status = status
			updated = s.orders[i]
			found = true
			break
		}
	}
	var history []models.Order
	if found && updated.UserID != "" {
		history = s.historyLocked(updated.UserID)
	}
	s.mu.Unlock()

	if !found {
		return false
	}
	if updated.UserID != "" {
		s.saveSnap(updated.UserID, history)
	}
	if s.publish != nil && old.Status != status {
		s.publish(models.OrderEvent{Old: old, New: updated})
	}
	return true
}

// History returns the user's orders, newest first, restoring their snapshot
// on first access.
func (s *Store) History(userID string) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warmLocked(userID)
	return s.historyLocked(userID)
}

func (s *Store) historyLocked(userID string) []models.Order {
	out := []models.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

// All returns every known order, newest first.
func (s *Store) All() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Get looks up one of the user's orders by id, restoring their snapshot on
// first access. Orders belonging to other users are reported as not found.
func (s *Store) Get(userID, orderID string) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warmLocked(userID)
	for _, o := range s.orders {
		if o.OrderID == orderID && o.UserID == userID {
			return o, true
		}
	}
	return models.Order{}, false
}

func snapshotItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	for i := range out {
		if len(out[i].GiftItems) > 0 {
			lines := make([]models.GiftLine, len(out[i].GiftItems))
			copy(lines, out[i].GiftItems)
			out[i].GiftItems = lines
		}
	}
	return out
}
