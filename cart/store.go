package cart

import (
	"sync"
	"time"

	"hampr/models"
	"hampr/rdx"
)

const snapshotName = "cart"

// userCart is one user's cart: the line list plus the panel-visibility flag.
// The flag is presentation state kept next to the data on purpose: "cart
// changed" and "show cart" have a single source of truth.
type userCart struct {
	Items  []models.CartItem `json:"items"`
	IsOpen bool              `json:"isOpen"`
}

// Store holds every user's cart. Mutations are synchronous and applied in
// call order; each mutation overwrites the user's Redis snapshot.
type Store struct {
	mu    sync.Mutex
	carts map[string]*userCart

	saveSnap func(userID string, c *userCart)
	loadSnap func(userID string, c *userCart) bool
	dropSnap func(userID string)
}

func NewStore() *Store {
	return &Store{
		carts: make(map[string]*userCart),
		saveSnap: func(userID string, c *userCart) {
			rdx.SaveSnapshot(snapshotName, userID, c)
		},
		loadSnap: func(userID string, c *userCart) bool {
			return rdx.LoadSnapshot(snapshotName, userID, c)
		},
		dropSnap: func(userID string) {
			rdx.DropSnapshot(snapshotName, userID)
		},
	}
}

// NewMemStore builds a store without Redis persistence; cart state lives and
// dies with the process.
func NewMemStore() *Store {
	return &Store{
		carts:    make(map[string]*userCart),
		saveSnap: func(string, *userCart) {},
		loadSnap: func(string, *userCart) bool { return false },
		dropSnap: func(string) {},
	}
}

// cartFor returns the user's cart, restoring a snapshot on first access.
// Caller must hold s.mu.
func (s *Store) cartFor(userID string) *userCart {
	if c, ok := s.carts[userID]; ok {
		return c
	}
	c := &userCart{}
	s.loadSnap(userID, c)
	s.carts[userID] = c
	return c
}

// AddToCart appends or merges a line and opens the cart panel.
// Gift bundles always append a new line, even with identical content; plain
// items merge by product id with quantity +1.
func (s *Store) AddToCart(userID string, item models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(userID)

	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.AddedAt = time.Now()

	if !item.IsGift {
		for i := range c.Items {
			if !c.Items[i].IsGift && c.Items[i].ItemID == item.ItemID {
				c.Items[i].Quantity++
				c.IsOpen = true
				s.saveSnap(userID, c)
				return
			}
		}
	}

	c.Items = append(c.Items, item)
	c.IsOpen = true
	s.saveSnap(userID, c)
}

// RemoveFromCart deletes the matching line unconditionally.
func (s *Store) RemoveFromCart(userID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(userID)

	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	s.saveSnap(userID, c)
}

// UpdateQuantity sets a line's quantity. Quantities below 1 are ignored;
// removal must go through RemoveFromCart.
func (s *Store) UpdateQuantity(userID, itemID string, qty int) {
	if qty < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(userID)

	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items[i].Quantity = qty
			break
		}
	}
	s.saveSnap(userID, c)
}

// ClearCart empties the line list, e.g. after a successful checkout. The
// stored snapshot is dropped rather than overwritten with an empty cart.
func (s *Store) ClearCart(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(userID)
	c.Items = nil
	s.dropSnap(userID)
}

// Items returns a copy of the user's cart lines.
func (s *Store) Items(userID string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(userID)
	out := make([]models.CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}

// CartTotal sums price * quantity over all lines. Recomputed on demand,
// never cached.
func (s *Store) CartTotal(userID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(userID)

	var total float64
	for _, it := range c.Items {
		total += it.LineTotal()
	}
	return total
}

// CartItemsCount sums quantities over all lines.
func (s *Store) CartItemsCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(userID)

	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (s *Store) IsOpen(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartFor(userID).IsOpen
}

func (s *Store) OpenCart(userID string) { s.setOpen(userID, true) }

func (s *Store) CloseCart(userID string) { s.setOpen(userID, false) }

func (s *Store) ToggleCart(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(userID)
	c.IsOpen = !c.IsOpen
	s.saveSnap(userID, c)
}

func (s *Store) setOpen(userID string, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(userID)
	c.IsOpen = open
	s.saveSnap(userID, c)
}
