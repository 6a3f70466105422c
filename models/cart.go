package models

import "time"

// GiftLine is one (product, quantity) entry inside a gift bundle.
type GiftLine struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"` // unit price
	Quantity  int     `json:"quantity" bson:"quantity"`
}

// CartItem is a single cart line: either a plain product reference with a
// quantity, or a gift bundle (IsGift) carrying its own item list. Bundles are
// never quantity-merged; every bundle add appends a fresh line.
type CartItem struct {
	ItemID    string     `json:"id" bson:"itemId"`
	Name      string     `json:"name" bson:"name"`
	Price     float64    `json:"price" bson:"price"` // unit price; for bundles, sum of line totals
	Image     string     `json:"image,omitempty" bson:"image,omitempty"`
	Quantity  int        `json:"quantity" bson:"quantity"`
	IsGift    bool       `json:"isGift,omitempty" bson:"isGift,omitempty"`
	BoxID     string     `json:"boxId,omitempty" bson:"boxId,omitempty"`
	GiftItems []GiftLine `json:"giftItems,omitempty" bson:"giftItems,omitempty"`
	Message   string     `json:"message,omitempty" bson:"message,omitempty"`
	Recipient string     `json:"recipient,omitempty" bson:"recipient,omitempty"`
	Occasion  string     `json:"occasion,omitempty" bson:"occasion,omitempty"`
	AddedAt   time.Time  `json:"addedAt" bson:"addedAt"`
}

// LineTotal is price times quantity for this line.
func (c CartItem) LineTotal() float64 {
	return c.Price * float64(c.Quantity)
}

// WishlistItem is a saved product; set semantics keyed by ProductID.
type WishlistItem struct {
	ProductID string  `json:"id" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Image     string  `json:"image,omitempty" bson:"image,omitempty"`
}
