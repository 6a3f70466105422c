package models

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Customer holds the contact/shipping fields captured at checkout.
type Customer struct {
	Name       string `json:"name" bson:"name"`
	Email      string `json:"email" bson:"email"`
	Phone      string `json:"phone" bson:"phone"`
	Address    string `json:"address" bson:"address"`
	City       string `json:"city" bson:"city"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
}

// Order is the locally authoritative record of a placed order. Items is a
// snapshot taken at checkout; later cart mutations never touch it.
type Order struct {
	OrderID       string      `json:"orderId" bson:"orderId"`
	UserID        string      `json:"userId,omitempty" bson:"userId,omitempty"`
	Customer      Customer    `json:"customer" bson:"customer"`
	Items         []CartItem  `json:"items" bson:"items"`
	Total         float64     `json:"total" bson:"total"`
	Status        OrderStatus `json:"status" bson:"status"`
	PaymentMethod string      `json:"paymentMethod" bson:"paymentMethod"`
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt"`
}

// ProductIDs flattens the order's lines (bundle contents included) into the
// distinct set of product ids, in first-seen order.
func (o Order) ProductIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, it := range o.Items {
		if it.IsGift {
			for _, g := range it.GiftItems {
				add(g.ProductID)
			}
			continue
		}
		add(it.ItemID)
	}
	return ids
}

// OrderItem is one row of the order line-item table, the fallback source for
// resolving which products an order contained.
type OrderItem struct {
	OrderID   string  `json:"orderId" bson:"orderId"`
	ProductID string  `json:"productId" bson:"productId"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`
}

// OrderEvent is the {old, new} row pair delivered on the order change feed.
type OrderEvent struct {
	Old Order `json:"old"`
	New Order `json:"new"`
}
