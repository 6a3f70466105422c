package giftbuilder

import (
	"strconv"
	"sync"
	"time"

	"hampr/cart"
	"hampr/models"
)

// Step is a stage of the build-your-own-gift-box wizard. Transitions are
// strictly forward/back, one step at a time.
type Step int

const (
	StepChooseBox Step = iota
	StepChooseProducts
	StepGreetingCard
	StepCustomMessage
)

func (s Step) String() string {
	switch s {
	case StepChooseBox:
		return "choose-box"
	case StepChooseProducts:
		return "choose-products"
	case StepGreetingCard:
		return "greeting-card"
	case StepCustomMessage:
		return "custom-message"
	}
	return "unknown"
}

// MaxMessageLen caps the free-text gift message. Longer input is truncated,
// not rejected.
const MaxMessageLen = 200

// builder is one user's in-progress gift box. It lives in memory only; an
// abandoned build is simply dropped.
type builder struct {
	step      Step
	boxID     string
	qty       map[string]int             // product id -> quantity, zero entries pruned
	order     []string                   // selection order of product ids
	lines     map[string]models.GiftLine // product snapshot at selection time
	message   string
	recipient string
	occasion  string
}

// Flow owns all in-progress builders, keyed by user id.
type Flow struct {
	mu       sync.Mutex
	builders map[string]*builder
	now      func() time.Time
}

func NewFlow() *Flow {
	return &Flow{
		builders: make(map[string]*builder),
		now:      time.Now,
	}
}

func (f *Flow) builderFor(userID string) *builder {
	b, ok := f.builders[userID]
	if !ok {
		b = &builder{
			qty:   make(map[string]int),
			lines: make(map[string]models.GiftLine),
		}
		f.builders[userID] = b
	}
	return b
}

// Start resets the user's builder to the first step.
func (f *Flow) Start(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.builders, userID)
	f.builderFor(userID)
}

// Step reports the user's current wizard step.
func (f *Flow) Step(userID string) Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builderFor(userID).step
}

// ChooseBox records the selected box. The box is presentational; it does not
// affect the bundle price.
func (f *Flow) ChooseBox(userID, boxID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builderFor(userID).boxID = boxID
}

// SetItem sets the selected quantity for a product. A quantity of zero (or
// less) removes the product from the selection entirely.
func (f *Flow) SetItem(userID string, product models.Product, qty int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.builderFor(userID)

	if qty <= 0 {
		if _, ok := b.qty[product.ProductID]; ok {
			delete(b.qty, product.ProductID)
			delete(b.lines, product.ProductID)
			for i, id := range b.order {
				if id == product.ProductID {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		}
		return
	}

	if _, ok := b.qty[product.ProductID]; !ok {
		b.order = append(b.order, product.ProductID)
	}
	b.qty[product.ProductID] = qty
	b.lines[product.ProductID] = models.GiftLine{
		ProductID: product.ProductID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  qty,
	}
}

// TotalItems is the sum of selected quantities.
func (f *Flow) TotalItems(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builderFor(userID).totalItems()
}

func (b *builder) totalItems() int {
	var n int
	for _, q := range b.qty {
		n += q
	}
	return n
}

// Next advances one step. Leaving ChooseProducts requires at least one
// selected item; a gated advance is silently ignored.
func (f *Flow) Next(userID string) Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.builderFor(userID)

	if b.step >= StepCustomMessage {
		return b.step
	}
	if b.step == StepChooseProducts && b.totalItems() == 0 {
		return b.step
	}
	b.step++
	return b.step
}

// Back moves one step back; going back from the first step is a no-op.
func (f *Flow) Back(userID string) Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.builderFor(userID)

	if b.step > StepChooseBox {
		b.step--
	}
	return b.step
}

// SetDetails records the greeting-card metadata. The message is hard
// truncated at MaxMessageLen.
func (f *Flow) SetDetails(userID, message, recipient, occasion string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.builderFor(userID)

	if r := []rune(message); len(r) > MaxMessageLen {
		message = string(r[:MaxMessageLen])
	}
	b.message = message
	b.recipient = recipient
	b.occasion = occasion
}

// Confirm materializes the selection into exactly one gift bundle cart line
// and abandons the builder state. Confirming with no selected items is a
// no-op and returns false.
func (f *Flow) Confirm(userID string, carts *cart.Store) (models.CartItem, bool) {
	f.mu.Lock()
	b := f.builderFor(userID)

	if b.totalItems() == 0 {
		f.mu.Unlock()
		return models.CartItem{}, false
	}

	var total float64
	giftItems := make([]models.GiftLine, 0, len(b.order))
	for _, id := range b.order {
		line := b.lines[id]
		giftItems = append(giftItems, line)
		total += line.Price * float64(line.Quantity)
	}

	bundle := models.CartItem{
		ItemID:    "GIFT" + strconv.FormatInt(f.now().UnixNano(), 10),
		Name:      "Custom Gift Box",
		Price:     total,
		Quantity:  1,
		IsGift:    true,
		BoxID:     b.boxID,
		GiftItems: giftItems,
		Message:   b.message,
		Recipient: b.recipient,
		Occasion:  b.occasion,
	}

	delete(f.builders, userID)
	f.mu.Unlock()

	carts.AddToCart(userID, bundle)
	return bundle, true
}
