package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hampr/cart"
	"hampr/db"
	"hampr/models"
	"hampr/outbox"
	"hampr/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

type Handlers struct {
	Store *Store
	Carts *cart.Store

	// OnConfirmed receives the "order:confirmed" local event fired by
	// checkout. Wired to the rating prompt pipeline.
	OnConfirmed func(userID string, productIDs []string)
}

func NewHandlers(store *Store, carts *cart.Store) *Handlers {
	return &Handlers{Store: store, Carts: carts}
}

type checkoutPayload struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	PaymentMethod string `json:"paymentMethod"`
}

// Checkout snapshots the current cart into a new order, appends it to local
// history, clears the cart, and fires the best-effort mirror calls. The
// response does not wait on the mirroring outcome, nor reflect it.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload checkoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Println("Checkout decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if payload.Email == "" || payload.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	items := h.Carts.Items(userID)
	if len(items) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	order := models.Order{
		OrderID: "ORD" + strconv.FormatInt(time.Now().UnixNano()%1e6, 10),
		UserID:  userID,
		Customer: models.Customer{
			Name:       payload.Name,
			Email:      payload.Email,
			Phone:      payload.Phone,
			Address:    payload.Address,
			City:       payload.City,
			PostalCode: payload.PostalCode,
		},
		Items:         items,
		Total:         h.Carts.CartTotal(userID),
		Status:        models.StatusPending,
		PaymentMethod: payload.PaymentMethod,
		CreatedAt:     time.Now(),
	}

	h.Store.AddOrder(order)
	h.Carts.ClearCart(userID)

	token := bearerToken(r)
	go h.persist(order)
	go outbox.Emit(context.Background(), outbox.Message{Order: order, Token: token})

	if h.OnConfirmed != nil {
		h.OnConfirmed(userID, order.ProductIDs())
	}

	utils.RespondWithJSON(w, http.StatusCreated, order)
}

// persist writes the order and its flattened line items to Mongo.
// Best-effort: the in-memory history is already authoritative.
func (h *Handlers) persist(order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.OrderCollection.InsertOne(ctx, order); err != nil {
		log.Println("order persist error:", err)
	}

	var docs []interface{}
	for _, it := range order.Items {
		if it.IsGift {
			for _, g := range it.GiftItems {
				docs = append(docs, models.OrderItem{
					OrderID:   order.OrderID,
					ProductID: g.ProductID,
					Quantity:  g.Quantity,
					Price:     g.Price,
				})
			}
			continue
		}
		docs = append(docs, models.OrderItem{
			OrderID:   order.OrderID,
			ProductID: it.ItemID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	if len(docs) > 0 {
		if _, err := db.OrderItemsCollection.InsertMany(ctx, docs); err != nil {
			log.Println("order items persist error:", err)
		}
	}
}

// GetOrders returns the user's order history, newest first.
func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, h.Store.History(userID))
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	order, ok := h.Store.Get(userID, ps.ByName("orderid"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// ApplyStatus is used by the admin surface: it updates the store (which
// publishes to the change feed on an effective change) and mirrors the new
// status to Mongo.
func (h *Handlers) ApplyStatus(orderID string, status models.OrderStatus) bool {
	if !h.Store.UpdateOrderStatus(orderID, status) {
		return false
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := db.OrderCollection.UpdateOne(ctx,
			bson.M{"orderId": orderID},
			bson.M{"$set": bson.M{"status": status}},
		)
		if err != nil {
			log.Println("order status persist error:", err)
		}
	}()
	return true
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
