package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"hampr/db"
	"hampr/models"
	"hampr/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Handlers struct {
	Store *Store
}

func NewHandlers(store *Store) *Handlers {
	return &Handlers{Store: store}
}

type cartResponse struct {
	Items  []models.CartItem `json:"items"`
	Total  float64           `json:"total"`
	Count  int               `json:"count"`
	IsOpen bool              `json:"isOpen"`
}

func (h *Handlers) respond(w http.ResponseWriter, userID string) {
	utils.RespondWithJSON(w, http.StatusOK, cartResponse{
		Items:  h.Store.Items(userID),
		Total:  h.Store.CartTotal(userID),
		Count:  h.Store.CartItemsCount(userID),
		IsOpen: h.Store.IsOpen(userID),
	})
}

// mirrorCart upserts the cart document for admin visibility. Best-effort.
func (h *Handlers) mirrorCart(userID string) {
	items := h.Store.Items(userID)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := db.CartCollection.ReplaceOne(ctx,
		bson.M{"userId": userID},
		bson.M{"userId": userID, "items": items, "updatedAt": time.Now()},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		log.Println("mirrorCart error:", err)
	}
}

// GetCart returns the user's cart with derived totals.
func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.respond(w, userID)
}

// AddToCart adds a plain line (merged by product id) or a gift bundle
// (always a new line) and opens the cart panel.
func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var item models.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		log.Println("AddToCart decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if item.ItemID == "" || item.Price < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}

	h.Store.AddToCart(userID, item)
	go h.mirrorCart(userID)
	h.respond(w, userID)
}

// UpdateQuantity sets a line's quantity; values below 1 are a no-op.
func (h *Handlers) UpdateQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	h.Store.UpdateQuantity(userID, ps.ByName("itemid"), payload.Quantity)
	go h.mirrorCart(userID)
	h.respond(w, userID)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.Store.RemoveFromCart(userID, ps.ByName("itemid"))
	go h.mirrorCart(userID)
	h.respond(w, userID)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.Store.ClearCart(userID)
	go h.mirrorCart(userID)
	h.respond(w, userID)
}

// TogglePanel flips the cart panel flag without touching the line list.
func (h *Handlers) TogglePanel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.Store.ToggleCart(userID)
	h.respond(w, userID)
}
