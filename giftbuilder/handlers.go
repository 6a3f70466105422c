package giftbuilder

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"hampr/cart"
	"hampr/db"
	"hampr/models"
	"hampr/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

type Handlers struct {
	Flow  *Flow
	Carts *cart.Store
}

func NewHandlers(flow *Flow, carts *cart.Store) *Handlers {
	return &Handlers{Flow: flow, Carts: carts}
}

func (h *Handlers) state(userID string) utils.M {
	return utils.M{
		"step":       h.Flow.Step(userID).String(),
		"totalItems": h.Flow.TotalItems(userID),
	}
}

func (h *Handlers) Start(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.Flow.Start(userID)
	utils.RespondWithJSON(w, http.StatusOK, h.state(userID))
}

// State reports the current step and selection size, for page reloads.
func (h *Handlers) State(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, h.state(userID))
}

func (h *Handlers) ChooseBox(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		BoxID string `json:"boxId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.BoxID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	h.Flow.ChooseBox(userID, payload.BoxID)
	utils.RespondWithJSON(w, http.StatusOK, h.state(userID))
}

// SetItem sets the quantity for a product in the selection. The product is
// looked up so the bundle line carries a price snapshot taken now, not at
// confirmation.
func (h *Handlers) SetItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ProductID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	if err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": payload.ProductID}).Decode(&product); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	h.Flow.SetItem(userID, product, payload.Quantity)
	utils.RespondWithJSON(w, http.StatusOK, h.state(userID))
}

func (h *Handlers) Next(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.Flow.Next(userID)
	utils.RespondWithJSON(w, http.StatusOK, h.state(userID))
}

func (h *Handlers) Back(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.Flow.Back(userID)
	utils.RespondWithJSON(w, http.StatusOK, h.state(userID))
}

func (h *Handlers) SetDetails(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		Message   string `json:"message"`
		Recipient string `json:"recipient"`
		Occasion  string `json:"occasion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	h.Flow.SetDetails(userID, payload.Message, payload.Recipient, payload.Occasion)
	utils.RespondWithJSON(w, http.StatusOK, h.state(userID))
}

// Confirm turns the accumulated selection into one gift bundle cart line.
// Confirming an empty selection is a no-op.
func (h *Handlers) Confirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bundle, ok := h.Flow.Confirm(userID, h.Carts)
	if !ok {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"added": false})
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"added": true, "bundle": bundle})
}
