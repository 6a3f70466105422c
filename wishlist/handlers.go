package wishlist

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

func (h *Handlers) mirror(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := db.WishlistCollection.ReplaceOne(ctx,
		bson.M{"userId": userID},
		bson.M{"userId": userID, "items": h.Store.Items(userID), "updatedAt": time.Now()},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		log.Println("wishlist mirror error:", err)
	}
}

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, h.Store.Items(userID))
}

func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var item models.WishlistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item.ProductID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	h.Store.Add(userID, item)
	go h.mirror(userID)
	utils.RespondWithJSON(w, http.StatusCreated, h.Store.Items(userID))
}

func (h *Handlers) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.Store.Remove(userID, ps.ByName("productid"))
	go h.mirror(userID)
	utils.RespondWithJSON(w, http.StatusOK, h.Store.Items(userID))
}
