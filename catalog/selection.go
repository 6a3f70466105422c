package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"hampr/db"
	"hampr/models"
	"hampr/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// SelectionStore tracks which product each user currently has open in the
// quick-view modal. At most one selection per user; selecting replaces the
// previous one. Session-scoped, never persisted.
type SelectionStore struct {
	mu       sync.Mutex
	selected map[string]string // user id -> product id
}

func NewSelectionStore() *SelectionStore {
	return &SelectionStore{selected: make(map[string]string)}
}

// Select records the product as the user's current quick-view target.
func (s *SelectionStore) Select(userID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[userID] = productID
}

// Selected returns the user's current quick-view product id, if any.
func (s *SelectionStore) Selected(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.selected[userID]
	return id, ok
}

// Clear closes the user's quick-view.
func (s *SelectionStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, userID)
}

// OpenQuickView sets the caller's quick-view selection.
func (h *Handlers) OpenQuickView(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "productId is required")
		return
	}

	h.Selection.Select(userID, req.ProductID)
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"productId": req.ProductID})
}

// GetQuickView resolves the caller's current selection to a full product.
// No selection reads as 404, as does a selection whose product has since
// been deleted.
func (h *Handlers) GetQuickView(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	productID, ok := h.Selection.Selected(userID)
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "No product selected")
		return
	}

	if p, found := h.Store.Get(productID); found {
		utils.RespondWithJSON(w, http.StatusOK, p)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var p models.Product
	if err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": productID}).Decode(&p); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// CloseQuickView clears the caller's selection.
func (h *Handlers) CloseQuickView(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	h.Selection.Clear(userID)
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
