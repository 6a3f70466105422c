package catalog

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"hampr/db"
	"hampr/models"
	"hampr/rdx"
	"hampr/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Handlers serves the product catalog over HTTP, backed by the injected
// store. The store is warmed from Mongo (with a Redis-cached list) and the
// filtered view is derived per request from query parameters.
type Handlers struct {
	Store     *Store
	Selection *SelectionStore
}

func NewHandlers(store *Store) *Handlers {
	return &Handlers{Store: store, Selection: NewSelectionStore()}
}

// Refresh loads the product list from Mongo into the store, consulting the
// Redis cache first.
func (h *Handlers) Refresh(ctx context.Context) error {
	if cached, _ := rdx.RdxGet("products"); cached != "" {
		var list []models.Product
		if err := json.Unmarshal([]byte(cached), &list); err == nil {
			h.Store.SetProducts(list)
			return nil
		}
	}

	list, err := utils.FindAndDecode[models.Product](ctx, db.ProductsCollection, bson.M{})
	if err != nil {
		return err
	}
	h.Store.SetProducts(list)

	if data, err := json.Marshal(list); err == nil {
		if err := rdx.RdxSetWithExpiry("products", string(data), 5*time.Minute); err != nil {
			log.Println("products cache write error:", err)
		}
	}
	return nil
}

// GetProducts returns the filtered/sorted product list.
// Filters come from query params: q, category, color, size, inStock,
// minPrice, maxPrice, sort (price-asc | price-desc | newest).
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Refresh(ctx); err != nil {
		log.Println("GetProducts refresh error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load products")
		return
	}

	filters := parseFilters(r)
	view := Apply(h.Store.Products(), filters)

	utils.RespondWithJSON(w, http.StatusOK, view)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	productID := ps.ByName("productid")

	if p, ok := h.Store.Get(productID); ok {
		utils.RespondWithJSON(w, http.StatusOK, p)
		return
	}

	var p models.Product
	if err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": productID}).Decode(&p); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// GetGiftBoxes lists the box choices offered by the gift builder.
func (h *Handlers) GetGiftBoxes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	boxes, err := utils.FindAndDecode[models.GiftBox](ctx, db.GiftBoxCollection, bson.M{})
	if err != nil {
		log.Println("GetGiftBoxes error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load gift boxes")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, boxes)
}

func parseFilters(r *http.Request) FilterState {
	q := r.URL.Query()
	var f FilterState

	f.Query = q.Get("q")
	if v := q.Get("category"); v != "" {
		f.Category = &v
	}
	if v := q.Get("color"); v != "" {
		f.Color = &v
	}
	if v := q.Get("size"); v != "" {
		f.Size = &v
	}
	if v := q.Get("inStock"); v != "" {
		b := v == "true"
		f.InStock = &b
	}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		f.PriceMin = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		f.PriceMax = &v
	}
	switch SortOption(q.Get("sort")) {
	case SortPriceAsc:
		f.Sort = SortPriceAsc
	case SortPriceDesc:
		f.Sort = SortPriceDesc
	case SortNewest:
		f.Sort = SortNewest
	}
	return f
}
