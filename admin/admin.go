package admin

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"hampr/db"
	"hampr/filemgr"
	"hampr/models"
	"hampr/orders"
	"hampr/rdx"
	"hampr/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Handlers is the back-office surface: product CRUD, order oversight, and
// rating moderation. All routes sit behind the admin role.
type Handlers struct {
	Orders *orders.Handlers
}

func NewHandlers(orderHandlers *orders.Handlers) *Handlers {
	return &Handlers{Orders: orderHandlers}
}

// invalidateProductCache drops the cached product list after any write.
func invalidateProductCache() {
	if _, err := rdx.RdxDel("products"); err != nil {
		log.Println("product cache invalidate error:", err)
	}
}

// CreateProduct ingests a product payload. Field-name reconciliation happens
// in the model's decoder, so whatever naming convention the payload uses, the
// stored document is normalized.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product payload")
		return
	}
	if product.Name == "" || product.Price < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}

	if product.ProductID == "" {
		product.ProductID = utils.GetUUID()
	}
	product.CreatedAt = time.Now()

	if _, err := db.ProductsCollection.InsertOne(ctx, product); err != nil {
		log.Println("CreateProduct insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	invalidateProductCache()
	utils.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product payload")
		return
	}
	if product.Price < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Price must be non-negative")
		return
	}

	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"price":       product.Price,
		"category":    product.Category,
		"image":       product.Image,
		"colors":      product.Colors,
		"sizes":       product.Sizes,
		"inStock":     product.InStock,
		"description": product.Description,
	}}

	res, err := db.ProductsCollection.UpdateOne(ctx, bson.M{"productid": ps.ByName("productid")}, update)
	if err != nil {
		log.Println("UpdateProduct error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	invalidateProductCache()
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "updated"})
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.ProductsCollection.DeleteOne(ctx, bson.M{"productid": ps.ByName("productid")})
	if err != nil {
		log.Println("DeleteProduct error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	invalidateProductCache()
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "deleted"})
}

// UploadProductImage accepts a multipart image, stores it with a thumbnail,
// and attaches the generated name to the product.
func (h *Handlers) UploadProductImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	name, err := filemgr.SaveProductImage(file, header)
	if err != nil {
		log.Println("UploadProductImage error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Could not process image")
		return
	}

	_, err = db.ProductsCollection.UpdateOne(ctx,
		bson.M{"productid": ps.ByName("productid")},
		bson.M{"$set": bson.M{"image": name}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to attach image")
		return
	}

	invalidateProductCache()
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"image": name})
}

// ListOrders returns every known order, newest first.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, h.Orders.Store.All())
}

// UpdateOrderStatus drives the status dropdown. An effective change lands on
// the order change feed, which is what triggers review prompts downstream.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var payload struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if !models.ValidOrderStatus(payload.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown status")
		return
	}

	if !h.Orders.ApplyStatus(ps.ByName("orderid"), payload.Status) {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": payload.Status})
}

// ListRatings pages through all ratings for moderation.
func (h *Handlers) ListRatings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 20, 200)
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})

	items, err := utils.FindAndDecode[models.Rating](ctx, db.RatingsCollection, bson.M{}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve ratings")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handlers) DeleteRating(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.RatingsCollection.DeleteOne(ctx, bson.M{"ratingid": ps.ByName("ratingid")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete rating")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Rating not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "deleted"})
}
