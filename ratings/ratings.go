package ratings

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"hampr/db"
	"hampr/models"
	"hampr/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetRatings returns a page of ratings for a product.
// ?sort= recognizes newest | highest | lowest; anything else means newest.
// Authenticated callers additionally get their own rating under "mine".
func GetRatings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	productID := ps.ByName("productid")

	skip, limit := utils.ParsePagination(r, 10, 100)
	sort := utils.ParseSort(r.URL.Query().Get("sort"), bson.D{{Key: "createdAt", Value: -1}}, map[string]bson.D{
		"highest": {{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}},
		"lowest":  {{Key: "rating", Value: 1}, {Key: "createdAt", Value: -1}},
	})

	filter := bson.M{"productId": productID}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)

	items, err := utils.FindAndDecode[models.Rating](ctx, db.RatingsCollection, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve ratings")
		return
	}

	total, err := db.RatingsCollection.CountDocuments(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to count ratings")
		return
	}

	resp := utils.M{"items": items, "total": total}
	if userID := utils.GetUserIDFromRequest(r); userID != "" {
		var mine models.Rating
		err := db.RatingsCollection.FindOne(ctx, bson.M{
			"userId":    userID,
			"productId": productID,
		}).Decode(&mine)
		if err == nil {
			resp["mine"] = mine
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GetMyRating returns the caller's rating for a product, or null.
func GetMyRating(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var rating models.Rating
	err := db.RatingsCollection.FindOne(ctx, bson.M{
		"userId":    userID,
		"productId": ps.ByName("productid"),
	}).Decode(&rating)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve rating")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rating)
}

// ClampRating rounds to the nearest integer and clamps into the 1 to 5 range.
func ClampRating(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return n
}

// SubmitRating upserts the caller's rating for a product, keyed
// (user, product). This call is awaited by the storefront, so failures are
// surfaced, unlike the fire-and-forget order mirror.
func SubmitRating(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		ProductID string  `json:"productId"`
		Rating    float64 `json:"rating"`
		Review    string  `json:"review"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ProductID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid rating data")
		return
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"rating":    ClampRating(payload.Rating),
			"review":    payload.Review,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"ratingid":  utils.GenerateRandomString(16),
			"userId":    userID,
			"productId": payload.ProductID,
			"createdAt": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := db.RatingsCollection.UpdateOne(ctx, bson.M{
		"userId":    userID,
		"productId": payload.ProductID,
	}, update, opts); err != nil {
		log.Println("SubmitRating upsert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save rating")
		return
	}

	go RecomputeAverage(payload.ProductID)

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"status": "saved"})
}

// RecomputeAverage recalculates the product's stored average rating.
// Best-effort; the ratings collection stays the source of truth.
func RecomputeAverage(productID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := db.RatingsCollection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		log.Println("RecomputeAverage aggregate error:", err)
		return
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil || len(results) == 0 {
		return
	}

	_, err = db.ProductsCollection.UpdateOne(ctx,
		bson.M{"productid": productID},
		bson.M{"$set": bson.M{
			"averageRating": results[0].Avg,
			"ratingCount":   results[0].Count,
		}},
	)
	if err != nil {
		log.Println("RecomputeAverage update error:", err)
	}
}
