package models

import "time"

// Rating is one user's review of one product; upsert keyed (userId, productId).
type Rating struct {
	RatingID  string    `json:"ratingId" bson:"ratingid"`
	UserID    string    `json:"userId" bson:"userId"`
	Username  string    `json:"username,omitempty" bson:"username,omitempty"`
	ProductID string    `json:"productId" bson:"productId"`
	Rating    int       `json:"rating" bson:"rating"` // 1 to 5
	Review    string    `json:"review,omitempty" bson:"review,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
