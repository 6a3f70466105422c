package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection       *mongo.Collection
	ProductsCollection   *mongo.Collection
	GiftBoxCollection    *mongo.Collection
	CartCollection       *mongo.Collection
	WishlistCollection   *mongo.Collection
	OrderCollection      *mongo.Collection
	OrderItemsCollection *mongo.Collection
	RatingsCollection    *mongo.Collection
	Client               *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ClientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), ClientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("hamprdb")
	UserCollection = database.Collection("users")
	ProductsCollection = database.Collection("products")
	GiftBoxCollection = database.Collection("giftboxes")
	CartCollection = database.Collection("carts")
	WishlistCollection = database.Collection("wishlists")
	OrderCollection = database.Collection("orders")
	OrderItemsCollection = database.Collection("orderitems")
	RatingsCollection = database.Collection("ratings")
}
