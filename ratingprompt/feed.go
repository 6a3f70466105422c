package ratingprompt

import (
	"context"
	"encoding/json"
	"log"

	"hampr/db"
	"hampr/models"
	"hampr/orders"
	"hampr/rdx"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Subscribe consumes the order change feed until ctx is cancelled. Each
// delivered {old, new} pair goes through HandleOrderEvent. Cancelling the
// context closes the subscription and stops the pipeline's pending timers.
func (p *Pipeline) Subscribe(ctx context.Context) {
	sub := rdx.Conn.Subscribe(ctx, orders.EventsChannel)
	ch := sub.Channel()

	log.Println("[RatingPrompt] Listening for order status changes...")

	go func() {
		<-ctx.Done()
		sub.Close()
		p.Stop()
	}()

	for msg := range ch {
		var ev models.OrderEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("[RatingPrompt] bad event payload: %v", err)
			continue
		}
		p.HandleOrderEvent(ctx, ev)
	}
}

// MongoResolver resolves an order's product ids by querying candidate
// line-item collections in sequence until one yields rows.
type MongoResolver struct {
	Collections []*mongo.Collection
}

func NewMongoResolver() *MongoResolver {
	return &MongoResolver{
		Collections: []*mongo.Collection{db.OrderItemsCollection, db.OrderCollection},
	}
}

func (m *MongoResolver) Resolve(ctx context.Context, order models.Order) ([]string, error) {
	for _, coll := range m.Collections {
		ids, err := resolveFrom(ctx, coll, order.OrderID)
		if err != nil {
			// Treated as "nothing found here"; try the next candidate.
			log.Printf("[RatingPrompt] resolve error on %s: %v", coll.Name(), err)
			continue
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}
	return nil, nil
}

func resolveFrom(ctx context.Context, coll *mongo.Collection, orderID string) ([]string, error) {
	cursor, err := coll.Find(ctx, bson.M{"orderId": orderID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	seen := make(map[string]bool)
	var ids []string
	for cursor.Next(ctx) {
		var row struct {
			ProductID string            `bson:"productId"`
			Items     []models.CartItem `bson:"items"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		if row.ProductID != "" && !seen[row.ProductID] {
			seen[row.ProductID] = true
			ids = append(ids, row.ProductID)
		}
		for _, it := range row.Items {
			if it.IsGift {
				for _, g := range it.GiftItems {
					if g.ProductID != "" && !seen[g.ProductID] {
						seen[g.ProductID] = true
						ids = append(ids, g.ProductID)
					}
				}
				continue
			}
			if it.ItemID != "" && !seen[it.ItemID] {
				seen[it.ItemID] = true
				ids = append(ids, it.ItemID)
			}
		}
	}
	return ids, cursor.Err()
}
