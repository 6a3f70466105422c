package utils

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ParseSort maps a ?sort= value to a mongo sort document, falling back to
// def when the value is unknown. extra may add collection-specific mappings.
func ParseSort(value string, def bson.D, extra map[string]bson.D) bson.D {
	if extra != nil {
		if d, ok := extra[value]; ok {
			return d
		}
	}
	switch value {
	case "newest":
		return bson.D{{Key: "createdAt", Value: -1}}
	case "oldest":
		return bson.D{{Key: "createdAt", Value: 1}}
	}
	return def
}

// FindAndDecode runs Find and decodes all documents into a non-nil slice.
func FindAndDecode[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
