package models

import (
	"encoding/json"
	"time"
)

// Product is the normalized catalog row. Upstream payloads are inconsistent
// about field names (color vs color_variants, image vs image_url, inStock vs
// in_stock); the reconciliation happens exactly once, in UnmarshalJSON, and
// consuming code only ever sees this shape.
type Product struct {
	ProductID     string    `json:"id" bson:"productid"`
	Name          string    `json:"name" bson:"name"`
	Price         float64   `json:"price" bson:"price"`
	Category      string    `json:"category" bson:"category"`
	Image         string    `json:"image" bson:"image"`
	Colors        []string  `json:"colors" bson:"colors"`
	Sizes         []string  `json:"sizes" bson:"sizes"`
	InStock       bool      `json:"inStock" bson:"inStock"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	AverageRating float64   `json:"averageRating,omitempty" bson:"averageRating,omitempty"`
	RatingCount   int       `json:"ratingCount,omitempty" bson:"ratingCount,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// productWire carries every field spelling seen in the wild. Pointer fields
// distinguish "absent" from zero values.
type productWire struct {
	ID         string   `json:"id"`
	ProductID  string   `json:"productId"`
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Price      float64  `json:"price"`
	Category   string   `json:"category"`
	Image      string   `json:"image"`
	ImageURL   string   `json:"image_url"`
	Colors     []string `json:"colors"`
	ColorVar   []string `json:"color_variants"`
	Sizes      []string `json:"sizes"`
	SizeVar    []string `json:"size_variants"`
	InStock    *bool    `json:"inStock"`
	InStockAlt *bool    `json:"in_stock"`
	Stock      *int     `json:"stock"`
	Desc       string   `json:"description"`
	AvgRating  float64  `json:"averageRating"`
	Count      int      `json:"ratingCount"`
	CreatedAt  string   `json:"createdAt"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	p.ProductID = firstNonEmpty(w.ID, w.ProductID)
	p.Name = firstNonEmpty(w.Name, w.Title)
	p.Price = w.Price
	p.Category = w.Category
	p.Image = firstNonEmpty(w.Image, w.ImageURL)
	p.Colors = firstNonNil(w.Colors, w.ColorVar)
	p.Sizes = firstNonNil(w.Sizes, w.SizeVar)
	p.Description = w.Desc
	p.AverageRating = w.AvgRating
	p.RatingCount = w.Count

	switch {
	case w.InStock != nil:
		p.InStock = *w.InStock
	case w.InStockAlt != nil:
		p.InStock = *w.InStockAlt
	case w.Stock != nil:
		p.InStock = *w.Stock > 0
	default:
		p.InStock = true
	}

	if w.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
			p.CreatedAt = t
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonNil(vals ...[]string) []string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// GiftBox is a presentational box choice for the gift builder. The box does
// not contribute to the bundle price.
type GiftBox struct {
	BoxID       string `json:"id" bson:"boxid"`
	Name        string `json:"name" bson:"name"`
	Image       string `json:"image" bson:"image"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}
