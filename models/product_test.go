package models

import (
	"encoding/json"
	"testing"
	"time"
)

func decode(t *testing.T, raw string) Product {
	t.Helper()
	var p Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return p
}

func TestProductCanonicalFields(t *testing.T) {
	p := decode(t, `{
		"id": "P1",
		"name": "Lavender Candle",
		"price": 12.5,
		"category": "candles",
		"image": "/img/p1.jpg",
		"colors": ["purple"],
		"sizes": ["small"],
		"inStock": true,
		"createdAt": "2025-03-01T10:00:00Z"
	}`)

	if p.ProductID != "P1" || p.Name != "Lavender Candle" || p.Price != 12.5 {
		t.Fatalf("bad decode: %+v", p)
	}
	if !p.InStock {
		t.Fatal("expected in stock")
	}
	want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if !p.CreatedAt.Equal(want) {
		t.Fatalf("createdAt = %v", p.CreatedAt)
	}
}

func TestProductAliasSpellings(t *testing.T) {
	p := decode(t, `{
		"productId": "P2",
		"title": "Tea Sampler",
		"image_url": "/img/p2.jpg",
		"color_variants": ["green", "black"],
		"size_variants": ["100g"],
		"in_stock": false
	}`)

	if p.ProductID != "P2" {
		t.Fatalf("productId alias not picked up: %q", p.ProductID)
	}
	if p.Name != "Tea Sampler" {
		t.Fatalf("title alias not picked up: %q", p.Name)
	}
	if p.Image != "/img/p2.jpg" {
		t.Fatalf("image_url alias not picked up: %q", p.Image)
	}
	if len(p.Colors) != 2 || p.Colors[0] != "green" {
		t.Fatalf("color_variants alias not picked up: %v", p.Colors)
	}
	if len(p.Sizes) != 1 || p.Sizes[0] != "100g" {
		t.Fatalf("size_variants alias not picked up: %v", p.Sizes)
	}
	if p.InStock {
		t.Fatal("in_stock=false must win")
	}
}

func TestProductCanonicalSpellingWins(t *testing.T) {
	p := decode(t, `{
		"id": "P3",
		"productId": "ignored",
		"name": "Mug",
		"title": "ignored",
		"image": "/img/canonical.jpg",
		"image_url": "/img/ignored.jpg"
	}`)

	if p.ProductID != "P3" || p.Name != "Mug" || p.Image != "/img/canonical.jpg" {
		t.Fatalf("canonical spelling must win: %+v", p)
	}
}

func TestProductStockCount(t *testing.T) {
	if p := decode(t, `{"id":"P4","stock":3}`); !p.InStock {
		t.Fatal("stock > 0 means in stock")
	}
	if p := decode(t, `{"id":"P5","stock":0}`); p.InStock {
		t.Fatal("stock 0 means out of stock")
	}
	// no stock signal at all defaults to available
	if p := decode(t, `{"id":"P6"}`); !p.InStock {
		t.Fatal("absent stock fields default to in stock")
	}
}

func TestProductSurvivesCacheRoundTrip(t *testing.T) {
	in := Product{
		ProductID:     "P7",
		Name:          "Honey Jar",
		Price:         8,
		Category:      "pantry",
		Image:         "/img/p7.jpg",
		Colors:        []string{"amber"},
		Sizes:         []string{"250g"},
		InStock:       true,
		Description:   "wildflower honey",
		AverageRating: 4.5,
		RatingCount:   12,
		CreatedAt:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := decode(t, string(data))

	if out.AverageRating != 4.5 || out.RatingCount != 12 {
		t.Fatalf("rating fields lost in round trip: avg=%v count=%d", out.AverageRating, out.RatingCount)
	}
	if out.ProductID != in.ProductID || out.Name != in.Name || !out.InStock {
		t.Fatalf("round trip mangled product: %+v", out)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("createdAt lost: %v", out.CreatedAt)
	}
}

func TestOrderProductIDsFlattenBundles(t *testing.T) {
	order := Order{
		Items: []CartItem{
			{ItemID: "P1"},
			{ItemID: "GIFT1", IsGift: true, GiftItems: []GiftLine{
				{ProductID: "P2"}, {ProductID: "P1"},
			}},
			{ItemID: "P3"},
		},
	}

	ids := order.ProductIDs()
	want := []string{"P1", "P2", "P3"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}
