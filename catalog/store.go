package catalog

import (
	"sort"
	"sync"

	"hampr/models"
	"hampr/utils"
)

type SortOption string

const (
	SortNone      SortOption = ""
	SortPriceAsc  SortOption = "price-asc"
	SortPriceDesc SortOption = "price-desc"
	SortNewest    SortOption = "newest"
)

// FilterState is the full set of active filters. Nil pointer means the
// filter is inactive.
type FilterState struct {
	Category *string
	Color    *string
	Size     *string
	InStock  *bool
	PriceMin *float64
	PriceMax *float64
	Query    string
	Sort     SortOption
}

// Store holds the product catalog and a derived filtered/sorted view. The
// view is recomputed synchronously on every mutation, never patched in place.
type Store struct {
	mu       sync.RWMutex
	products []models.Product
	filters  FilterState
	view     []models.Product
}

func NewStore() *Store {
	return &Store{}
}

// SetProducts replaces the full catalog and recomputes the view.
func (s *Store) SetProducts(list []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = list
	s.recompute()
}

func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Query = q
	s.recompute()
}

func (s *Store) SetCategory(v *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Category = v
	s.recompute()
}

func (s *Store) SetColor(v *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Color = v
	s.recompute()
}

func (s *Store) SetSize(v *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Size = v
	s.recompute()
}

func (s *Store) SetInStock(v *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.InStock = v
	s.recompute()
}

func (s *Store) SetPriceRange(min, max *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.PriceMin = min
	s.filters.PriceMax = max
	s.recompute()
}

func (s *Store) SetSortOption(opt SortOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Sort = opt
	s.recompute()
}

func (s *Store) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = FilterState{}
	s.recompute()
}

// View returns the current filtered/sorted product list.
func (s *Store) View() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.view))
	copy(out, s.view)
	return out
}

// Products returns the unfiltered catalog.
func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Get looks up a product by id in the full catalog.
func (s *Store) Get(productID string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ProductID == productID {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Store) recompute() {
	s.view = Apply(s.products, s.filters)
}

// Apply is the pure recompute step: same (products, filters) in, same
// membership and order out. An empty result is a valid output.
func Apply(products []models.Product, f FilterState) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Query != "" && !utils.ContainsIgnoreCase(p.Name, f.Query) {
			continue
		}
		if f.Category != nil && p.Category != *f.Category {
			continue
		}
		if f.Color != nil && !contains(p.Colors, *f.Color) {
			continue
		}
		if f.Size != nil && !contains(p.Sizes, *f.Size) {
			continue
		}
		if f.InStock != nil && p.InStock != *f.InStock {
			continue
		}
		if f.PriceMin != nil && p.Price < *f.PriceMin {
			continue
		}
		if f.PriceMax != nil && p.Price > *f.PriceMax {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

func contains(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}
