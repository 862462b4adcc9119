package catalog

import "storefront/internal/model"

// productSet implements ProductSet. Adding an id that is already present
// replaces the stored product but keeps its position.
type productSet struct {
	index    map[string]int
	products []model.Product
}

// NewProductSet creates an empty product set.
func NewProductSet(capacity int) ProductSet {
	return newProductSet(capacity)
}

func newProductSet(capacity int) *productSet {
	return &productSet{
		index:    make(map[string]int, capacity),
		products: make([]model.Product, 0, capacity),
	}
}

func (s *productSet) Contains(id string) bool {
	_, exists := s.index[id]
	return exists
}

func (s *productSet) Products() []model.Product {
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *productSet) Size() int {
	return len(s.products)
}

// Add inserts or replaces p.
func (s *productSet) Add(p model.Product) {
	if i, exists := s.index[p.ID]; exists {
		s.products[i] = p
		return
	}
	s.index[p.ID] = len(s.products)
	s.products = append(s.products, p)
}

// Merge adds every product of other, later entries winning.
func (s *productSet) Merge(other ProductSet) {
	for _, p := range other.Products() {
		s.Add(p)
	}
}
