package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// ProductRepository provides in-memory product and BOM storage
type ProductRepository struct {
	mu       sync.RWMutex
	products map[entities.ProductID]*entities.Product
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(expectedProducts int) *ProductRepository {
	return &ProductRepository{products: make(map[entities.ProductID]*entities.Product, expectedProducts)}
}

// Verify interface compliance
var _ repositories.ProductRepository = (*ProductRepository)(nil)

// LoadProducts stores products, replacing any with the same ID
func (r *ProductRepository) LoadProducts(products []*entities.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		if p == nil {
			return fmt.Errorf("cannot load nil product")
		}
		r.products[p.ID] = p
	}
	return nil
}

// GetProduct returns the product with its bill of materials
func (r *ProductRepository) GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, entities.ErrNotFound)
	}
	return p, nil
}

// Count returns the number of stored products
func (r *ProductRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}
