package repositories

import (
	"context"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// ProductRepository provides access to products and their bills of material.
// GetProduct returns an error matching entities.ErrNotFound for unknown products.
type ProductRepository interface {
	GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error)
}
