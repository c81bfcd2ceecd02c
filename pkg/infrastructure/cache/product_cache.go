package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// Store is the key-value surface the product cache needs
type Store interface {
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Observer is notified of cache hits and misses
type Observer interface {
	CacheHit()
	CacheMiss()
}

// ProductRepository serves product master data from the cache and falls back
// to the wrapped repository on a miss or cache failure
type ProductRepository struct {
	next     repositories.ProductRepository
	store    Store
	ttl      time.Duration
	observer Observer
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository wraps next with a read-through cache; observer may be nil
func NewProductRepository(next repositories.ProductRepository, store Store, ttl time.Duration, observer Observer) *ProductRepository {
	return &ProductRepository{next: next, store: store, ttl: ttl, observer: observer}
}

// GetProductCacheKey generates a cache key for product data
func GetProductCacheKey(id entities.ProductID) string {
	return fmt.Sprintf("product:%s", id)
}

// GetProduct returns the cached product or loads and caches it
func (r *ProductRepository) GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	key := GetProductCacheKey(id)

	var cached entities.Product
	err := r.store.Get(ctx, key, &cached)
	switch {
	case err == nil:
		r.hit()
		return &cached, nil
	case errors.Is(err, ErrCacheDisabled):
		return r.next.GetProduct(ctx, id)
	case !errors.Is(err, ErrCacheMiss):
		log.Warn().Err(err).Str("product_id", string(id)).Msg("product cache read failed, using repository")
	}
	r.miss()

	product, err := r.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.store.Set(ctx, key, product, r.ttl); err != nil {
		log.Warn().Err(err).Str("product_id", string(id)).Msg("failed to cache product")
	}
	return product, nil
}

func (r *ProductRepository) hit() {
	if r.observer != nil {
		r.observer.CacheHit()
	}
}

func (r *ProductRepository) miss() {
	if r.observer != nil {
		r.observer.CacheMiss()
	}
}
