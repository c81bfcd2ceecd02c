package memory

import (
	"context"
	"sync"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// OrderRepository provides in-memory order storage
type OrderRepository struct {
	mu     sync.RWMutex
	orders []*entities.Order
}

// NewOrderRepository creates a new in-memory order repository
func NewOrderRepository(expectedOrders int) *OrderRepository {
	return &OrderRepository{orders: make([]*entities.Order, 0, expectedOrders)}
}

// Verify interface compliance
var _ repositories.OrderRepository = (*OrderRepository)(nil)

// LoadOrders appends orders to the repository
func (r *OrderRepository) LoadOrders(orders []*entities.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range orders {
		copied := *o
		r.orders = append(r.orders, &copied)
	}
	return nil
}

// ListActiveOrders returns copies of the in-progress orders in insertion order
func (r *OrderRepository) ListActiveOrders(ctx context.Context) ([]*entities.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []*entities.Order
	for _, o := range r.orders {
		if o.IsActive() {
			copied := *o
			active = append(active, &copied)
		}
	}
	return active, nil
}
