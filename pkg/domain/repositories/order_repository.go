package repositories

import (
	"context"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// OrderRepository provides read access to customer orders
type OrderRepository interface {
	// ListActiveOrders returns every order in the InProgress state
	ListActiveOrders(ctx context.Context) ([]*entities.Order, error)
}
