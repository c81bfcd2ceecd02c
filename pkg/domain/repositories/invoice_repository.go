package repositories

import (
	"context"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// InvoiceRepository provides read-only invoice health for orders.
// An order without an invoice yields (nil, nil).
type InvoiceRepository interface {
	GetInvoiceHealth(ctx context.Context, orderID entities.OrderID) (*entities.FinancialHealth, error)
}
