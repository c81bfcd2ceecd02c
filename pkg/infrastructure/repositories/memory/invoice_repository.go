package memory

import (
	"context"
	"sync"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// InvoiceRepository provides in-memory invoice health keyed by order
type InvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[entities.OrderID]entities.FinancialHealth
}

// NewInvoiceRepository creates a new in-memory invoice repository
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{invoices: make(map[entities.OrderID]entities.FinancialHealth)}
}

// Verify interface compliance
var _ repositories.InvoiceRepository = (*InvoiceRepository)(nil)

// SetInvoiceHealth records the invoice position for an order
func (r *InvoiceRepository) SetInvoiceHealth(orderID entities.OrderID, health entities.FinancialHealth) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[orderID] = health
}

// GetInvoiceHealth returns the invoice position, or nil when the order has no invoice
func (r *InvoiceRepository) GetInvoiceHealth(ctx context.Context, orderID entities.OrderID) (*entities.FinancialHealth, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.invoices[orderID]
	if !ok {
		return nil, nil
	}
	return &h, nil
}
