package orchestration

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vsinha/prodplan/pkg/application/dto"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// FinancialHealthJoiner attaches read-only invoice positions to plan items
type FinancialHealthJoiner struct {
	invoices repositories.InvoiceRepository
}

// NewFinancialHealthJoiner creates a joiner; a nil repository disables joining
func NewFinancialHealthJoiner(invoices repositories.InvoiceRepository) *FinancialHealthJoiner {
	return &FinancialHealthJoiner{invoices: invoices}
}

// Join sets the item's financial health. Lookup failures leave it unset and
// add a FinanceLookupFailed issue.
func (j *FinancialHealthJoiner) Join(ctx context.Context, item *dto.PlanItem) {
	if j.invoices == nil || item.Order == nil {
		return
	}

	health, err := j.invoices.GetInvoiceHealth(ctx, item.Order.ID)
	if err != nil {
		log.Warn().Err(err).Str("order_id", string(item.Order.ID)).Msg("finance lookup failed")
		item.Issues = append(item.Issues, entities.PlanIssue{
			Code:    entities.IssueFinanceLookupFailed,
			Message: fmt.Errorf("%w: %v", entities.ErrFinanceLookupFailed, err).Error(),
		})
		return
	}
	item.FinancialHealth = health
}
