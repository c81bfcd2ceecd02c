package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// PlanResult contains the complete output of a planning run
type PlanResult struct {
	RunID       string
	RunDate     time.Time
	Items       []PlanItem
	Procurement []entities.ProcurementItem
	Warnings    []string
}

// PlanItem is the dashboard view of one active order
type PlanItem struct {
	Order             *entities.Order
	ProductName       string
	RemainingQuantity entities.Quantity
	DailyTarget       entities.Quantity
	Machines          []MachineCapacity
	RawMaterials      []MaterialSufficiency
	MaterialAlert     bool
	Status            entities.PlanStatus
	DailyPlan         []entities.DailyPlanEntry
	FinancialHealth   *entities.FinancialHealth
	Issues            []entities.PlanIssue
}

// MachineCapacity is a machine's capacity on the order's first planning day
type MachineCapacity struct {
	MachineName   string
	MaxCapacity   entities.Quantity
	AvailableTime decimal.Decimal
	DowntimeRisk  bool
}

// MaterialSufficiency compares an order's material need with stock at order start
type MaterialSufficiency struct {
	Name          string
	TotalNeeded   decimal.Decimal
	Available     decimal.Decimal
	UnitOfMeasure string
	Warning       string
}

// CountByStatus tallies plan items per status
func (r *PlanResult) CountByStatus() map[entities.PlanStatus]int {
	counts := make(map[entities.PlanStatus]int)
	for _, item := range r.Items {
		counts[item.Status]++
	}
	return counts
}
