package procurement

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/application/services/scheduling"
	"github.com/vsinha/prodplan/pkg/application/services/shared"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// Warning is a material-level problem found while planning purchases
type Warning struct {
	RawMaterialID entities.MaterialID
	OrderID       entities.OrderID
	Message       string
}

// Result is the consolidated procurement schedule for a run
type Result struct {
	Items    []entities.ProcurementItem
	Warnings []Warning
}

// TotalQuantity sums the quantity to buy for one material
func (r *Result) TotalQuantity(id entities.MaterialID) decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		if item.RawMaterialID == id {
			total = total.Add(item.QuantityNeeded)
		}
	}
	return total
}

// demand is one order's consumption of one material on one day
type demand struct {
	date  time.Time
	seq   int
	order entities.OrderID
	qty   decimal.Decimal
}

// Planner derives purchase requirements from the daily plans of all orders
type Planner struct {
	ledger *shared.MaterialLedger
}

// NewPlanner creates a planner reading master stock positions from the ledger.
// Only the master records are used; running balances are ignored.
func NewPlanner(ledger *shared.MaterialLedger) *Planner {
	return &Planner{ledger: ledger}
}

// Plan walks each material's demand in date order, starting from the stock on
// hand, and emits a purchase whenever the projected balance falls below safety
// stock. schedules must be in the order they were scheduled.
func (p *Planner) Plan(schedules []*scheduling.OrderSchedule, runDate time.Time) *Result {
	runDate = entities.StartOfDay(runDate)
	result := &Result{}

	demands := make(map[entities.MaterialID][]demand)
	warned := make(map[string]bool)

	for seq, sched := range schedules {
		if sched.BOM == nil {
			continue
		}
		for _, load := range sched.BOM.Materials {
			if !p.ledger.Has(load.RawMaterialID) {
				key := fmt.Sprintf("%s|%s", load.RawMaterialID, sched.Order.ID)
				if !warned[key] {
					warned[key] = true
					result.Warnings = append(result.Warnings, Warning{
						RawMaterialID: load.RawMaterialID,
						OrderID:       sched.Order.ID,
						Message:       fmt.Sprintf("raw material %s not found in inventory", load.RawMaterialID),
					})
				}
				continue
			}
			for _, entry := range sched.Entries {
				if entry.UnitsPlanned <= 0 {
					continue
				}
				demands[load.RawMaterialID] = append(demands[load.RawMaterialID], demand{
					date:  entry.Date,
					seq:   seq,
					order: sched.Order.ID,
					qty:   load.QuantityPerUnit.Mul(decimal.NewFromInt(int64(entry.UnitsPlanned))),
				})
			}
		}
	}

	for id, list := range demands {
		mat, err := p.ledger.Material(id)
		if err != nil {
			continue
		}
		result.Items = append(result.Items, p.planMaterial(mat, list, runDate)...)
	}

	sortItems(result.Items)
	return result
}

func (p *Planner) planMaterial(mat *entities.RawMaterial, list []demand, runDate time.Time) []entities.ProcurementItem {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].date.Equal(list[j].date) {
			return list[i].date.Before(list[j].date)
		}
		return list[i].seq < list[j].seq
	})

	var items []entities.ProcurementItem
	balance := mat.CurrentStockLevel
	for _, d := range list {
		balance = balance.Sub(d.qty)
		if !balance.LessThan(mat.SafetyStockLevel) {
			continue
		}

		requiredBy := entities.AddDays(d.date, -mat.LeadTimeDays)
		if requiredBy.Before(runDate) {
			requiredBy = runDate
		}
		items = append(items, entities.ProcurementItem{
			RawMaterialID:  mat.ID,
			Code:           mat.Code,
			Name:           mat.Name,
			RequiredByDate: requiredBy,
			QuantityNeeded: mat.SafetyStockLevel.Sub(balance),
			SourceOrderID:  d.order,
		})
		balance = mat.SafetyStockLevel
	}
	return items
}

// sortItems orders by required-by date, material code, then order
func sortItems(items []entities.ProcurementItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.RequiredByDate.Equal(b.RequiredByDate) {
			return a.RequiredByDate.Before(b.RequiredByDate)
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		if a.RawMaterialID != b.RawMaterialID {
			return a.RawMaterialID < b.RawMaterialID
		}
		return a.SourceOrderID < b.SourceOrderID
	})
}
