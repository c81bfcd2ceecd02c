package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanStatus is the closed set of statuses reported for daily entries and plan items
type PlanStatus int

const (
	OnTrack PlanStatus = iota
	AtRisk
	Delayed
	MaterialShortage
	Unschedulable
	MachineMissing
	CircularBOM
)

// String method for PlanStatus enum
func (s PlanStatus) String() string {
	switch s {
	case OnTrack:
		return "OnTrack"
	case AtRisk:
		return "AtRisk"
	case Delayed:
		return "Delayed"
	case MaterialShortage:
		return "Material Shortage"
	case Unschedulable:
		return "Unschedulable"
	case MachineMissing:
		return "MachineMissing"
	case CircularBOM:
		return "CircularBOM"
	default:
		return "Unknown"
	}
}

// Precedence orders statuses for display; the higher value wins.
func (s PlanStatus) Precedence() int {
	switch s {
	case CircularBOM:
		return 7
	case MachineMissing:
		return 6
	case Unschedulable:
		return 5
	case Delayed:
		return 4
	case MaterialShortage:
		return 3
	case AtRisk:
		return 2
	case OnTrack:
		return 1
	default:
		return 0
	}
}

// MarshalText renders the status with its display name
func (s PlanStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DailyPlanEntry is the production planned for one order on one day
type DailyPlanEntry struct {
	Date         time.Time
	UnitsPlanned Quantity
	Status       PlanStatus
}

// ProcurementItem is one purchase the buyer must place
type ProcurementItem struct {
	RawMaterialID  MaterialID
	Code           string
	Name           string
	RequiredByDate time.Time
	QuantityNeeded decimal.Decimal
	SourceOrderID  OrderID
}

// FinancialHealth is the read-only payment position of an order's invoice
type FinancialHealth struct {
	TotalAmount   decimal.Decimal
	Balance       decimal.Decimal
	PaymentStatus string
	DueDate       time.Time
}

// Issue codes attached to plan items
const (
	IssueMachineMissing      = "MachineMissing"
	IssueCircularBOM         = "CircularBOM"
	IssueProductMissing      = "ProductMissing"
	IssueUnschedulable       = "Unschedulable"
	IssueMaterialMissing     = "MaterialMissing"
	IssueFinanceLookupFailed = "FinanceLookupFailed"
)

// PlanIssue is a structured explanation of a degraded plan item
type PlanIssue struct {
	Code    string
	Message string
}
