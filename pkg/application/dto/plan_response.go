package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// ProductionPlanResponse is the JSON body of the production plan endpoint
type ProductionPlanResponse struct {
	Plan                        []PlanItemResponse        `json:"plan"`
	MaterialProcurementSchedule []ProcurementItemResponse `json:"materialProcurementSchedule"`
}

// PlanItemResponse is one order's entry in the plan
type PlanItemResponse struct {
	OrderID           string                   `json:"orderId"`
	ProductName       string                   `json:"productName"`
	CustomerName      string                   `json:"customerName"`
	DeliveryDate      string                   `json:"deliveryDate"`
	RemainingQuantity int64                    `json:"remainingQuantity"`
	DailyTarget       int64                    `json:"dailyTarget"`
	Machines          []MachineResponse        `json:"machines"`
	RawMaterials      []RawMaterialResponse    `json:"rawMaterials"`
	MaterialAlert     bool                     `json:"materialAlert"`
	Status            string                   `json:"status"`
	DailyPlan         []DailyPlanEntryResponse `json:"dailyPlan"`
	FinancialHealth   *FinancialHealthResponse `json:"financialHealth,omitempty"`
	Issues            []IssueResponse          `json:"issues,omitempty"`
}

// MachineResponse is the capacity view of a machine the order runs on
type MachineResponse struct {
	MachineName   string      `json:"machineName"`
	MaxCapacity   int64       `json:"maxCapacity"`
	AvailableTime json.Number `json:"availableTime"`
	DowntimeRisk  bool        `json:"downtimeRisk"`
}

// RawMaterialResponse is the material requirement of an order
type RawMaterialResponse struct {
	Name        string      `json:"name"`
	TotalNeeded json.Number `json:"totalNeeded"`
	Available   json.Number `json:"available"`
	UOM         string      `json:"uom"`
	Warning     string      `json:"warning,omitempty"`
}

// DailyPlanEntryResponse is the units planned for one calendar day
type DailyPlanEntryResponse struct {
	Date   string `json:"date"`
	Units  int64  `json:"units"`
	Status string `json:"status"`
}

// FinancialHealthResponse is the invoice position joined onto an order
type FinancialHealthResponse struct {
	TotalAmount   json.Number `json:"totalAmount"`
	Balance       json.Number `json:"balance"`
	PaymentStatus string      `json:"paymentStatus"`
	DueDate       string      `json:"dueDate,omitempty"`
}

// IssueResponse describes a problem found while planning an order
type IssueResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProcurementItemResponse is one purchase in the material procurement schedule
type ProcurementItemResponse struct {
	RawMaterial     string      `json:"rawMaterial"`
	RawMaterialCode string      `json:"rawMaterialCode"`
	RequiredBy      string      `json:"requiredBy"`
	QuantityNeeded  json.Number `json:"quantityNeeded"`
	ForOrder        string      `json:"forOrder"`
}

// NewProductionPlanResponse converts a plan result to its wire form.
// Decimals are emitted as exact JSON numbers.
func NewProductionPlanResponse(result *PlanResult) *ProductionPlanResponse {
	resp := &ProductionPlanResponse{
		Plan:                        make([]PlanItemResponse, 0, len(result.Items)),
		MaterialProcurementSchedule: make([]ProcurementItemResponse, 0, len(result.Procurement)),
	}

	for _, item := range result.Items {
		resp.Plan = append(resp.Plan, newPlanItemResponse(item))
	}
	for _, p := range result.Procurement {
		resp.MaterialProcurementSchedule = append(resp.MaterialProcurementSchedule, ProcurementItemResponse{
			RawMaterial:     p.Name,
			RawMaterialCode: p.Code,
			RequiredBy:      p.RequiredByDate.Format(entities.DateLayout),
			QuantityNeeded:  number(p.QuantityNeeded),
			ForOrder:        string(p.SourceOrderID),
		})
	}
	return resp
}

func newPlanItemResponse(item PlanItem) PlanItemResponse {
	out := PlanItemResponse{
		OrderID:           string(item.Order.ID),
		ProductName:       item.ProductName,
		CustomerName:      item.Order.CustomerName,
		DeliveryDate:      item.Order.DeliveryDate.Format(entities.DateLayout),
		RemainingQuantity: int64(item.RemainingQuantity),
		DailyTarget:       int64(item.DailyTarget),
		Machines:          make([]MachineResponse, 0, len(item.Machines)),
		RawMaterials:      make([]RawMaterialResponse, 0, len(item.RawMaterials)),
		MaterialAlert:     item.MaterialAlert,
		Status:            item.Status.String(),
		DailyPlan:         make([]DailyPlanEntryResponse, 0, len(item.DailyPlan)),
	}

	for _, m := range item.Machines {
		out.Machines = append(out.Machines, MachineResponse{
			MachineName:   m.MachineName,
			MaxCapacity:   int64(m.MaxCapacity),
			AvailableTime: number(m.AvailableTime),
			DowntimeRisk:  m.DowntimeRisk,
		})
	}
	for _, r := range item.RawMaterials {
		out.RawMaterials = append(out.RawMaterials, RawMaterialResponse{
			Name:        r.Name,
			TotalNeeded: number(r.TotalNeeded),
			Available:   number(r.Available),
			UOM:         r.UnitOfMeasure,
			Warning:     r.Warning,
		})
	}
	for _, e := range item.DailyPlan {
		out.DailyPlan = append(out.DailyPlan, DailyPlanEntryResponse{
			Date:   e.Date.Format(entities.DateLayout),
			Units:  int64(e.UnitsPlanned),
			Status: e.Status.String(),
		})
	}
	if fh := item.FinancialHealth; fh != nil {
		out.FinancialHealth = &FinancialHealthResponse{
			TotalAmount:   number(fh.TotalAmount),
			Balance:       number(fh.Balance),
			PaymentStatus: fh.PaymentStatus,
		}
		if !fh.DueDate.IsZero() {
			out.FinancialHealth.DueDate = fh.DueDate.Format(entities.DateLayout)
		}
	}
	for _, issue := range item.Issues {
		out.Issues = append(out.Issues, IssueResponse{Code: issue.Code, Message: issue.Message})
	}
	return out
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
