package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RawMaterial is the stock position of one raw material
type RawMaterial struct {
	ID                MaterialID
	Code              string
	Name              string
	CurrentStockLevel decimal.Decimal
	ReorderPoint      decimal.Decimal
	SafetyStockLevel  decimal.Decimal
	LeadTimeDays      int
	UnitOfMeasure     string
}

// NewRawMaterial creates a validated RawMaterial
func NewRawMaterial(
	id MaterialID,
	code, name string,
	stock, reorderPoint, safetyStock decimal.Decimal,
	leadTimeDays int,
	uom string,
) (*RawMaterial, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("raw material id cannot be empty")
	}
	if reorderPoint.IsNegative() {
		return nil, fmt.Errorf("reorder point cannot be negative, got %s", reorderPoint)
	}
	if safetyStock.IsNegative() {
		return nil, fmt.Errorf("safety stock cannot be negative, got %s", safetyStock)
	}
	if leadTimeDays < 0 {
		return nil, fmt.Errorf("lead time cannot be negative, got %d", leadTimeDays)
	}
	if code == "" {
		code = string(id)
	}
	if name == "" {
		name = code
	}

	return &RawMaterial{
		ID:                id,
		Code:              code,
		Name:              name,
		CurrentStockLevel: stock,
		ReorderPoint:      reorderPoint,
		SafetyStockLevel:  safetyStock,
		LeadTimeDays:      leadTimeDays,
		UnitOfMeasure:     uom,
	}, nil
}

// BelowReorderPoint reports whether stock is at or under the reorder point
func (m *RawMaterial) BelowReorderPoint() bool {
	return m.CurrentStockLevel.LessThanOrEqual(m.ReorderPoint)
}
