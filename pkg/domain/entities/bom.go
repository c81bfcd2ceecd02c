package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MachineStep is one machine operation in a product's routing
type MachineStep struct {
	MachineID        MachineID
	CycleTimeMinutes decimal.Decimal
	UnitsPerCycle    Quantity
}

// NewMachineStep creates a validated MachineStep
func NewMachineStep(machineID MachineID, cycleTimeMinutes decimal.Decimal, unitsPerCycle Quantity) (*MachineStep, error) {
	if string(machineID) == "" {
		return nil, fmt.Errorf("machine id cannot be empty")
	}
	if !cycleTimeMinutes.IsPositive() {
		return nil, fmt.Errorf("cycle time must be positive, got %s", cycleTimeMinutes)
	}
	if unitsPerCycle <= 0 {
		return nil, fmt.Errorf("units per cycle must be positive, got %d", unitsPerCycle)
	}

	return &MachineStep{
		MachineID:        machineID,
		CycleTimeMinutes: cycleTimeMinutes,
		UnitsPerCycle:    unitsPerCycle,
	}, nil
}

// ManualJobStep is a manual labor operation measured in worker-minutes per unit
type ManualJobStep struct {
	ManualJobID    ManualJobID
	Name           string
	MinutesPerUnit decimal.Decimal
}

// NewManualJobStep creates a validated ManualJobStep
func NewManualJobStep(id ManualJobID, name string, minutesPerUnit decimal.Decimal) (*ManualJobStep, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("manual job id cannot be empty")
	}
	if !minutesPerUnit.IsPositive() {
		return nil, fmt.Errorf("minutes per unit must be positive, got %s", minutesPerUnit)
	}

	return &ManualJobStep{
		ManualJobID:    id,
		Name:           name,
		MinutesPerUnit: minutesPerUnit,
	}, nil
}

// MaterialRequirement is raw material consumed per produced unit
type MaterialRequirement struct {
	RawMaterialID   MaterialID
	QuantityPerUnit decimal.Decimal
	UnitOfMeasure   string
}

// NewMaterialRequirement creates a validated MaterialRequirement
func NewMaterialRequirement(materialID MaterialID, quantityPerUnit decimal.Decimal, uom string) (*MaterialRequirement, error) {
	if string(materialID) == "" {
		return nil, fmt.Errorf("raw material id cannot be empty")
	}
	if !quantityPerUnit.IsPositive() {
		return nil, fmt.Errorf("quantity per unit must be positive, got %s", quantityPerUnit)
	}

	return &MaterialRequirement{
		RawMaterialID:   materialID,
		QuantityPerUnit: quantityPerUnit,
		UnitOfMeasure:   uom,
	}, nil
}

// ComponentRequirement is a semi-finished product consumed per produced unit
type ComponentRequirement struct {
	ProductID       ProductID
	QuantityPerUnit Quantity
}

// NewComponentRequirement creates a validated ComponentRequirement for parent
func NewComponentRequirement(parent, component ProductID, quantityPerUnit Quantity) (*ComponentRequirement, error) {
	if string(component) == "" {
		return nil, fmt.Errorf("component product id cannot be empty")
	}
	if parent == component {
		return nil, fmt.Errorf("product cannot be a component of itself: %s", parent)
	}
	if quantityPerUnit <= 0 {
		return nil, fmt.Errorf("quantity per unit must be positive, got %d", quantityPerUnit)
	}

	return &ComponentRequirement{
		ProductID:       component,
		QuantityPerUnit: quantityPerUnit,
	}, nil
}

// Product is a product together with its bill of materials
type Product struct {
	ID           ProductID
	Name         string
	MachineSteps []MachineStep
	ManualJobs   []ManualJobStep
	Materials    []MaterialRequirement
	Components   []ComponentRequirement
}

// NewProduct creates a validated Product with an empty bill of materials
func NewProduct(id ProductID, name string) (*Product, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if name == "" {
		name = string(id)
	}
	return &Product{ID: id, Name: name}, nil
}
