package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Machine is a production machine with its daily operating budget
type Machine struct {
	ID                      MachineID
	Name                    string
	RatedCycleTimeMinutes   decimal.Decimal
	DailyAvailableMinutes   decimal.Decimal
	CurrentCommittedMinutes decimal.Decimal // taken every day before planning starts
}

// NewMachine creates a validated Machine
func NewMachine(
	id MachineID,
	name string,
	ratedCycleTime, dailyAvailable, committed decimal.Decimal,
) (*Machine, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("machine id cannot be empty")
	}
	if ratedCycleTime.IsNegative() {
		return nil, fmt.Errorf("rated cycle time cannot be negative, got %s", ratedCycleTime)
	}
	if dailyAvailable.IsNegative() {
		return nil, fmt.Errorf("daily available minutes cannot be negative, got %s", dailyAvailable)
	}
	if committed.IsNegative() {
		return nil, fmt.Errorf("committed minutes cannot be negative, got %s", committed)
	}
	if name == "" {
		name = string(id)
	}

	return &Machine{
		ID:                      id,
		Name:                    name,
		RatedCycleTimeMinutes:   ratedCycleTime,
		DailyAvailableMinutes:   dailyAvailable,
		CurrentCommittedMinutes: committed,
	}, nil
}
