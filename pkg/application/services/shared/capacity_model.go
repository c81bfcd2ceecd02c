package shared

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// DefaultDowntimeRiskThreshold is the share of daily minutes at which a machine is flagged
var DefaultDowntimeRiskThreshold = decimal.RequireFromString("0.9")

// CapacityModel tracks per-machine, per-day committed minutes for a single planning run
type CapacityModel struct {
	machines      map[entities.MachineID]*entities.Machine
	committed     map[string]decimal.Decimal
	riskThreshold decimal.Decimal
}

// NewCapacityModel creates a capacity model over a machine snapshot.
// A non-positive threshold falls back to DefaultDowntimeRiskThreshold.
func NewCapacityModel(machines []*entities.Machine, riskThreshold decimal.Decimal) *CapacityModel {
	if !riskThreshold.IsPositive() {
		riskThreshold = DefaultDowntimeRiskThreshold
	}

	cm := &CapacityModel{
		machines:      make(map[entities.MachineID]*entities.Machine, len(machines)),
		committed:     make(map[string]decimal.Decimal),
		riskThreshold: riskThreshold,
	}
	for _, m := range machines {
		if m != nil {
			cm.machines[m.ID] = m
		}
	}
	return cm
}

// Machine returns the machine master record or an error wrapping ErrMachineMissing
func (cm *CapacityModel) Machine(id entities.MachineID) (*entities.Machine, error) {
	m, ok := cm.machines[id]
	if !ok {
		return nil, fmt.Errorf("machine %s: %w", id, entities.ErrMachineMissing)
	}
	return m, nil
}

// MachineIDs returns the known machines in ID order
func (cm *CapacityModel) MachineIDs() []entities.MachineID {
	ids := make([]entities.MachineID, 0, len(cm.machines))
	for id := range cm.machines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Committed returns the minutes taken on the machine for the day, including its baseline
func (cm *CapacityModel) Committed(id entities.MachineID, date time.Time) decimal.Decimal {
	m, ok := cm.machines[id]
	if !ok {
		return decimal.Zero
	}
	if v, ok := cm.committed[cm.makeKey(id, date)]; ok {
		return v
	}
	return m.CurrentCommittedMinutes
}

// Available returns the free minutes on the machine for the day, never negative
func (cm *CapacityModel) Available(id entities.MachineID, date time.Time) decimal.Decimal {
	m, ok := cm.machines[id]
	if !ok {
		return decimal.Zero
	}
	free := m.DailyAvailableMinutes.Sub(cm.Committed(id, date))
	if free.IsNegative() {
		return decimal.Zero
	}
	return free
}

// Commit adds minutes to the machine's load for the day
func (cm *CapacityModel) Commit(id entities.MachineID, date time.Time, minutes decimal.Decimal) error {
	if _, ok := cm.machines[id]; !ok {
		return fmt.Errorf("failed to commit %s minutes: machine %s: %w", minutes, id, entities.ErrMachineMissing)
	}
	if minutes.IsNegative() {
		return fmt.Errorf("committed minutes cannot be negative, got %s", minutes)
	}
	cm.committed[cm.makeKey(id, date)] = cm.Committed(id, date).Add(minutes)
	return nil
}

// DailyCapacity returns how many units a step with the given cycle can run on the
// machine when committedMinutes are already taken, and whether the machine is at risk.
// A zero cycle falls back to the machine's rated cycle time.
func (cm *CapacityModel) DailyCapacity(
	id entities.MachineID,
	committedMinutes decimal.Decimal,
	cycleTimeMinutes decimal.Decimal,
	unitsPerCycle entities.Quantity,
) (entities.Quantity, bool, error) {
	m, err := cm.Machine(id)
	if err != nil {
		return 0, false, err
	}

	risk := cm.atRisk(m, committedMinutes)

	cycle := cycleTimeMinutes
	if !cycle.IsPositive() {
		cycle = m.RatedCycleTimeMinutes
	}
	if !cycle.IsPositive() {
		return 0, risk, fmt.Errorf("machine %s has no positive cycle time", id)
	}
	if unitsPerCycle <= 0 {
		unitsPerCycle = 1
	}

	free := m.DailyAvailableMinutes.Sub(committedMinutes)
	if !free.IsPositive() {
		return 0, risk, nil
	}
	cycles := free.Div(cycle).Floor().IntPart()
	return entities.Quantity(cycles) * unitsPerCycle, risk, nil
}

// DowntimeRisk reports whether the machine's load for the day has reached the risk threshold
func (cm *CapacityModel) DowntimeRisk(id entities.MachineID, date time.Time) bool {
	m, ok := cm.machines[id]
	if !ok {
		return false
	}
	return cm.atRisk(m, cm.Committed(id, date))
}

func (cm *CapacityModel) atRisk(m *entities.Machine, committed decimal.Decimal) bool {
	return committed.GreaterThanOrEqual(cm.riskThreshold.Mul(m.DailyAvailableMinutes))
}

// makeKey creates a consistent key for machine and calendar day
func (cm *CapacityModel) makeKey(id entities.MachineID, date time.Time) string {
	return fmt.Sprintf("%s|%s", id, date.Format(entities.DateLayout))
}
