package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/application/services/bom"
	"github.com/vsinha/prodplan/pkg/application/services/shared"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// Outcome is the terminal state of an order's scheduling loop
type Outcome int

const (
	Fulfilled Outcome = iota
	DeliveryMissed
	Unschedulable
)

// String method for Outcome enum
func (o Outcome) String() string {
	switch o {
	case Fulfilled:
		return "Fulfilled"
	case DeliveryMissed:
		return "DeliveryMissed"
	case Unschedulable:
		return "Unschedulable"
	default:
		return "Unknown"
	}
}

// Config holds the scheduler's tunable limits
type Config struct {
	WorkerCount         int
	WorkerMinutesPerDay decimal.Decimal
	MaxIdleDays         int
	MaxHorizonDays      int
}

// DefaultConfig returns one worker on an eight hour shift with a 30 day idle guard
func DefaultConfig() Config {
	return Config{
		WorkerCount:         1,
		WorkerMinutesPerDay: decimal.NewFromInt(480),
		MaxIdleDays:         30,
		MaxHorizonDays:      366,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if !c.WorkerMinutesPerDay.IsPositive() {
		c.WorkerMinutesPerDay = d.WorkerMinutesPerDay
	}
	if c.MaxIdleDays <= 0 {
		c.MaxIdleDays = d.MaxIdleDays
	}
	if c.MaxHorizonDays <= 0 {
		c.MaxHorizonDays = d.MaxHorizonDays
	}
	return c
}

// MachineSummary is the capacity view of one machine on the order's first day
type MachineSummary struct {
	MachineID     entities.MachineID
	MachineName   string
	MaxCapacity   entities.Quantity
	AvailableTime decimal.Decimal
	DowntimeRisk  bool
}

// MaterialSummary is the sufficiency of one raw material for the order
type MaterialSummary struct {
	RawMaterialID entities.MaterialID
	Name          string
	TotalNeeded   decimal.Decimal
	Available     decimal.Decimal
	UnitOfMeasure string
	Warning       string
	Missing       bool
}

// Short reports whether stock at order start cannot cover the order
func (m MaterialSummary) Short() bool {
	return !m.Missing && m.TotalNeeded.GreaterThan(m.Available)
}

// OrderSchedule is the scheduler's result for one order
type OrderSchedule struct {
	Order            *entities.Order
	ProductName      string
	RemainingAtStart entities.Quantity
	DailyTarget      entities.Quantity
	Entries          []entities.DailyPlanEntry
	Machines         []MachineSummary
	Materials        []MaterialSummary
	BOM              *bom.ResolvedBOM
	Outcome          Outcome
	Issues           []entities.PlanIssue
}

// UnitsPlanned sums the units across all entries
func (s *OrderSchedule) UnitsPlanned() entities.Quantity {
	var total entities.Quantity
	for _, e := range s.Entries {
		total += e.UnitsPlanned
	}
	return total
}

// HasIssue reports whether an issue with the code was raised
func (s *OrderSchedule) HasIssue(code string) bool {
	for _, i := range s.Issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func (s *OrderSchedule) addIssue(code, format string, args ...interface{}) {
	s.Issues = append(s.Issues, entities.PlanIssue{Code: code, Message: fmt.Sprintf(format, args...)})
}

// OrderScheduler allocates machine time, labor and material to orders one day at a time.
// It shares the run's CapacityModel and MaterialLedger with every order it schedules.
type OrderScheduler struct {
	capacity *shared.CapacityModel
	ledger   *shared.MaterialLedger
	resolver *bom.Resolver
	config   Config
}

// NewOrderScheduler creates a scheduler over a run snapshot
func NewOrderScheduler(
	capacity *shared.CapacityModel,
	ledger *shared.MaterialLedger,
	resolver *bom.Resolver,
	config Config,
) *OrderScheduler {
	return &OrderScheduler{
		capacity: capacity,
		ledger:   ledger,
		resolver: resolver,
		config:   config.normalized(),
	}
}

// SortByDeadline orders by delivery date, then order date, then ID
func SortByDeadline(orders []*entities.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.DeliveryDate.Equal(b.DeliveryDate) {
			return a.DeliveryDate.Before(b.DeliveryDate)
		}
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.Before(b.OrderDate)
		}
		return a.ID < b.ID
	})
}

// ScheduleAll schedules the orders in deadline order. Cancellation is
// checked between orders.
func (s *OrderScheduler) ScheduleAll(
	ctx context.Context,
	orders []*entities.Order,
	runDate time.Time,
) ([]*OrderSchedule, error) {
	sorted := make([]*entities.Order, len(orders))
	copy(sorted, orders)
	SortByDeadline(sorted)

	schedules := make([]*OrderSchedule, 0, len(sorted))
	for _, order := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("planning cancelled before order %s: %w", order.ID, err)
		}
		sched, err := s.Schedule(ctx, order, runDate)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, sched)
	}
	return schedules, nil
}

// machineGroup is the set of BOM steps sharing one machine
type machineGroup struct {
	machine *entities.Machine
	steps   []bom.MachineLoad
}

// Schedule computes the daily plan for a single order. Per-order failures are
// reported on the returned schedule; only cancellation is returned as an error.
func (s *OrderScheduler) Schedule(
	ctx context.Context,
	order *entities.Order,
	runDate time.Time,
) (*OrderSchedule, error) {
	runDate = entities.StartOfDay(runDate)
	remaining := order.RemainingQuantity()

	sched := &OrderSchedule{
		Order:            order,
		ProductName:      string(order.ProductID),
		RemainingAtStart: remaining,
		DailyTarget:      dailyTarget(remaining, runDate, order.DeliveryDate),
	}

	resolved, err := s.resolver.Resolve(ctx, order.ProductID)
	if err != nil {
		var cycleErr *entities.CircularBOMError
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.As(err, &cycleErr):
			sched.addIssue(entities.IssueCircularBOM, "%s", cycleErr.Error())
		case errors.Is(err, entities.ErrProductMissing):
			sched.addIssue(entities.IssueProductMissing, "%s", err.Error())
			sched.Outcome = Unschedulable
		default:
			sched.addIssue(entities.IssueUnschedulable, "failed to resolve bill of materials: %s", err.Error())
			sched.Outcome = Unschedulable
		}
		log.Warn().Err(err).Str("order_id", string(order.ID)).Msg("bill of materials could not be resolved")
		return sched, nil
	}
	sched.BOM = resolved
	sched.ProductName = resolved.Product.Name

	groups := s.machineGroups(sched, resolved)
	s.summarizeMaterials(sched, resolved, remaining)
	s.summarizeMachines(sched, groups, runDate)

	if remaining == 0 {
		return sched, nil
	}

	s.runDays(sched, resolved, groups, runDate)
	return sched, nil
}

// machineGroups collects steps per known machine and reports unknown ones
func (s *OrderScheduler) machineGroups(sched *OrderSchedule, resolved *bom.ResolvedBOM) []machineGroup {
	var groups []machineGroup
	for _, id := range resolved.Machines() {
		m, err := s.capacity.Machine(id)
		if err != nil {
			sched.addIssue(entities.IssueMachineMissing, "machine %s is not in the machine master; its steps were excluded from capacity checks", id)
			continue
		}
		groups = append(groups, machineGroup{machine: m, steps: resolved.StepsOn(id)})
	}
	return groups
}

func (s *OrderScheduler) summarizeMaterials(sched *OrderSchedule, resolved *bom.ResolvedBOM, remaining entities.Quantity) {
	qty := decimal.NewFromInt(int64(remaining))
	for _, load := range resolved.Materials {
		summary := MaterialSummary{
			RawMaterialID: load.RawMaterialID,
			Name:          string(load.RawMaterialID),
			TotalNeeded:   load.QuantityPerUnit.Mul(qty),
			UnitOfMeasure: load.UnitOfMeasure,
		}

		mat, err := s.ledger.Material(load.RawMaterialID)
		if err != nil {
			summary.Missing = true
			summary.Warning = fmt.Sprintf("raw material %s not found in inventory", load.RawMaterialID)
			sched.addIssue(entities.IssueMaterialMissing, "%s", summary.Warning)
		} else {
			summary.Name = mat.Name
			if mat.UnitOfMeasure != "" {
				summary.UnitOfMeasure = mat.UnitOfMeasure
			}
			summary.Available = s.ledger.Usable(load.RawMaterialID)
			if summary.Short() {
				summary.Warning = fmt.Sprintf("short by %s %s", summary.TotalNeeded.Sub(summary.Available), summary.UnitOfMeasure)
			}
		}
		sched.Materials = append(sched.Materials, summary)
	}
}

func (s *OrderScheduler) summarizeMachines(sched *OrderSchedule, groups []machineGroup, runDate time.Time) {
	for _, g := range groups {
		committed := s.capacity.Committed(g.machine.ID, runDate)
		_, risk, _ := s.capacity.DailyCapacity(g.machine.ID, committed, g.steps[0].Step.CycleTimeMinutes, g.steps[0].Step.UnitsPerCycle)
		sched.Machines = append(sched.Machines, MachineSummary{
			MachineID:     g.machine.ID,
			MachineName:   g.machine.Name,
			MaxCapacity:   s.groupCapacity(g, committed),
			AvailableTime: s.capacity.Available(g.machine.ID, runDate),
			DowntimeRisk:  risk,
		})
	}
}

// receipt is a hypothetical replenishment private to one order
type receipt struct {
	arrives time.Time
	qty     decimal.Decimal
}

func (s *OrderScheduler) runDays(
	sched *OrderSchedule,
	resolved *bom.ResolvedBOM,
	groups []machineGroup,
	runDate time.Time,
) {
	order := sched.Order
	remaining := sched.RemainingAtStart
	private := make(map[entities.MaterialID]decimal.Decimal)
	pending := make(map[entities.MaterialID]*receipt)
	idle := 0

	var materials []bom.MaterialLoad
	for _, m := range resolved.Materials {
		if s.ledger.Has(m.RawMaterialID) {
			materials = append(materials, m)
		}
	}

	for day := 0; remaining > 0; day++ {
		if day >= s.config.MaxHorizonDays {
			sched.Outcome = Unschedulable
			sched.addIssue(entities.IssueUnschedulable, "%d units still open after %d planning days", remaining, s.config.MaxHorizonDays)
			return
		}

		date := entities.AddDays(runDate, day)
		for id, r := range pending {
			if !date.Before(r.arrives) {
				private[id] = private[id].Add(r.qty)
				delete(pending, id)
			}
		}

		units := remaining
		for _, g := range groups {
			committed := s.capacity.Committed(g.machine.ID, date)
			if c := s.groupCapacity(g, committed); c < units {
				units = c
			}
			if s.capacity.DowntimeRisk(g.machine.ID, date) {
				s.markRisk(sched, g.machine.ID)
			}
		}
		for _, job := range resolved.ManualJobs {
			if c := s.laborCapacity(job); c < units {
				units = c
			}
		}

		nonMaterial := units
		for _, m := range materials {
			have := s.ledger.Usable(m.RawMaterialID).Add(private[m.RawMaterialID])
			c := unitsCoveredBy(have, m.QuantityPerUnit)
			if c >= nonMaterial {
				continue
			}
			if c < units {
				units = c
			}
			if _, waiting := pending[m.RawMaterialID]; !waiting {
				s.scheduleReplenishment(pending, m, have, remaining, date)
			}
		}

		s.commit(groups, materials, private, units, date)
		for _, g := range groups {
			if s.capacity.DowntimeRisk(g.machine.ID, date) {
				s.markRisk(sched, g.machine.ID)
			}
		}

		sched.Entries = append(sched.Entries, entities.DailyPlanEntry{
			Date:         date,
			UnitsPlanned: units,
			Status:       entryStatus(date, order.DeliveryDate, units, sched.DailyTarget, remaining),
		})
		remaining -= units

		if units == 0 && len(pending) == 0 {
			idle++
			if idle >= s.config.MaxIdleDays {
				sched.Outcome = Unschedulable
				sched.addIssue(entities.IssueUnschedulable, "no progress for %d consecutive days with %d units open", idle, remaining)
				return
			}
		} else if units > 0 {
			idle = 0
		}
	}

	last := sched.Entries[len(sched.Entries)-1].Date
	if entities.DaysBetween(order.DeliveryDate, last) > 0 {
		sched.Outcome = DeliveryMissed
	} else {
		sched.Outcome = Fulfilled
	}
}

func (s *OrderScheduler) scheduleReplenishment(
	pending map[entities.MaterialID]*receipt,
	m bom.MaterialLoad,
	have decimal.Decimal,
	remaining entities.Quantity,
	date time.Time,
) {
	shortfall := m.QuantityPerUnit.Mul(decimal.NewFromInt(int64(remaining))).Sub(have)
	if !shortfall.IsPositive() {
		return
	}
	lead := 1
	if mat, err := s.ledger.Material(m.RawMaterialID); err == nil && mat.LeadTimeDays > lead {
		lead = mat.LeadTimeDays
	}
	pending[m.RawMaterialID] = &receipt{arrives: entities.AddDays(date, lead), qty: shortfall}
}

// commit books the day's machine minutes and draws material, pooled stock first
func (s *OrderScheduler) commit(
	groups []machineGroup,
	materials []bom.MaterialLoad,
	private map[entities.MaterialID]decimal.Decimal,
	units entities.Quantity,
	date time.Time,
) {
	if units <= 0 {
		return
	}
	for _, g := range groups {
		if err := s.capacity.Commit(g.machine.ID, date, minutesFor(g.steps, units)); err != nil {
			log.Error().Err(err).Str("machine_id", string(g.machine.ID)).Msg("failed to commit machine minutes")
		}
	}
	qty := decimal.NewFromInt(int64(units))
	for _, m := range materials {
		need := m.QuantityPerUnit.Mul(qty)
		fromStock := decimal.Min(need, s.ledger.Usable(m.RawMaterialID))
		if err := s.ledger.Draw(m.RawMaterialID, fromStock); err != nil {
			log.Error().Err(err).Str("material_id", string(m.RawMaterialID)).Msg("failed to draw material")
		}
		private[m.RawMaterialID] = private[m.RawMaterialID].Sub(need.Sub(fromStock))
	}
}

func (s *OrderScheduler) markRisk(sched *OrderSchedule, id entities.MachineID) {
	for i := range sched.Machines {
		if sched.Machines[i].MachineID == id {
			sched.Machines[i].DowntimeRisk = true
		}
	}
}

// groupCapacity is the largest finished-unit count whose steps all fit in the
// machine's free minutes
func (s *OrderScheduler) groupCapacity(g machineGroup, committed decimal.Decimal) entities.Quantity {
	free := g.machine.DailyAvailableMinutes.Sub(committed)
	if !free.IsPositive() {
		return 0
	}

	// each step alone bounds the group
	var upper entities.Quantity = -1
	for i := range g.steps {
		step := s.effectiveStep(g, i)
		units, _, err := s.capacity.DailyCapacity(g.machine.ID, committed, step.Step.CycleTimeMinutes, step.Step.UnitsPerCycle)
		if err != nil {
			return 0
		}
		bound := units / step.Multiplier
		if upper < 0 || bound < upper {
			upper = bound
		}
	}
	if len(g.steps) == 1 || upper <= 0 {
		return upper
	}

	steps := make([]bom.MachineLoad, len(g.steps))
	for i := range g.steps {
		steps[i] = s.effectiveStep(g, i)
	}
	lo, hi := entities.Quantity(0), upper
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if minutesFor(steps, mid).LessThanOrEqual(free) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// effectiveStep applies the machine's rated cycle when a step has none
func (s *OrderScheduler) effectiveStep(g machineGroup, i int) bom.MachineLoad {
	step := g.steps[i]
	if !step.Step.CycleTimeMinutes.IsPositive() {
		step.Step.CycleTimeMinutes = g.machine.RatedCycleTimeMinutes
	}
	if step.Step.UnitsPerCycle <= 0 {
		step.Step.UnitsPerCycle = 1
	}
	if step.Multiplier <= 0 {
		step.Multiplier = 1
	}
	return step
}

func (s *OrderScheduler) laborCapacity(job bom.LaborLoad) entities.Quantity {
	perUnit := job.Step.MinutesPerUnit.Mul(decimal.NewFromInt(int64(job.Multiplier)))
	if !perUnit.IsPositive() {
		return 0
	}
	minutes := s.config.WorkerMinutesPerDay.Mul(decimal.NewFromInt(int64(s.config.WorkerCount)))
	return entities.Quantity(minutes.Div(perUnit).Floor().IntPart())
}

// minutesFor is the machine time needed to produce units finished goods
func minutesFor(steps []bom.MachineLoad, units entities.Quantity) decimal.Decimal {
	total := decimal.Zero
	for _, st := range steps {
		perCycle := st.Step.UnitsPerCycle
		if perCycle <= 0 {
			perCycle = 1
		}
		mult := st.Multiplier
		if mult <= 0 {
			mult = 1
		}
		needed := int64(units * mult)
		cycles := (needed + int64(perCycle) - 1) / int64(perCycle)
		total = total.Add(st.Step.CycleTimeMinutes.Mul(decimal.NewFromInt(cycles)))
	}
	return total
}

// unitsCoveredBy is how many whole units the stock covers
func unitsCoveredBy(have, perUnit decimal.Decimal) entities.Quantity {
	if !perUnit.IsPositive() {
		return entities.Quantity(1<<62 - 1)
	}
	if !have.IsPositive() {
		return 0
	}
	n := have.Div(perUnit).Floor()
	// guard against rounding in non-terminating division
	if n.Add(decimal.NewFromInt(1)).Mul(perUnit).LessThanOrEqual(have) {
		n = n.Add(decimal.NewFromInt(1))
	}
	if n.Mul(perUnit).GreaterThan(have) {
		n = n.Sub(decimal.NewFromInt(1))
	}
	return entities.Quantity(n.IntPart())
}

// dailyTarget spreads the remaining quantity over the days up to delivery, inclusive
func dailyTarget(remaining entities.Quantity, runDate, delivery time.Time) entities.Quantity {
	if remaining <= 0 {
		return 0
	}
	days := entities.DaysBetween(runDate, delivery) + 1
	if days < 1 {
		days = 1
	}
	return (remaining + entities.Quantity(days) - 1) / entities.Quantity(days)
}

func entryStatus(date, delivery time.Time, units, target, remainingBefore entities.Quantity) entities.PlanStatus {
	if entities.DaysBetween(delivery, date) > 0 {
		return entities.Delayed
	}
	expected := target
	if remainingBefore < expected {
		expected = remainingBefore
	}
	if units == 0 || units < expected {
		return entities.AtRisk
	}
	return entities.OnTrack
}
