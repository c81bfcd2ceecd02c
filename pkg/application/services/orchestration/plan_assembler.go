package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/application/dto"
	"github.com/vsinha/prodplan/pkg/application/services/bom"
	"github.com/vsinha/prodplan/pkg/application/services/procurement"
	"github.com/vsinha/prodplan/pkg/application/services/scheduling"
	"github.com/vsinha/prodplan/pkg/application/services/shared"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// ErrSnapshotUnavailable marks failures to load the run's master data
var ErrSnapshotUnavailable = errors.New("planning snapshot unavailable")

// Config holds the planning thresholds
type Config struct {
	Scheduling            scheduling.Config
	DowntimeRiskThreshold decimal.Decimal
	Location              *time.Location
}

// DefaultConfig returns the scheduler defaults with a 90% downtime threshold in UTC
func DefaultConfig() Config {
	return Config{
		Scheduling:            scheduling.DefaultConfig(),
		DowntimeRiskThreshold: shared.DefaultDowntimeRiskThreshold,
		Location:              time.UTC,
	}
}

// Recorder receives run telemetry
type Recorder interface {
	ObserveRun(outcome string, duration time.Duration)
	ObservePlan(result *dto.PlanResult)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(string, time.Duration) {}
func (nopRecorder) ObservePlan(*dto.PlanResult)      {}

// Repositories groups the collaborators a planning run reads from
type Repositories struct {
	Orders    repositories.OrderRepository
	Products  repositories.ProductRepository
	Machines  repositories.MachineRepository
	Materials repositories.MaterialRepository
	Invoices  repositories.InvoiceRepository
}

// PlanAssembler runs the full planning pipeline and builds the dashboard result.
// It holds no per-run state and is safe for concurrent use.
type PlanAssembler struct {
	repos    Repositories
	config   Config
	recorder Recorder
	joiner   *FinancialHealthJoiner
}

// NewPlanAssembler creates a plan assembler; a nil recorder disables telemetry
func NewPlanAssembler(repos Repositories, config Config, recorder Recorder) *PlanAssembler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &PlanAssembler{
		repos:    repos,
		config:   config,
		recorder: recorder,
		joiner:   NewFinancialHealthJoiner(repos.Invoices),
	}
}

// Location is the time zone calendar days are computed in
func (a *PlanAssembler) Location() *time.Location {
	return a.config.Location
}

// Assemble plans every active order from a fresh snapshot as of runDate.
// The result depends only on the snapshot and the run date.
func (a *PlanAssembler) Assemble(ctx context.Context, runDate time.Time) (*dto.PlanResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	runDate = entities.StartOfDay(runDate.In(a.config.Location))
	logger := log.With().Str("run_id", runID).Str("run_date", runDate.Format(entities.DateLayout)).Logger()

	result, err := a.assemble(ctx, runID, runDate)
	if err != nil {
		outcome := "failed"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = "cancelled"
		}
		a.recorder.ObserveRun(outcome, time.Since(start))
		logger.Error().Err(err).Msg("planning run failed")
		return nil, err
	}

	a.recorder.ObserveRun("success", time.Since(start))
	a.recorder.ObservePlan(result)
	logger.Info().
		Int("orders", len(result.Items)).
		Int("procurement_items", len(result.Procurement)).
		Dur("duration", time.Since(start)).
		Msg("planning run completed")
	return result, nil
}

func (a *PlanAssembler) assemble(ctx context.Context, runID string, runDate time.Time) (*dto.PlanResult, error) {
	snap, err := LoadSnapshot(ctx, a.repos.Orders, a.repos.Machines, a.repos.Materials)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}

	capacity := shared.NewCapacityModel(snap.Machines, a.config.DowntimeRiskThreshold)
	ledger := shared.NewMaterialLedger(snap.Materials)
	scheduler := scheduling.NewOrderScheduler(capacity, ledger, bom.NewResolver(a.repos.Products), a.config.Scheduling)

	schedules, err := scheduler.ScheduleAll(ctx, snap.Orders, runDate)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule orders: %w", err)
	}

	proc := procurement.NewPlanner(ledger).Plan(schedules, runDate)

	result := &dto.PlanResult{
		RunID:       runID,
		RunDate:     runDate,
		Items:       make([]dto.PlanItem, 0, len(schedules)),
		Procurement: proc.Items,
	}
	for _, w := range proc.Warnings {
		result.Warnings = append(result.Warnings, fmt.Sprintf("order %s: %s", w.OrderID, w.Message))
	}

	for _, sched := range schedules {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("planning cancelled: %w", err)
		}
		item := buildPlanItem(sched)
		a.joiner.Join(ctx, &item)
		if len(item.Issues) > 0 {
			log.Warn().
				Str("run_id", runID).
				Str("order_id", string(item.Order.ID)).
				Str("status", item.Status.String()).
				Int("issues", len(item.Issues)).
				Msg("order planned with issues")
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func buildPlanItem(sched *scheduling.OrderSchedule) dto.PlanItem {
	item := dto.PlanItem{
		Order:             sched.Order,
		ProductName:       sched.ProductName,
		RemainingQuantity: sched.RemainingAtStart,
		DailyTarget:       sched.DailyTarget,
		Machines:          make([]dto.MachineCapacity, 0, len(sched.Machines)),
		RawMaterials:      make([]dto.MaterialSufficiency, 0, len(sched.Materials)),
		DailyPlan:         sched.Entries,
		Issues:            append([]entities.PlanIssue(nil), sched.Issues...),
	}

	for _, m := range sched.Machines {
		item.Machines = append(item.Machines, dto.MachineCapacity{
			MachineName:   m.MachineName,
			MaxCapacity:   m.MaxCapacity,
			AvailableTime: m.AvailableTime,
			DowntimeRisk:  m.DowntimeRisk,
		})
	}
	for _, m := range sched.Materials {
		if m.Short() {
			item.MaterialAlert = true
		}
		item.RawMaterials = append(item.RawMaterials, dto.MaterialSufficiency{
			Name:          m.Name,
			TotalNeeded:   m.TotalNeeded,
			Available:     m.Available,
			UnitOfMeasure: m.UnitOfMeasure,
			Warning:       m.Warning,
		})
	}

	item.Status = overallStatus(sched, item.MaterialAlert)
	return item
}

// overallStatus picks the highest-precedence condition observed for the order
func overallStatus(sched *scheduling.OrderSchedule, materialAlert bool) entities.PlanStatus {
	candidates := []entities.PlanStatus{entities.OnTrack}

	if sched.HasIssue(entities.IssueCircularBOM) {
		candidates = append(candidates, entities.CircularBOM)
	}
	if sched.HasIssue(entities.IssueMachineMissing) {
		candidates = append(candidates, entities.MachineMissing)
	}
	if sched.Outcome == scheduling.Unschedulable {
		candidates = append(candidates, entities.Unschedulable)
	}
	if sched.Outcome == scheduling.DeliveryMissed {
		candidates = append(candidates, entities.Delayed)
	}
	if materialAlert {
		candidates = append(candidates, entities.MaterialShortage)
	}
	for _, e := range sched.Entries {
		if e.Status == entities.AtRisk || e.Status == entities.Delayed {
			candidates = append(candidates, e.Status)
		}
	}

	status := entities.OnTrack
	for _, c := range candidates {
		if c.Precedence() > status.Precedence() {
			status = c
		}
	}
	return status
}
