package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/prodplan/pkg/application/dto"
	"github.com/vsinha/prodplan/pkg/application/services/fixtures"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) GetInvoiceHealth(ctx context.Context, orderID entities.OrderID) (*entities.FinancialHealth, error) {
	args := m.Called(ctx, orderID)
	health, _ := args.Get(0).(*entities.FinancialHealth)
	return health, args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) ListActiveOrders(ctx context.Context) ([]*entities.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]*entities.Order)
	return orders, args.Error(1)
}

type recordedRun struct {
	outcome string
	items   int
}

type fakeRecorder struct {
	runs []recordedRun
}

func (f *fakeRecorder) ObserveRun(outcome string, _ time.Duration) {
	f.runs = append(f.runs, recordedRun{outcome: outcome})
}

func (f *fakeRecorder) ObservePlan(result *dto.PlanResult) {
	f.runs[len(f.runs)-1].items = len(result.Items)
}

func newAssembler(s *fixtures.Scenario, recorder Recorder) *PlanAssembler {
	return NewPlanAssembler(Repositories{
		Orders:    s.Orders,
		Products:  s.Products,
		Machines:  s.Machines,
		Materials: s.Materials,
		Invoices:  s.Invoices,
	}, DefaultConfig(), recorder)
}

func itemFor(t *testing.T, result *dto.PlanResult, id entities.OrderID) dto.PlanItem {
	t.Helper()
	for _, item := range result.Items {
		if item.Order.ID == id {
			return item
		}
	}
	t.Fatalf("no plan item for order %s", id)
	return dto.PlanItem{}
}

func TestAssemble_SingleDayOnTrack(t *testing.T) {
	s := fixtures.NewScenario().
		WithMachine("PRESS", "2", "480", "0").
		WithProduct("WIDGET", fixtures.OnMachine("PRESS", "2", 1)).
		WithOrder("SO-1", "WIDGET", 100, 4)

	result, err := newAssembler(s, nil).Assemble(context.Background(), fixtures.RunDate)
	require.NoError(t, err)

	item := itemFor(t, result, "SO-1")
	assert.Equal(t, entities.OnTrack, item.Status)
	require.Len(t, item.DailyPlan, 1)
	assert.Equal(t, entities.Quantity(100), item.DailyPlan[0].UnitsPlanned)
	assert.Equal(t, entities.OnTrack, item.DailyPlan[0].Status)
	assert.Equal(t, entities.Quantity(20), item.DailyTarget)
	assert.False(t, item.MaterialAlert)
	assert.Empty(t, result.Procurement)
	assert.NotEmpty(t, result.RunID)
}

func TestAssemble_MaterialShortage(t *testing.T) {
	s := fixtures.NewScenario().
		WithMachine("PRESS", "2", "480", "0").
		WithMaterial("STEEL", "50", "0", 1).
		WithProduct("WIDGET", fixtures.OnMachine("PRESS", "2", 1), fixtures.Consumes("STEEL", "1")).
		WithOrder("SO-1", "WIDGET", 100, 5)

	result, err := newAssembler(s, nil).Assemble(context.Background(), fixtures.RunDate)
	require.NoError(t, err)

	item := itemFor(t, result, "SO-1")
	assert.True(t, item.MaterialAlert)
	assert.Equal(t, entities.MaterialShortage, item.Status)
	require.Len(t, item.DailyPlan, 2)
	assert.Equal(t, entities.Quantity(50), item.DailyPlan[0].UnitsPlanned)
	assert.Equal(t, entities.Quantity(50), item.DailyPlan[1].UnitsPlanned)

	require.Len(t, result.Procurement, 1)
	assert.True(t, result.Procurement[0].QuantityNeeded.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, fixtures.Day(0), result.Procurement[0].RequiredByDate)
}

func TestAssemble_CapacityTakenByEarlierOrder(t *testing.T) {
	s := fixtures.NewScenario().
		WithMachine("PRESS", "2", "480", "0").
		WithProduct("WIDGET", fixtures.OnMachine("PRESS", "2", 1)).
		WithOrder("LATER", "WIDGET", 50, 4).
		WithOrder("SOONER", "WIDGET", 240, 0)

	result, err := newAssembler(s, nil).Assemble(context.Background(), fixtures.RunDate)
	require.NoError(t, err)

	later := itemFor(t, result, "LATER")
	require.NotEmpty(t, later.DailyPlan)
	assert.Equal(t, entities.Quantity(0), later.DailyPlan[0].UnitsPlanned)
	assert.Equal(t, entities.AtRisk, later.DailyPlan[0].Status)
	assert.Equal(t, entities.AtRisk, later.Status)

	assert.Equal(t, entities.OrderID("SOONER"), result.Items[0].Order.ID, "items follow deadline order")
}

func TestAssemble_CircularBOMIsIsolated(t *testing.T) {
	s := fixtures.NewScenario().
		WithMachine("PRESS", "2", "480", "0").
		WithProduct("LOOP", fixtures.Contains("LOOP", 1)).
		WithProduct("WIDGET", fixtures.OnMachine("PRESS", "2", 1)).
		WithOrder("BROKEN", "LOOP", 10, 1).
		WithOrder("HEALTHY", "WIDGET", 10, 2)

	result, err := newAssembler(s, nil).Assemble(context.Background(), fixtures.RunDate)
	require.NoError(t, err)

	broken := itemFor(t, result, "BROKEN")
	assert.Equal(t, entities.CircularBOM, broken.Status)
	assert.Empty(t, broken.DailyPlan)
	require.NotEmpty(t, broken.Issues)
	assert.Equal(t, entities.IssueCircularBOM, broken.Issues[0].Code)

	healthy := itemFor(t, result, "HEALTHY")
	assert.Equal(t, entities.OnTrack, healthy.Status)
	assert.Empty(t, healthy.Issues)
}

func TestAssemble_StatusPrecedence(t *testing.T) {
	s := fixtures.NewScenario().
		WithMachine("PRESS", "2", "480", "0").
		WithMaterial("STEEL", "10", "0", 1).
		WithProduct("LATE", fixtures.OnMachine("PRESS", "2", 1), fixtures.Consumes("STEEL", "1")).
		WithProduct("ORPHAN", fixtures.OnMachine("GONE", "1", 1), fixtures.Consumes("STEEL", "1")).
		WithOrder("DELAYED", "LATE", 600, 0).
		WithOrder("NOMACHINE", "ORPHAN", 5, 9).
		WithOrder("NOPRODUCT", "MISSING", 5, 9)

	result, err := newAssembler(s, nil).Assemble(context.Background(), fixtures.RunDate)
	require.NoError(t, err)

	assert.Equal(t, entities.Delayed, itemFor(t, result, "DELAYED").Status, "delay outranks material shortage")
	assert.Equal(t, entities.MachineMissing, itemFor(t, result, "NOMACHINE").Status)
	assert.Equal(t, entities.Unschedulable, itemFor(t, result, "NOPRODUCT").Status)
}

func TestAssemble_EarlierDeadlineNeverGetsLess(t *testing.T) {
	s := fixtures.NewScenario().
		WithMachine("PRESS", "4", "480", "0").
		WithProduct("WIDGET", fixtures.OnMachine("PRESS", "4", 1)).
		WithOrder("B", "WIDGET", 300, 6).
		WithOrder("A", "WIDGET", 300, 3)

	result, err := newAssembler(s, nil).Assemble(context.Background(), fixtures.RunDate)
	require.NoError(t, err)

	cumulative := func(item dto.PlanItem, through time.Time) entities.Quantity {
		var total entities.Quantity
		for _, e := range item.DailyPlan {
			if !e.Date.After(through) {
				total += e.UnitsPlanned
			}
		}
		return total
	}

	a, b := itemFor(t, result, "A"), itemFor(t, result, "B")
	for day := 0; day < 6; day++ {
		assert.GreaterOrEqual(t, cumulative(a, fixtures.Day(day)), cumulative(b, fixtures.Day(day)), "day %d", day)
	}
	for _, item := range []dto.PlanItem{a, b} {
		var total entities.Quantity
		for _, e := range item.DailyPlan {
			total += e.UnitsPlanned
		}
		assert.GreaterOrEqual(t, total, item.RemainingQuantity)
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	s := fixtures.NewScenario().
		WithMachine("PRESS", "2", "480", "120").
		WithMaterial("STEEL", "75", "10", 2).
		WithProduct("WIDGET", fixtures.OnMachine("PRESS", "2", 1), fixtures.Consumes("STEEL", "0.5")).
		WithOrder("SO-1", "WIDGET", 200, 3).
		WithOrder("SO-2", "WIDGET", 150, 2)

	assembler := newAssembler(s, nil)
	first, err := assembler.Assemble(context.Background(), fixtures.RunDate)
	require.NoError(t, err)
	second, err := assembler.Assemble(context.Background(), fixtures.RunDate.Add(5*time.Hour))
	require.NoError(t, err)

	a, err := json.Marshal(dto.NewProductionPlanResponse(first))
	require.NoError(t, err)
	b, err := json.Marshal(dto.NewProductionPlanResponse(second))
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestAssemble_FinancialHealth(t *testing.T) {
	s := fixtures.NewScenario().
		WithProduct("WIDGET").
		WithOrder("PAID", "WIDGET", 1, 1).
		WithOrder("BROKEN", "WIDGET", 1, 2).
		WithOrder("NONE", "WIDGET", 1, 3)

	health := &entities.FinancialHealth{
		TotalAmount:   decimal.NewFromInt(500),
		Balance:       decimal.Zero,
		PaymentStatus: "Paid",
		DueDate:       fixtures.Day(10),
	}
	invoices := new(MockInvoiceRepository)
	invoices.On("GetInvoiceHealth", mock.Anything, entities.OrderID("PAID")).Return(health, nil)
	invoices.On("GetInvoiceHealth", mock.Anything, entities.OrderID("BROKEN")).Return(nil, errors.New("ledger offline"))
	invoices.On("GetInvoiceHealth", mock.Anything, entities.OrderID("NONE")).Return(nil, nil)

	assembler := NewPlanAssembler(Repositories{
		Orders:    s.Orders,
		Products:  s.Products,
		Machines:  s.Machines,
		Materials: s.Materials,
		Invoices:  invoices,
	}, DefaultConfig(), nil)

	result, err := assembler.Assemble(context.Background(), fixtures.RunDate)
	require.NoError(t, err)

	assert.Equal(t, health, itemFor(t, result, "PAID").FinancialHealth)

	broken := itemFor(t, result, "BROKEN")
	assert.Nil(t, broken.FinancialHealth)
	require.Len(t, broken.Issues, 1)
	assert.Equal(t, entities.IssueFinanceLookupFailed, broken.Issues[0].Code)
	assert.Equal(t, entities.OnTrack, broken.Status, "finance failures do not change the plan status")

	none := itemFor(t, result, "NONE")
	assert.Nil(t, none.FinancialHealth)
	assert.Empty(t, none.Issues)

	invoices.AssertExpectations(t)
}

func TestAssemble_SnapshotFailure(t *testing.T) {
	s := fixtures.NewScenario()
	orders := new(MockOrderRepository)
	orders.On("ListActiveOrders", mock.Anything).Return(nil, errors.New("connection refused"))

	recorder := &fakeRecorder{}
	assembler := NewPlanAssembler(Repositories{
		Orders:    orders,
		Products:  s.Products,
		Machines:  s.Machines,
		Materials: s.Materials,
	}, DefaultConfig(), recorder)

	_, err := assembler.Assemble(context.Background(), fixtures.RunDate)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)
	assert.Equal(t, []recordedRun{{outcome: "failed"}}, recorder.runs)
}

func TestAssemble_RecordsSuccessfulRun(t *testing.T) {
	s := fixtures.NewScenario().WithProduct("P").WithOrder("SO-1", "P", 3, 1)
	recorder := &fakeRecorder{}

	_, err := newAssembler(s, recorder).Assemble(context.Background(), fixtures.RunDate)
	require.NoError(t, err)
	assert.Equal(t, []recordedRun{{outcome: "success", items: 1}}, recorder.runs)
}

func TestAssemble_Cancelled(t *testing.T) {
	s := fixtures.NewScenario().WithProduct("P").WithOrder("SO-1", "P", 3, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAssembler(s, nil).Assemble(ctx, fixtures.RunDate)
	assert.ErrorIs(t, err, context.Canceled)
}
