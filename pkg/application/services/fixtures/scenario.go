// Package fixtures builds in-memory planning snapshots for tests.
package fixtures

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/memory"
)

// RunDate is the default planning date used by scenarios
var RunDate = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

// Scenario bundles the in-memory repositories for one planning snapshot
type Scenario struct {
	Orders    *memory.OrderRepository
	Products  *memory.ProductRepository
	Machines  *memory.MachineRepository
	Materials *memory.MaterialRepository
	Invoices  *memory.InvoiceRepository
}

// NewScenario creates an empty scenario
func NewScenario() *Scenario {
	return &Scenario{
		Orders:    memory.NewOrderRepository(8),
		Products:  memory.NewProductRepository(8),
		Machines:  memory.NewMachineRepository(),
		Materials: memory.NewMaterialRepository(),
		Invoices:  memory.NewInvoiceRepository(),
	}
}

// Dec parses a decimal literal and panics on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Day returns the calendar day n days after RunDate
func Day(n int) time.Time {
	return entities.AddDays(RunDate, n)
}

// WithMachine adds a machine with the given rated cycle, daily minutes and baseline load
func (s *Scenario) WithMachine(id string, cycle, available, committed string) *Scenario {
	m, err := entities.NewMachine(entities.MachineID(id), id, Dec(cycle), Dec(available), Dec(committed))
	if err != nil {
		panic(err)
	}
	if err := s.Machines.LoadMachines([]*entities.Machine{m}); err != nil {
		panic(err)
	}
	return s
}

// WithMaterial adds a raw material stock record
func (s *Scenario) WithMaterial(id string, stock, safety string, leadTimeDays int) *Scenario {
	m, err := entities.NewRawMaterial(
		entities.MaterialID(id),
		id,
		id+" stock",
		Dec(stock),
		Dec(safety),
		Dec(safety),
		leadTimeDays,
		"kg",
	)
	if err != nil {
		panic(err)
	}
	if err := s.Materials.LoadMaterials([]*entities.RawMaterial{m}); err != nil {
		panic(err)
	}
	return s
}

// WithProduct adds a product built by the given options
func (s *Scenario) WithProduct(id string, opts ...ProductOption) *Scenario {
	p, err := entities.NewProduct(entities.ProductID(id), id)
	if err != nil {
		panic(err)
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := s.Products.LoadProducts([]*entities.Product{p}); err != nil {
		panic(err)
	}
	return s
}

// WithOrder adds an in-progress order delivered deliveryDay days after RunDate
func (s *Scenario) WithOrder(id, product string, quantity entities.Quantity, deliveryDay int) *Scenario {
	o, err := entities.NewOrder(
		entities.OrderID(id),
		"C-"+id,
		"Customer "+id,
		entities.ProductID(product),
		quantity,
		0,
		RunDate.AddDate(0, 0, -7),
		Day(deliveryDay),
		entities.InProgress,
	)
	if err != nil {
		panic(err)
	}
	if err := s.Orders.LoadOrders([]*entities.Order{o}); err != nil {
		panic(err)
	}
	return s
}

// ProductOption configures a product's bill of materials
type ProductOption func(*entities.Product)

// OnMachine adds a machine step
func OnMachine(id string, cycle string, unitsPerCycle entities.Quantity) ProductOption {
	return func(p *entities.Product) {
		step, err := entities.NewMachineStep(entities.MachineID(id), Dec(cycle), unitsPerCycle)
		if err != nil {
			panic(err)
		}
		p.MachineSteps = append(p.MachineSteps, *step)
	}
}

// Consumes adds a raw material requirement
func Consumes(id string, perUnit string) ProductOption {
	return func(p *entities.Product) {
		req, err := entities.NewMaterialRequirement(entities.MaterialID(id), Dec(perUnit), "kg")
		if err != nil {
			panic(err)
		}
		p.Materials = append(p.Materials, *req)
	}
}

// ManualJob adds a manual labor step
func ManualJob(id string, minutesPerUnit string) ProductOption {
	return func(p *entities.Product) {
		job, err := entities.NewManualJobStep(entities.ManualJobID(id), id, Dec(minutesPerUnit))
		if err != nil {
			panic(err)
		}
		p.ManualJobs = append(p.ManualJobs, *job)
	}
}

// Contains adds a semi-finished component. Self references are allowed so
// tests can build malformed trees.
func Contains(id string, qty entities.Quantity) ProductOption {
	return func(p *entities.Product) {
		p.Components = append(p.Components, entities.ComponentRequirement{
			ProductID:       entities.ProductID(id),
			QuantityPerUnit: qty,
		})
	}
}
