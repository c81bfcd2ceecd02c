package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// Scenario file names inside a scenario directory
const (
	OrdersFile           = "orders.csv"
	ProductsFile         = "products.csv"
	MachineStepsFile     = "machine_steps.csv"
	ManualJobsFile       = "manual_jobs.csv"
	ProductMaterialsFile = "product_materials.csv"
	ComponentsFile       = "components.csv"
	MachinesFile         = "machines.csv"
	MaterialsFile        = "materials.csv"
	InvoicesFile         = "invoices.csv"
)

// Scenario is the master data read from a scenario directory
type Scenario struct {
	Orders    []*entities.Order
	Products  []*entities.Product
	Machines  []*entities.Machine
	Materials []*entities.RawMaterial
	Invoices  map[entities.OrderID]entities.FinancialHealth
}

// Loader handles loading planning data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario reads every scenario file in dir. Orders, products, machines and
// materials are required; the BOM detail files and invoices are optional.
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	s := &Scenario{Invoices: make(map[entities.OrderID]entities.FinancialHealth)}
	var err error

	if s.Orders, err = l.LoadOrders(filepath.Join(dir, OrdersFile)); err != nil {
		return nil, err
	}
	if s.Products, err = l.LoadProducts(dir); err != nil {
		return nil, err
	}
	if s.Machines, err = l.LoadMachines(filepath.Join(dir, MachinesFile)); err != nil {
		return nil, err
	}
	if s.Materials, err = l.LoadMaterials(filepath.Join(dir, MaterialsFile)); err != nil {
		return nil, err
	}
	if s.Invoices, err = l.LoadInvoices(filepath.Join(dir, InvoicesFile)); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadOrders loads customer orders from a CSV file
func (l *Loader) LoadOrders(filename string) ([]*entities.Order, error) {
	expectedHeader := []string{
		"order_id", "customer_id", "customer_name", "product_id",
		"quantity_ordered", "quantity_delivered", "order_date", "delivery_date", "status",
	}
	records, err := readTable(filename, "orders", expectedHeader, false)
	if err != nil {
		return nil, err
	}

	var orders []*entities.Order
	for i, record := range records {
		order, err := parseOrder(record)
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// LoadProducts loads products and attaches their machine steps, manual jobs,
// materials and components from the sibling files in dir
func (l *Loader) LoadProducts(dir string) ([]*entities.Product, error) {
	records, err := readTable(filepath.Join(dir, ProductsFile), "products", []string{"product_id", "name"}, false)
	if err != nil {
		return nil, err
	}

	var products []*entities.Product
	byID := make(map[entities.ProductID]*entities.Product)
	for i, record := range records {
		p, err := entities.NewProduct(entities.ProductID(strings.TrimSpace(record[0])), strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("products CSV row %d: duplicate product %s", i+2, p.ID)
		}
		byID[p.ID] = p
		products = append(products, p)
	}

	lookup := func(table string, row int, id string) (*entities.Product, error) {
		p, ok := byID[entities.ProductID(strings.TrimSpace(id))]
		if !ok {
			return nil, fmt.Errorf("%s CSV row %d: unknown product %s", table, row, id)
		}
		return p, nil
	}

	steps, err := readTable(filepath.Join(dir, MachineStepsFile), "machine steps",
		[]string{"product_id", "machine_id", "cycle_time_minutes", "units_per_cycle"}, true)
	if err != nil {
		return nil, err
	}
	for i, record := range steps {
		p, err := lookup("machine steps", i+2, record[0])
		if err != nil {
			return nil, err
		}
		step, err := parseMachineStep(record)
		if err != nil {
			return nil, fmt.Errorf("machine steps CSV row %d: %w", i+2, err)
		}
		p.MachineSteps = append(p.MachineSteps, *step)
	}

	jobs, err := readTable(filepath.Join(dir, ManualJobsFile), "manual jobs",
		[]string{"product_id", "manual_job_id", "name", "minutes_per_unit"}, true)
	if err != nil {
		return nil, err
	}
	for i, record := range jobs {
		p, err := lookup("manual jobs", i+2, record[0])
		if err != nil {
			return nil, err
		}
		minutes, err := parseDecimal(record[3], "minutes_per_unit")
		if err != nil {
			return nil, fmt.Errorf("manual jobs CSV row %d: %w", i+2, err)
		}
		job, err := entities.NewManualJobStep(entities.ManualJobID(strings.TrimSpace(record[1])), strings.TrimSpace(record[2]), minutes)
		if err != nil {
			return nil, fmt.Errorf("manual jobs CSV row %d: %w", i+2, err)
		}
		p.ManualJobs = append(p.ManualJobs, *job)
	}

	mats, err := readTable(filepath.Join(dir, ProductMaterialsFile), "product materials",
		[]string{"product_id", "raw_material_id", "quantity_per_unit", "unit_of_measure"}, true)
	if err != nil {
		return nil, err
	}
	for i, record := range mats {
		p, err := lookup("product materials", i+2, record[0])
		if err != nil {
			return nil, err
		}
		qty, err := parseDecimal(record[2], "quantity_per_unit")
		if err != nil {
			return nil, fmt.Errorf("product materials CSV row %d: %w", i+2, err)
		}
		req, err := entities.NewMaterialRequirement(entities.MaterialID(strings.TrimSpace(record[1])), qty, strings.TrimSpace(record[3]))
		if err != nil {
			return nil, fmt.Errorf("product materials CSV row %d: %w", i+2, err)
		}
		p.Materials = append(p.Materials, *req)
	}

	comps, err := readTable(filepath.Join(dir, ComponentsFile), "components",
		[]string{"product_id", "component_id", "quantity_per_unit"}, true)
	if err != nil {
		return nil, err
	}
	for i, record := range comps {
		p, err := lookup("components", i+2, record[0])
		if err != nil {
			return nil, err
		}
		qty, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("components CSV row %d: invalid quantity_per_unit: %w", i+2, err)
		}
		comp, err := entities.NewComponentRequirement(p.ID, entities.ProductID(strings.TrimSpace(record[1])), entities.Quantity(qty))
		if err != nil {
			return nil, fmt.Errorf("components CSV row %d: %w", i+2, err)
		}
		p.Components = append(p.Components, *comp)
	}

	return products, nil
}

// LoadMachines loads machine master data from a CSV file
func (l *Loader) LoadMachines(filename string) ([]*entities.Machine, error) {
	expectedHeader := []string{
		"machine_id", "name", "rated_cycle_time_minutes", "daily_available_minutes", "current_committed_minutes",
	}
	records, err := readTable(filename, "machines", expectedHeader, false)
	if err != nil {
		return nil, err
	}

	var machines []*entities.Machine
	for i, record := range records {
		values, err := parseDecimals(record[2:5], expectedHeader[2:5])
		if err != nil {
			return nil, fmt.Errorf("machines CSV row %d: %w", i+2, err)
		}
		m, err := entities.NewMachine(
			entities.MachineID(strings.TrimSpace(record[0])),
			strings.TrimSpace(record[1]),
			values[0], values[1], values[2],
		)
		if err != nil {
			return nil, fmt.Errorf("machines CSV row %d: %w", i+2, err)
		}
		machines = append(machines, m)
	}
	return machines, nil
}

// LoadMaterials loads raw material stock from a CSV file
func (l *Loader) LoadMaterials(filename string) ([]*entities.RawMaterial, error) {
	expectedHeader := []string{
		"raw_material_id", "code", "name", "current_stock_level", "reorder_point",
		"safety_stock_level", "lead_time_days", "unit_of_measure",
	}
	records, err := readTable(filename, "materials", expectedHeader, false)
	if err != nil {
		return nil, err
	}

	var materials []*entities.RawMaterial
	for i, record := range records {
		values, err := parseDecimals(record[3:6], expectedHeader[3:6])
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		lead, err := strconv.Atoi(strings.TrimSpace(record[6]))
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: invalid lead_time_days: %w", i+2, err)
		}
		m, err := entities.NewRawMaterial(
			entities.MaterialID(strings.TrimSpace(record[0])),
			strings.TrimSpace(record[1]),
			strings.TrimSpace(record[2]),
			values[0], values[1], values[2],
			lead,
			strings.TrimSpace(record[7]),
		)
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		materials = append(materials, m)
	}
	return materials, nil
}

// LoadInvoices loads invoice health keyed by order; a missing file yields none
func (l *Loader) LoadInvoices(filename string) (map[entities.OrderID]entities.FinancialHealth, error) {
	expectedHeader := []string{"order_id", "total_amount", "balance", "payment_status", "due_date"}
	records, err := readTable(filename, "invoices", expectedHeader, true)
	if err != nil {
		return nil, err
	}

	invoices := make(map[entities.OrderID]entities.FinancialHealth, len(records))
	for i, record := range records {
		values, err := parseDecimals(record[1:3], expectedHeader[1:3])
		if err != nil {
			return nil, fmt.Errorf("invoices CSV row %d: %w", i+2, err)
		}
		health := entities.FinancialHealth{
			TotalAmount:   values[0],
			Balance:       values[1],
			PaymentStatus: strings.TrimSpace(record[3]),
		}
		if due := strings.TrimSpace(record[4]); due != "" {
			if health.DueDate, err = parseDate(due, "due_date"); err != nil {
				return nil, fmt.Errorf("invoices CSV row %d: %w", i+2, err)
			}
		}
		invoices[entities.OrderID(strings.TrimSpace(record[0]))] = health
	}
	return invoices, nil
}

// readTable returns the data rows of a CSV file after validating its header.
// An optional file that does not exist yields no rows.
func readTable(filename, name string, expectedHeader []string, optional bool) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s file %s: %w", name, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s CSV must have a header row", name)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseOrder(record []string) (*entities.Order, error) {
	ordered, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity_ordered: %w", err)
	}
	delivered, err := strconv.ParseInt(strings.TrimSpace(record[5]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity_delivered: %w", err)
	}
	orderDate, err := parseDate(record[6], "order_date")
	if err != nil {
		return nil, err
	}
	deliveryDate, err := parseDate(record[7], "delivery_date")
	if err != nil {
		return nil, err
	}
	status, err := entities.ParseOrderStatus(record[8])
	if err != nil {
		return nil, err
	}

	return entities.NewOrder(
		entities.OrderID(strings.TrimSpace(record[0])),
		strings.TrimSpace(record[1]),
		strings.TrimSpace(record[2]),
		entities.ProductID(strings.TrimSpace(record[3])),
		entities.Quantity(ordered),
		entities.Quantity(delivered),
		orderDate,
		deliveryDate,
		status,
	)
}

func parseMachineStep(record []string) (*entities.MachineStep, error) {
	cycle, err := parseDecimal(record[2], "cycle_time_minutes")
	if err != nil {
		return nil, err
	}
	perCycle, err := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid units_per_cycle: %w", err)
	}
	return entities.NewMachineStep(entities.MachineID(strings.TrimSpace(record[1])), cycle, entities.Quantity(perCycle))
}

func parseDecimal(raw, column string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", column, err)
	}
	return d, nil
}

func parseDecimals(raw, columns []string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(raw))
	for i := range raw {
		d, err := parseDecimal(raw[i], columns[i])
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func parseDate(raw, column string) (time.Time, error) {
	t, err := time.Parse(entities.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", column, err)
	}
	return t, nil
}
