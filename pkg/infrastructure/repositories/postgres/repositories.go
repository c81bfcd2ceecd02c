package postgres

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// Compile-time interface compliance checks
var (
	_ repositories.OrderRepository    = (*OrderRepository)(nil)
	_ repositories.ProductRepository  = (*ProductRepository)(nil)
	_ repositories.MachineRepository  = (*MachineRepository)(nil)
	_ repositories.MaterialRepository = (*MaterialRepository)(nil)
	_ repositories.InvoiceRepository  = (*InvoiceRepository)(nil)
)

// OrderRepository provides access to customer orders
type OrderRepository struct {
	db         *gorm.DB // Write database
	readOnlyDB *gorm.DB // Read-only database
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB, readOnlyDB *gorm.DB) *OrderRepository {
	return &OrderRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// ListActiveOrders returns the in-progress orders
func (r *OrderRepository) ListActiveOrders(ctx context.Context) ([]*entities.Order, error) {
	var rows []OrderModel
	err := r.readOnlyDB.WithContext(ctx).
		Where("status = ?", entities.InProgress.String()).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active orders")
	}

	orders := make([]*entities.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.toEntity()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid order %s", row.ID)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// Save upserts an order through the write database
func (r *OrderRepository) Save(ctx context.Context, order *entities.Order) error {
	row := orderModelFromEntity(order)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return errors.Wrap(err, "failed to save order")
	}
	return nil
}

// ProductRepository provides access to products and their bills of material
type ProductRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB, readOnlyDB *gorm.DB) *ProductRepository {
	return &ProductRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// GetProduct loads a product with its machine steps, manual jobs, materials and components
func (r *ProductRepository) GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	bySequence := func(db *gorm.DB) *gorm.DB { return db.Order("sequence, id") }
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id") }

	var row ProductModel
	err := r.readOnlyDB.WithContext(ctx).
		Preload("MachineSteps", bySequence).
		Preload("ManualJobs", bySequence).
		Preload("Materials", byID).
		Preload("Components", byID).
		First(&row, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(entities.ErrNotFound, "product %s", id)
		}
		return nil, errors.Wrap(err, "failed to get product")
	}

	product, err := row.toEntity()
	if err != nil {
		return nil, errors.Wrapf(err, "invalid product %s", id)
	}
	return product, nil
}

// Save writes a product and replaces its bill of materials
func (r *ProductRepository) Save(ctx context.Context, product *entities.Product) error {
	row := productModelFromEntity(product)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&ProductMachineStepModel{}, &ProductManualJobModel{},
			&ProductMaterialModel{}, &ProductComponentModel{},
		} {
			if err := tx.Where("product_id = ?", row.ID).Delete(child).Error; err != nil {
				return err
			}
		}

		header := ProductModel{ID: row.ID, Name: row.Name}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&header).Error; err != nil {
			return err
		}

		if len(row.MachineSteps) > 0 {
			if err := tx.Create(&row.MachineSteps).Error; err != nil {
				return err
			}
		}
		if len(row.ManualJobs) > 0 {
			if err := tx.Create(&row.ManualJobs).Error; err != nil {
				return err
			}
		}
		if len(row.Materials) > 0 {
			if err := tx.Create(&row.Materials).Error; err != nil {
				return err
			}
		}
		if len(row.Components) > 0 {
			if err := tx.Create(&row.Components).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to save product")
	}
	return nil
}

// MachineRepository provides access to machine master data
type MachineRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewMachineRepository creates a new machine repository
func NewMachineRepository(db *gorm.DB, readOnlyDB *gorm.DB) *MachineRepository {
	return &MachineRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// ListMachines returns every machine
func (r *MachineRepository) ListMachines(ctx context.Context) ([]*entities.Machine, error) {
	var rows []MachineModel
	if err := r.readOnlyDB.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list machines")
	}

	machines := make([]*entities.Machine, 0, len(rows))
	for _, row := range rows {
		m, err := entities.NewMachine(
			entities.MachineID(row.ID), row.Name,
			row.RatedCycleTimeMinutes, row.DailyAvailableMinutes, row.CurrentCommittedMinutes,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid machine %s", row.ID)
		}
		machines = append(machines, m)
	}
	return machines, nil
}

// Save upserts a machine
func (r *MachineRepository) Save(ctx context.Context, m *entities.Machine) error {
	row := MachineModel{
		ID:                      string(m.ID),
		Name:                    m.Name,
		RatedCycleTimeMinutes:   m.RatedCycleTimeMinutes,
		DailyAvailableMinutes:   m.DailyAvailableMinutes,
		CurrentCommittedMinutes: m.CurrentCommittedMinutes,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return errors.Wrap(err, "failed to save machine")
	}
	return nil
}

// MaterialRepository provides access to raw material stock
type MaterialRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewMaterialRepository creates a new material repository
func NewMaterialRepository(db *gorm.DB, readOnlyDB *gorm.DB) *MaterialRepository {
	return &MaterialRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// ListRawMaterialStock returns the stock position of every raw material
func (r *MaterialRepository) ListRawMaterialStock(ctx context.Context) ([]*entities.RawMaterial, error) {
	var rows []RawMaterialModel
	if err := r.readOnlyDB.WithContext(ctx).Order("code, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list raw material stock")
	}

	materials := make([]*entities.RawMaterial, 0, len(rows))
	for _, row := range rows {
		m, err := entities.NewRawMaterial(
			entities.MaterialID(row.ID), row.Code, row.Name,
			row.CurrentStockLevel, row.ReorderPoint, row.SafetyStockLevel,
			row.LeadTimeDays, row.UnitOfMeasure,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid raw material %s", row.ID)
		}
		materials = append(materials, m)
	}
	return materials, nil
}

// Save upserts a raw material stock position
func (r *MaterialRepository) Save(ctx context.Context, m *entities.RawMaterial) error {
	row := RawMaterialModel{
		ID:                string(m.ID),
		Code:              m.Code,
		Name:              m.Name,
		CurrentStockLevel: m.CurrentStockLevel,
		ReorderPoint:      m.ReorderPoint,
		SafetyStockLevel:  m.SafetyStockLevel,
		LeadTimeDays:      m.LeadTimeDays,
		UnitOfMeasure:     m.UnitOfMeasure,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return errors.Wrap(err, "failed to save raw material")
	}
	return nil
}

// InvoiceRepository reads invoice positions from the finance ledger tables
type InvoiceRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB, readOnlyDB *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// GetInvoiceHealth returns the order's invoice position, or nil when it has none
func (r *InvoiceRepository) GetInvoiceHealth(ctx context.Context, orderID entities.OrderID) (*entities.FinancialHealth, error) {
	var row InvoiceModel
	err := r.readOnlyDB.WithContext(ctx).Where("order_id = ?", string(orderID)).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get invoice")
	}

	health := &entities.FinancialHealth{
		TotalAmount:   row.TotalAmount,
		Balance:       row.Balance,
		PaymentStatus: row.PaymentStatus,
	}
	if row.DueDate != nil {
		health.DueDate = *row.DueDate
	}
	return health, nil
}

// Save replaces the invoice position of an order
func (r *InvoiceRepository) Save(ctx context.Context, orderID entities.OrderID, health entities.FinancialHealth) error {
	row := InvoiceModel{
		OrderID:       string(orderID),
		TotalAmount:   health.TotalAmount,
		Balance:       health.Balance,
		PaymentStatus: health.PaymentStatus,
	}
	if !health.DueDate.IsZero() {
		due := health.DueDate
		row.DueDate = &due
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_amount", "balance", "payment_status", "due_date", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return errors.Wrap(err, "failed to save invoice")
	}
	return nil
}
