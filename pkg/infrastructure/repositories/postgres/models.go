package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderModel is a customer order row owned by order management
type OrderModel struct {
	ID                string    `gorm:"primaryKey"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
	CustomerID        string    `gorm:"not null"`
	CustomerName      string    `gorm:"not null"`
	ProductID         string    `gorm:"not null;index"`
	QuantityOrdered   int64     `gorm:"not null"`
	QuantityDelivered int64     `gorm:"not null;default:0"`
	OrderDate         time.Time `gorm:"not null"`
	DeliveryDate      time.Time `gorm:"not null"`
	Status            string    `gorm:"not null;index"`
}

func (OrderModel) TableName() string { return "customer_orders" }

// ProductModel is a product header with its bill of materials
type ProductModel struct {
	ID           string                    `gorm:"primaryKey"`
	CreatedAt    time.Time                 `gorm:"autoCreateTime"`
	UpdatedAt    time.Time                 `gorm:"autoUpdateTime"`
	Name         string                    `gorm:"not null"`
	MachineSteps []ProductMachineStepModel `gorm:"foreignKey:ProductID"`
	ManualJobs   []ProductManualJobModel   `gorm:"foreignKey:ProductID"`
	Materials    []ProductMaterialModel    `gorm:"foreignKey:ProductID"`
	Components   []ProductComponentModel   `gorm:"foreignKey:ProductID"`
}

func (ProductModel) TableName() string { return "products" }

// ProductMachineStepModel is one machine operation of a product
type ProductMachineStepModel struct {
	ID               uint            `gorm:"primaryKey"`
	ProductID        string          `gorm:"not null;index"`
	Sequence         int             `gorm:"not null;default:0"`
	MachineID        string          `gorm:"not null"`
	CycleTimeMinutes decimal.Decimal `gorm:"type:numeric;not null"`
	UnitsPerCycle    int64           `gorm:"not null;default:1"`
}

func (ProductMachineStepModel) TableName() string { return "product_machine_steps" }

type ProductManualJobModel struct {
	ID             uint            `gorm:"primaryKey"`
	ProductID      string          `gorm:"not null;index"`
	Sequence       int             `gorm:"not null;default:0"`
	ManualJobID    string          `gorm:"not null"`
	Name           string
	MinutesPerUnit decimal.Decimal `gorm:"type:numeric;not null"`
}

func (ProductManualJobModel) TableName() string { return "product_manual_jobs" }

type ProductMaterialModel struct {
	ID              uint            `gorm:"primaryKey"`
	ProductID       string          `gorm:"not null;index"`
	RawMaterialID   string          `gorm:"not null"`
	QuantityPerUnit decimal.Decimal `gorm:"type:numeric;not null"`
	UnitOfMeasure   string
}

func (ProductMaterialModel) TableName() string { return "product_materials" }

type ProductComponentModel struct {
	ID              uint   `gorm:"primaryKey"`
	ProductID       string `gorm:"not null;index"`
	ComponentID     string `gorm:"not null"`
	QuantityPerUnit int64  `gorm:"not null"`
}

func (ProductComponentModel) TableName() string { return "product_components" }

// MachineModel is a machine master record
type MachineModel struct {
	ID                      string          `gorm:"primaryKey"`
	CreatedAt               time.Time       `gorm:"autoCreateTime"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime"`
	Name                    string          `gorm:"not null"`
	RatedCycleTimeMinutes   decimal.Decimal `gorm:"type:numeric;not null"`
	DailyAvailableMinutes   decimal.Decimal `gorm:"type:numeric;not null"`
	CurrentCommittedMinutes decimal.Decimal `gorm:"type:numeric;not null;default:0"`
}

func (MachineModel) TableName() string { return "machines" }

// RawMaterialModel is a raw material stock position
type RawMaterialModel struct {
	ID                string          `gorm:"primaryKey"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime"`
	Code              string          `gorm:"not null;uniqueIndex"`
	Name              string          `gorm:"not null"`
	CurrentStockLevel decimal.Decimal `gorm:"type:numeric;not null"`
	ReorderPoint      decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	SafetyStockLevel  decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	LeadTimeDays      int             `gorm:"not null;default:0"`
	UnitOfMeasure     string
}

func (RawMaterialModel) TableName() string { return "raw_materials" }

// InvoiceModel is the finance ledger's position for one order
type InvoiceModel struct {
	ID            uint            `gorm:"primaryKey"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime"`
	OrderID       string          `gorm:"not null;uniqueIndex"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric;not null"`
	Balance       decimal.Decimal `gorm:"type:numeric;not null"`
	PaymentStatus string          `gorm:"not null"`
	DueDate       *time.Time
}

func (InvoiceModel) TableName() string { return "invoices" }

// SetupModels migrates every table the planner reads
func SetupModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&OrderModel{},
		&ProductModel{},
		&ProductMachineStepModel{},
		&ProductManualJobModel{},
		&ProductMaterialModel{},
		&ProductComponentModel{},
		&MachineModel{},
		&RawMaterialModel{},
		&InvoiceModel{},
	)
}
