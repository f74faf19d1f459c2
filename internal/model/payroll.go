package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorPayrollConfig holds the commission parameters of one vendor.
// Percentages are fractions: 0.0150 means 1.5%. CollectionThreshold is the
// minimum collected/sold ratio that unlocks the collection commission.
type VendorPayrollConfig struct {
	ID                       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendedorID               uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	BaseSalary               decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SalesCommissionPct       decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	CollectionCommissionPct  decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	CollectionThreshold      decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0.80"`
	GeneralCommissionEnabled bool            `gorm:"not null;default:false"`
	GeneralCommissionPct     decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	CreatedAt                time.Time
	UpdatedAt                time.Time

	Vendedor *User `gorm:"foreignKey:VendedorID"`
}

// SaleGoal is a monthly sales target. CurrentAmount tracks progress and is
// advanced whenever an order completes inside the goal's month.
type SaleGoal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendedorID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_sale_goal_vmy,unique"`
	Month         int             `gorm:"not null;index:idx_sale_goal_vmy,unique"`
	Year          int             `gorm:"not null;index:idx_sale_goal_vmy,unique"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Payroll is the frozen monthly snapshot for one vendor. Recalculation
// overwrites the existing row for (vendor, month, year); it is never
// adjusted implicitly by later edits to the underlying ledger.
type Payroll struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendedorID uuid.UUID `gorm:"type:uuid;not null;index:idx_payroll_vmy,unique"`
	Month      int       `gorm:"not null;index:idx_payroll_vmy,unique"`
	Year       int       `gorm:"not null;index:idx_payroll_vmy,unique"`

	BaseSalary      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SalesGoalTarget decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalSold       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TransferredIn   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SalesGoalMet    bool            `gorm:"not null;default:false"`
	SalesCommissionPct    decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	SalesCommissionAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	PrevMonthTotalSold        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalCollected            decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CollectionPct             decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	CollectionGoalMet         bool            `gorm:"not null;default:false"`
	CollectionCommissionPct    decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	CollectionCommissionAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	GeneralCommissionEnabled bool            `gorm:"not null;default:false"`
	TotalGlobalGoals         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalCompanySales        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	GeneralCommissionPct     decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	GeneralCommissionAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	TotalCommissions decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalPayout      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Notes            string
	CalculatedByID   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Vendedor *User `gorm:"foreignKey:VendedorID"`
}
