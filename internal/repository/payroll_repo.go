package repository

import (
	"context"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayrollRepository interface {
	// Vendor config
	SaveConfig(ctx context.Context, c *model.VendorPayrollConfig) error
	FindConfigByVendor(ctx context.Context, vendorID uuid.UUID) (*model.VendorPayrollConfig, error)
	ListConfigs(ctx context.Context) ([]model.VendorPayrollConfig, error)

	// Snapshots — FindSnapshot + SaveSnapshot implement the overwrite
	// semantics: recalculation replaces the row for (vendor, month, year).
	FindSnapshot(ctx context.Context, vendorID uuid.UUID, month, year int) (*model.Payroll, error)
	SaveSnapshot(ctx context.Context, p *model.Payroll) error
	ListSnapshots(ctx context.Context, month, year int) ([]model.Payroll, error)

	// Sale goals
	CreateGoal(ctx context.Context, g *model.SaleGoal) error
	FindGoal(ctx context.Context, vendorID uuid.UUID, month, year int) (*model.SaleGoal, error)
	ListGoals(ctx context.Context, month, year int) ([]model.SaleGoal, error)
	SaveGoal(ctx context.Context, g *model.SaleGoal) error
	AddGoalProgressTx(tx *gorm.DB, vendorID uuid.UUID, month, year int, delta decimal.Decimal) error
	SumGoalTargets(ctx context.Context, month, year int) (decimal.Decimal, error)
}

type payrollRepo struct{ db *gorm.DB }

func NewPayrollRepository(db *gorm.DB) PayrollRepository { return &payrollRepo{db: db} }

func (r *payrollRepo) SaveConfig(ctx context.Context, c *model.VendorPayrollConfig) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *payrollRepo) FindConfigByVendor(ctx context.Context, vendorID uuid.UUID) (*model.VendorPayrollConfig, error) {
	var c model.VendorPayrollConfig
	err := r.db.WithContext(ctx).Where("vendedor_id = ?", vendorID).First(&c).Error
	return &c, err
}

func (r *payrollRepo) ListConfigs(ctx context.Context) ([]model.VendorPayrollConfig, error) {
	var cfgs []model.VendorPayrollConfig
	err := r.db.WithContext(ctx).Preload("Vendedor").Find(&cfgs).Error
	return cfgs, err
}

func (r *payrollRepo) FindSnapshot(ctx context.Context, vendorID uuid.UUID, month, year int) (*model.Payroll, error) {
	var p model.Payroll
	err := r.db.WithContext(ctx).
		Where("vendedor_id = ? AND month = ? AND year = ?", vendorID, month, year).
		First(&p).Error
	return &p, err
}

func (r *payrollRepo) SaveSnapshot(ctx context.Context, p *model.Payroll) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *payrollRepo) ListSnapshots(ctx context.Context, month, year int) ([]model.Payroll, error) {
	var snapshots []model.Payroll
	err := r.db.WithContext(ctx).Preload("Vendedor").
		Where("month = ? AND year = ?", month, year).
		Order("created_at ASC").Find(&snapshots).Error
	return snapshots, err
}

func (r *payrollRepo) CreateGoal(ctx context.Context, g *model.SaleGoal) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *payrollRepo) FindGoal(ctx context.Context, vendorID uuid.UUID, month, year int) (*model.SaleGoal, error) {
	var g model.SaleGoal
	err := r.db.WithContext(ctx).
		Where("vendedor_id = ? AND month = ? AND year = ?", vendorID, month, year).
		First(&g).Error
	return &g, err
}

func (r *payrollRepo) ListGoals(ctx context.Context, month, year int) ([]model.SaleGoal, error) {
	var goals []model.SaleGoal
	err := r.db.WithContext(ctx).Where("month = ? AND year = ?", month, year).Find(&goals).Error
	return goals, err
}

func (r *payrollRepo) SaveGoal(ctx context.Context, g *model.SaleGoal) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *payrollRepo) AddGoalProgressTx(tx *gorm.DB, vendorID uuid.UUID, month, year int, delta decimal.Decimal) error {
	return tx.Model(&model.SaleGoal{}).
		Where("vendedor_id = ? AND month = ? AND year = ?", vendorID, month, year).
		Update("current_amount", gorm.Expr("current_amount + ?", delta)).Error
}

func (r *payrollRepo) SumGoalTargets(ctx context.Context, month, year int) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(target_amount), 0) FROM sale_goals
		WHERE month = ? AND year = ?`, month, year).Scan(&sum).Error
	return sum, err
}
