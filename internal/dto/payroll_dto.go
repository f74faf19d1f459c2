package dto

import (
	"time"

	"vitalexa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SavePayrollConfigRequest struct {
	BaseSalary               decimal.Decimal  `json:"base_salary" validate:"min=0"`
	SalesCommissionPct       decimal.Decimal  `json:"sales_commission_pct" validate:"min=0,max=1"`
	CollectionCommissionPct  decimal.Decimal  `json:"collection_commission_pct" validate:"min=0,max=1"`
	CollectionThreshold      *decimal.Decimal `json:"collection_threshold" validate:"omitempty,min=0,max=1"`
	GeneralCommissionEnabled bool             `json:"general_commission_enabled"`
	GeneralCommissionPct     decimal.Decimal  `json:"general_commission_pct" validate:"min=0,max=1"`
}

type CalculatePayrollRequest struct {
	Month int    `json:"month" validate:"required,min=1,max=12"`
	Year  int    `json:"year" validate:"required,min=2020"`
	Notes string `json:"notes"`
}

type PayrollResponse struct {
	ID         uuid.UUID `json:"id"`
	VendedorID uuid.UUID `json:"vendedor_id"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`

	BaseSalary      decimal.Decimal `json:"base_salary"`
	SalesGoalTarget decimal.Decimal `json:"sales_goal_target"`
	TotalSold       decimal.Decimal `json:"total_sold"`
	TransferredIn   decimal.Decimal `json:"transferred_in"`
	SalesGoalMet    bool            `json:"sales_goal_met"`
	SalesCommissionPct    decimal.Decimal `json:"sales_commission_pct"`
	SalesCommissionAmount decimal.Decimal `json:"sales_commission_amount"`

	PrevMonthTotalSold         decimal.Decimal `json:"prev_month_total_sold"`
	TotalCollected             decimal.Decimal `json:"total_collected"`
	CollectionPct              decimal.Decimal `json:"collection_pct"`
	CollectionGoalMet          bool            `json:"collection_goal_met"`
	CollectionCommissionPct    decimal.Decimal `json:"collection_commission_pct"`
	CollectionCommissionAmount decimal.Decimal `json:"collection_commission_amount"`

	GeneralCommissionEnabled bool            `json:"general_commission_enabled"`
	TotalGlobalGoals         decimal.Decimal `json:"total_global_goals"`
	TotalCompanySales        decimal.Decimal `json:"total_company_sales"`
	GeneralCommissionAmount  decimal.Decimal `json:"general_commission_amount"`

	TotalCommissions decimal.Decimal `json:"total_commissions"`
	TotalPayout      decimal.Decimal `json:"total_payout"`
	Notes            string          `json:"notes,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PayrollToResponse converts a payroll snapshot to its API shape.
func PayrollToResponse(p *model.Payroll) PayrollResponse {
	return PayrollResponse{
		ID:                         p.ID,
		VendedorID:                 p.VendedorID,
		Month:                      p.Month,
		Year:                       p.Year,
		BaseSalary:                 p.BaseSalary,
		SalesGoalTarget:            p.SalesGoalTarget,
		TotalSold:                  p.TotalSold,
		TransferredIn:              p.TransferredIn,
		SalesGoalMet:               p.SalesGoalMet,
		SalesCommissionPct:         p.SalesCommissionPct,
		SalesCommissionAmount:      p.SalesCommissionAmount,
		PrevMonthTotalSold:         p.PrevMonthTotalSold,
		TotalCollected:             p.TotalCollected,
		CollectionPct:              p.CollectionPct,
		CollectionGoalMet:          p.CollectionGoalMet,
		CollectionCommissionPct:    p.CollectionCommissionPct,
		CollectionCommissionAmount: p.CollectionCommissionAmount,
		GeneralCommissionEnabled:   p.GeneralCommissionEnabled,
		TotalGlobalGoals:           p.TotalGlobalGoals,
		TotalCompanySales:          p.TotalCompanySales,
		GeneralCommissionAmount:    p.GeneralCommissionAmount,
		TotalCommissions:           p.TotalCommissions,
		TotalPayout:                p.TotalPayout,
		Notes:                      p.Notes,
		UpdatedAt:                  p.UpdatedAt,
	}
}

// BatchPayrollResult reports per-vendor outcomes of a batch run. One vendor
// failing never aborts the rest.
type BatchPayrollResult struct {
	Calculated []PayrollResponse  `json:"calculated"`
	Failed     []BatchPayrollFail `json:"failed,omitempty"`
}

type BatchPayrollFail struct {
	VendedorID uuid.UUID `json:"vendedor_id"`
	Error      string    `json:"error"`
}

type CreateSaleGoalRequest struct {
	VendedorID   uuid.UUID       `json:"vendedor_id" validate:"required"`
	Month        int             `json:"month" validate:"required,min=1,max=12"`
	Year         int             `json:"year" validate:"required,min=2020"`
	TargetAmount decimal.Decimal `json:"target_amount" validate:"required,gt=0"`
}

type SaleGoalResponse struct {
	ID            uuid.UUID       `json:"id"`
	VendedorID    uuid.UUID       `json:"vendedor_id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Achieved      bool            `json:"achieved"`
}

// SaleGoalToResponse converts a sale goal to its API shape.
func SaleGoalToResponse(g *model.SaleGoal) SaleGoalResponse {
	return SaleGoalResponse{
		ID:            g.ID,
		VendedorID:    g.VendedorID,
		Month:         g.Month,
		Year:          g.Year,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Achieved:      g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount),
	}
}
