package service

import (
	"context"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/identity"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"
	"vitalexa/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PayrollPDFGenerator renders a payroll snapshot to disk and returns the
// file path.
type PayrollPDFGenerator interface {
	GeneratePayrollPDF(p *model.Payroll, vendorName string) (string, error)
}

type PayrollService interface {
	SaveConfig(ctx context.Context, vendorID uuid.UUID, req dto.SavePayrollConfigRequest) error
	GetConfig(ctx context.Context, vendorID uuid.UUID) (*model.VendorPayrollConfig, error)

	Calculate(ctx context.Context, vendorID uuid.UUID, actorID uuid.UUID, req dto.CalculatePayrollRequest) (*dto.PayrollResponse, error)
	CalculateAll(ctx context.Context, actorID uuid.UUID, req dto.CalculatePayrollRequest) (*dto.BatchPayrollResult, error)
	Get(ctx context.Context, vendorID uuid.UUID, month, year int) (*dto.PayrollResponse, error)
	ListMonth(ctx context.Context, month, year int) ([]dto.PayrollResponse, error)
	ExportPDF(ctx context.Context, vendorID uuid.UUID, month, year int) (string, error)
}

type payrollService struct {
	payroll   repository.PayrollRepository
	orders    repository.OrderRepository
	payments  repository.PaymentRepository
	transfers repository.TransferRepository
	users     repository.UserRepository

	resolver   *identity.Resolver
	pdf        PayrollPDFGenerator
	dispatcher *worker.Dispatcher
}

func NewPayrollService(
	payroll repository.PayrollRepository,
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	transfers repository.TransferRepository,
	users repository.UserRepository,
	resolver *identity.Resolver,
	pdf PayrollPDFGenerator,
	dispatcher *worker.Dispatcher,
) PayrollService {
	return &payrollService{
		payroll:    payroll,
		orders:     orders,
		payments:   payments,
		transfers:  transfers,
		users:      users,
		resolver:   resolver,
		pdf:        pdf,
		dispatcher: dispatcher,
	}
}

func (s *payrollService) SaveConfig(ctx context.Context, vendorID uuid.UUID, req dto.SavePayrollConfigRequest) error {
	vendor, err := s.users.FindByID(ctx, vendorID)
	if err != nil {
		return errNotFound("vendedor no encontrado")
	}
	if vendor.Role != model.RoleVendedor {
		return errConflict("la configuracion de nomina solo aplica a vendedores")
	}

	cfg, err := s.payroll.FindConfigByVendor(ctx, vendorID)
	if err != nil {
		cfg = &model.VendorPayrollConfig{VendedorID: vendorID}
	}
	cfg.BaseSalary = req.BaseSalary
	cfg.SalesCommissionPct = req.SalesCommissionPct
	cfg.CollectionCommissionPct = req.CollectionCommissionPct
	if req.CollectionThreshold != nil {
		cfg.CollectionThreshold = *req.CollectionThreshold
	}
	cfg.GeneralCommissionEnabled = req.GeneralCommissionEnabled
	cfg.GeneralCommissionPct = req.GeneralCommissionPct
	return s.payroll.SaveConfig(ctx, cfg)
}

func (s *payrollService) GetConfig(ctx context.Context, vendorID uuid.UUID) (*model.VendorPayrollConfig, error) {
	cfg, err := s.payroll.FindConfigByVendor(ctx, vendorID)
	if err != nil {
		return nil, errNotFound("configuracion de nomina no encontrada")
	}
	return cfg, nil
}

// Calculate computes and freezes the snapshot for (vendor, month, year),
// overwriting any previous run. The calculation reads the ledgers as they
// stand now; later edits to orders or payments do not touch a frozen
// snapshot until someone recalculates.
func (s *payrollService) Calculate(ctx context.Context, vendorID uuid.UUID, actorID uuid.UUID, req dto.CalculatePayrollRequest) (*dto.PayrollResponse, error) {
	vendor, err := s.users.FindByID(ctx, vendorID)
	if err != nil {
		return nil, errNotFound("vendedor no encontrado")
	}
	cfg, err := s.payroll.FindConfigByVendor(ctx, vendorID)
	if err != nil {
		return nil, errConflict("el vendedor no tiene configuracion de nomina")
	}

	vendorIDs, err := s.identityUserIDs(ctx, vendor)
	if err != nil {
		return nil, err
	}

	monthStart := monthStart(req.Month, req.Year)
	monthEnd := monthStart.AddDate(0, 1, 0)
	prevStart := monthStart.AddDate(0, -1, 0)

	totalSold, err := s.orders.SumCompletedTotals(ctx, vendorIDs, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	transferredIn, err := s.transfers.SumActiveForVendorMonth(ctx, vendorIDs, req.Month, req.Year)
	if err != nil {
		return nil, err
	}
	effectiveSold := totalSold.Add(transferredIn)

	p := &model.Payroll{
		VendedorID:     vendorID,
		Month:          req.Month,
		Year:           req.Year,
		BaseSalary:     cfg.BaseSalary,
		TotalSold:      totalSold,
		TransferredIn:  transferredIn,
		Notes:          req.Notes,
		CalculatedByID: actorID,
	}

	// Sales commission unlocks only when the monthly goal is met.
	if goal, err := s.payroll.FindGoal(ctx, vendorID, req.Month, req.Year); err == nil {
		p.SalesGoalTarget = goal.TargetAmount
		p.SalesGoalMet = goal.TargetAmount.IsPositive() &&
			effectiveSold.GreaterThanOrEqual(goal.TargetAmount)
	}
	p.SalesCommissionPct = cfg.SalesCommissionPct
	if p.SalesGoalMet {
		p.SalesCommissionAmount = effectiveSold.Mul(cfg.SalesCommissionPct).Round(2)
	}

	// Collection commission: money collected this month against the
	// previous month's invoices, measured as a fraction of what was sold
	// back then.
	prevSold, err := s.orders.SumCompletedTotals(ctx, vendorIDs, prevStart, monthStart)
	if err != nil {
		return nil, err
	}
	collected, err := s.payments.SumCollectedForInvoices(ctx, vendorIDs, prevStart, monthStart, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	p.PrevMonthTotalSold = prevSold
	p.TotalCollected = collected
	p.CollectionCommissionPct = cfg.CollectionCommissionPct
	if prevSold.IsPositive() {
		p.CollectionPct = collected.Div(prevSold).Round(4)
		p.CollectionGoalMet = p.CollectionPct.GreaterThanOrEqual(cfg.CollectionThreshold)
	}
	if p.CollectionGoalMet {
		p.CollectionCommissionAmount = collected.Mul(cfg.CollectionCommissionPct).Round(2)
	}

	// General commission compares company-wide sales against the sum of all
	// goals for the month.
	p.GeneralCommissionEnabled = cfg.GeneralCommissionEnabled
	p.GeneralCommissionPct = cfg.GeneralCommissionPct
	if cfg.GeneralCommissionEnabled {
		globalGoals, err := s.payroll.SumGoalTargets(ctx, req.Month, req.Year)
		if err != nil {
			return nil, err
		}
		companySales, err := s.orders.SumCompletedTotalsAll(ctx, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		p.TotalGlobalGoals = globalGoals
		p.TotalCompanySales = companySales
		if globalGoals.IsPositive() && companySales.GreaterThanOrEqual(globalGoals) {
			p.GeneralCommissionAmount = companySales.Mul(cfg.GeneralCommissionPct).Round(2)
		}
	}

	p.TotalCommissions = p.SalesCommissionAmount.
		Add(p.CollectionCommissionAmount).
		Add(p.GeneralCommissionAmount)
	p.TotalPayout = p.BaseSalary.Add(p.TotalCommissions)

	if prev, err := s.payroll.FindSnapshot(ctx, vendorID, req.Month, req.Year); err == nil {
		p.ID = prev.ID
		p.CreatedAt = prev.CreatedAt
	}
	if err := s.payroll.SaveSnapshot(ctx, p); err != nil {
		return nil, err
	}

	s.publishPayroll(ctx, p, vendor)

	resp := dto.PayrollToResponse(p)
	return &resp, nil
}

func (s *payrollService) CalculateAll(ctx context.Context, actorID uuid.UUID, req dto.CalculatePayrollRequest) (*dto.BatchPayrollResult, error) {
	configs, err := s.payroll.ListConfigs(ctx)
	if err != nil {
		return nil, err
	}
	result := &dto.BatchPayrollResult{}
	for i := range configs {
		vendorID := configs[i].VendedorID
		resp, err := s.Calculate(ctx, vendorID, actorID, req)
		if err != nil {
			result.Failed = append(result.Failed, dto.BatchPayrollFail{
				VendedorID: vendorID,
				Error:      err.Error(),
			})
			continue
		}
		result.Calculated = append(result.Calculated, *resp)
	}
	return result, nil
}

func (s *payrollService) Get(ctx context.Context, vendorID uuid.UUID, month, year int) (*dto.PayrollResponse, error) {
	p, err := s.payroll.FindSnapshot(ctx, vendorID, month, year)
	if err != nil {
		return nil, errNotFound("nomina no encontrada")
	}
	resp := dto.PayrollToResponse(p)
	return &resp, nil
}

func (s *payrollService) ListMonth(ctx context.Context, month, year int) ([]dto.PayrollResponse, error) {
	rows, err := s.payroll.ListSnapshots(ctx, month, year)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PayrollResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.PayrollToResponse(&rows[i]))
	}
	return out, nil
}

// ExportPDF renders the stored snapshot to a PDF file and returns its path.
func (s *payrollService) ExportPDF(ctx context.Context, vendorID uuid.UUID, month, year int) (string, error) {
	if s.pdf == nil {
		return "", errConflict("la generacion de PDF no esta configurada")
	}
	p, err := s.payroll.FindSnapshot(ctx, vendorID, month, year)
	if err != nil {
		return "", errNotFound("nomina no encontrada")
	}
	vendor, err := s.users.FindByID(ctx, vendorID)
	if err != nil {
		return "", errNotFound("vendedor no encontrado")
	}
	return s.pdf.GeneratePayrollPDF(p, vendor.Nombre)
}

// identityUserIDs expands a vendor to the user ids of every account in its
// configured identity group, so renamed or duplicated accounts aggregate as
// one seller.
func (s *payrollService) identityUserIDs(ctx context.Context, vendor *model.User) ([]uuid.UUID, error) {
	ids := []uuid.UUID{vendor.ID}
	if s.resolver == nil {
		return ids, nil
	}
	for _, username := range s.resolver.Group(vendor.Username) {
		if username == vendor.Username {
			continue
		}
		u, err := s.users.FindByUsername(ctx, username)
		if err != nil {
			// Aliases without an account are allowed in the config.
			continue
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (s *payrollService) publishPayroll(ctx context.Context, p *model.Payroll, vendor *model.User) {
	pdfPath := ""
	if s.pdf != nil {
		path, err := s.pdf.GeneratePayrollPDF(p, vendor.Nombre)
		if err != nil {
			log.Warn().Err(err).
				Str("vendedor_id", p.VendedorID.String()).
				Int("month", p.Month).Int("year", p.Year).
				Msg("payroll pdf generation failed")
		} else {
			pdfPath = path
		}
	}
	if s.dispatcher == nil {
		return
	}
	payload := worker.PayrollReadyPayload{
		PayrollID: p.ID,
		Month:     p.Month,
		Year:      p.Year,
		PDFPath:   pdfPath,
	}
	if vendor.Email != nil {
		payload.VendorEmail = *vendor.Email
	}
	if err := s.dispatcher.EnqueuePayrollReady(ctx, payload); err != nil {
		log.Warn().Err(err).Str("payroll_id", p.ID.String()).Msg("payroll notification enqueue failed")
	}
}

func monthStart(month, year int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}
