package service

import (
	"context"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService interface {
	Register(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, req dto.RegisterPaymentRequest) (*dto.PaymentResponse, error)
	Cancel(ctx context.Context, paymentID uuid.UUID, actorID uuid.UUID, req dto.CancelPaymentRequest) (*dto.PaymentResponse, error)
	Restore(ctx context.Context, paymentID uuid.UUID) (*dto.PaymentResponse, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]dto.PaymentResponse, error)
	Balance(ctx context.Context, orderID uuid.UUID) (*dto.OrderBalanceResponse, error)

	CreateTransfer(ctx context.Context, paymentID uuid.UUID, actorID uuid.UUID, req dto.CreateTransferRequest) (*dto.TransferResponse, error)
	RevokeTransfer(ctx context.Context, transferID uuid.UUID, actorID uuid.UUID, req dto.RevokeTransferRequest) (*dto.TransferResponse, error)
	TransferAvailability(ctx context.Context, paymentID uuid.UUID) (*dto.TransferAvailabilityResponse, error)
	ListTransfersByPayment(ctx context.Context, paymentID uuid.UUID) ([]dto.TransferResponse, error)
}

type paymentService struct {
	payments  repository.PaymentRepository
	transfers repository.TransferRepository
	orders    repository.OrderRepository
	users     repository.UserRepository
}

func NewPaymentService(payments repository.PaymentRepository, transfers repository.TransferRepository, orders repository.OrderRepository, users repository.UserRepository) PaymentService {
	return &paymentService{payments: payments, transfers: transfers, orders: orders, users: users}
}

func (s *paymentService) Register(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, req dto.RegisterPaymentRequest) (*dto.PaymentResponse, error) {
	var created *model.Payment
	txErr := runTx(ctx, s.payments.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return errNotFound("orden no encontrada")
		}
		// Money only moves against an issued invoice.
		if o.Estado != model.EstadoCompletado {
			return errConflict("solo una orden completada admite pagos")
		}

		now := time.Now()
		actual := now
		if req.ActualPaymentDate != nil {
			actual = *req.ActualPaymentDate
		}
		created = &model.Payment{
			OrderID:           o.ID,
			Amount:            req.Amount,
			PaymentDate:       now,
			ActualPaymentDate: actual,
			Method:            req.Method,
			RegisteredByID:    actorID,
			Notes:             req.Notes,
		}
		if err := s.createPayment(ctx, tx, created); err != nil {
			return err
		}
		return s.recomputePaymentStatus(ctx, tx, o)
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.PaymentToResponse(created)
	return &resp, nil
}

func (s *paymentService) Cancel(ctx context.Context, paymentID uuid.UUID, actorID uuid.UUID, req dto.CancelPaymentRequest) (*dto.PaymentResponse, error) {
	if req.Reason == "" {
		return nil, errInvalid("la cancelacion de un pago requiere un motivo")
	}
	var cancelled *model.Payment
	txErr := runTx(ctx, s.payments.DB(), func(tx *gorm.DB) error {
		p, err := s.lockPayment(ctx, tx, paymentID)
		if err != nil {
			return errNotFound("pago no encontrado")
		}
		if p.IsCancelled {
			return errConflict("el pago ya fue cancelado")
		}
		// A payment with live transfers cannot disappear from under them.
		transferred, err := s.sumActiveTransfers(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if transferred.IsPositive() {
			return errConflict("el pago tiene transferencias activas, revocarlas primero")
		}

		now := time.Now()
		p.IsCancelled = true
		p.CancelledAt = &now
		p.CancelledByID = &actorID
		p.CancellationReason = &req.Reason
		if err := s.savePayment(ctx, tx, p); err != nil {
			return err
		}

		o, err := s.lockOrder(ctx, tx, p.OrderID)
		if err != nil {
			return err
		}
		cancelled = p
		return s.recomputePaymentStatus(ctx, tx, o)
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.PaymentToResponse(cancelled)
	return &resp, nil
}

// Restore undoes a cancellation, typically after a mistaken cancel. The
// cancellation audit fields are cleared and the order settles again.
func (s *paymentService) Restore(ctx context.Context, paymentID uuid.UUID) (*dto.PaymentResponse, error) {
	var restored *model.Payment
	txErr := runTx(ctx, s.payments.DB(), func(tx *gorm.DB) error {
		p, err := s.lockPayment(ctx, tx, paymentID)
		if err != nil {
			return errNotFound("pago no encontrado")
		}
		if !p.IsCancelled {
			return errConflict("el pago no esta cancelado")
		}
		p.IsCancelled = false
		p.CancelledAt = nil
		p.CancelledByID = nil
		p.CancellationReason = nil
		if err := s.savePayment(ctx, tx, p); err != nil {
			return err
		}

		o, err := s.lockOrder(ctx, tx, p.OrderID)
		if err != nil {
			return err
		}
		restored = p
		return s.recomputePaymentStatus(ctx, tx, o)
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.PaymentToResponse(restored)
	return &resp, nil
}

func (s *paymentService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]dto.PaymentResponse, error) {
	rows, err := s.payments.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.PaymentToResponse(&rows[i]))
	}
	return out, nil
}

func (s *paymentService) Balance(ctx context.Context, orderID uuid.UUID) (*dto.OrderBalanceResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errNotFound("orden no encontrada")
	}
	paid, err := s.sumActivePayments(ctx, nil, o.ID)
	if err != nil {
		return nil, err
	}
	total := o.EffectiveTotal()
	pending := total.Sub(paid)
	return &dto.OrderBalanceResponse{
		OrderID:        o.ID,
		EffectiveTotal: total,
		TotalPaid:      paid,
		Pending:        pending,
		Overpaid:       pending.IsNegative(),
		PaymentStatus:  o.PaymentStatus,
	}, nil
}

// recomputePaymentStatus derives the order's payment status from the sum of
// active payments, which the enclosing transaction already sees.
func (s *paymentService) recomputePaymentStatus(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	paid, err := s.sumActivePayments(ctx, tx, o.ID)
	if err != nil {
		return err
	}
	switch {
	case paid.GreaterThanOrEqual(o.EffectiveTotal()) && paid.IsPositive():
		o.PaymentStatus = model.PaymentPaid
	case paid.IsPositive():
		o.PaymentStatus = model.PaymentPartial
	default:
		o.PaymentStatus = model.PaymentPending
	}
	if tx == nil {
		return s.orders.Save(ctx, o)
	}
	return s.orders.SaveTx(tx, o)
}

func (s *paymentService) CreateTransfer(ctx context.Context, paymentID uuid.UUID, actorID uuid.UUID, req dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	dest, err := s.users.FindByID(ctx, req.DestVendorID)
	if err != nil {
		return nil, errNotFound("vendedor destino no encontrado")
	}
	if !dest.Activo {
		return nil, errConflict("el vendedor destino esta inactivo")
	}

	var created *model.PaymentTransfer
	txErr := runTx(ctx, s.payments.DB(), func(tx *gorm.DB) error {
		p, err := s.lockPayment(ctx, tx, paymentID)
		if err != nil {
			return errNotFound("pago no encontrado")
		}
		if p.IsCancelled {
			return errConflict("el pago esta cancelado")
		}
		o, err := s.orders.FindByID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		if req.DestVendorID == o.VendedorID {
			return errConflict("el destino de la transferencia debe ser otro vendedor")
		}

		// Invariant held under the payment row lock: active transfers over a
		// payment never exceed its amount.
		transferred, err := s.sumActiveTransfers(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if transferred.Add(req.Amount).GreaterThan(p.Amount) {
			return errConflict("el monto excede lo disponible para transferir de este pago")
		}

		created = &model.PaymentTransfer{
			PaymentID:      p.ID,
			OriginVendorID: o.VendedorID,
			DestVendorID:   req.DestVendorID,
			Amount:         req.Amount,
			TargetMonth:    req.TargetMonth,
			TargetYear:     req.TargetYear,
			Reason:         req.Reason,
			CreatedByID:    actorID,
			CreatedAt:      time.Now(),
		}
		return s.createTransfer(ctx, tx, created)
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.TransferToResponse(created)
	return &resp, nil
}

func (s *paymentService) RevokeTransfer(ctx context.Context, transferID uuid.UUID, actorID uuid.UUID, req dto.RevokeTransferRequest) (*dto.TransferResponse, error) {
	if req.Reason == "" {
		return nil, errInvalid("la revocacion requiere un motivo")
	}
	var revoked *model.PaymentTransfer
	txErr := runTx(ctx, s.payments.DB(), func(tx *gorm.DB) error {
		t, err := s.transfers.FindByID(ctx, transferID)
		if err != nil {
			return errNotFound("transferencia no encontrada")
		}
		if t.IsRevoked {
			return errConflict("la transferencia ya fue revocada")
		}
		now := time.Now()
		t.IsRevoked = true
		t.RevokedAt = &now
		t.RevokedByID = &actorID
		t.RevocationReason = &req.Reason
		if err := s.saveTransfer(ctx, tx, t); err != nil {
			return err
		}
		revoked = t
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.TransferToResponse(revoked)
	return &resp, nil
}

func (s *paymentService) TransferAvailability(ctx context.Context, paymentID uuid.UUID) (*dto.TransferAvailabilityResponse, error) {
	p, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, errNotFound("pago no encontrado")
	}
	transferred, err := s.sumActiveTransfers(ctx, nil, p.ID)
	if err != nil {
		return nil, err
	}
	return &dto.TransferAvailabilityResponse{
		PaymentID:   p.ID,
		Amount:      p.Amount,
		Transferred: transferred,
		Available:   p.Amount.Sub(transferred),
	}, nil
}

func (s *paymentService) ListTransfersByPayment(ctx context.Context, paymentID uuid.UUID) ([]dto.TransferResponse, error) {
	rows, err := s.transfers.ListByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransferResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.TransferToResponse(&rows[i]))
	}
	return out, nil
}

func (s *paymentService) lockOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	if tx == nil {
		return s.orders.FindByID(ctx, id)
	}
	return s.orders.LockForUpdateTx(tx, id)
}

func (s *paymentService) lockPayment(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Payment, error) {
	if tx == nil {
		return s.payments.FindByID(ctx, id)
	}
	return s.payments.LockForUpdateTx(tx, id)
}

func (s *paymentService) createPayment(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	if tx == nil {
		tx = s.payments.DB()
	}
	return s.payments.CreateTx(tx, p)
}

func (s *paymentService) savePayment(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	if tx == nil {
		tx = s.payments.DB()
	}
	return s.payments.SaveTx(tx, p)
}

func (s *paymentService) sumActivePayments(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error) {
	if tx == nil {
		tx = s.payments.DB()
	}
	return s.payments.SumActiveByOrderTx(tx, orderID)
}

func (s *paymentService) createTransfer(ctx context.Context, tx *gorm.DB, t *model.PaymentTransfer) error {
	if tx == nil {
		tx = s.payments.DB()
	}
	return s.transfers.CreateTx(tx, t)
}

func (s *paymentService) saveTransfer(ctx context.Context, tx *gorm.DB, t *model.PaymentTransfer) error {
	if tx == nil {
		tx = s.payments.DB()
	}
	return s.transfers.SaveTx(tx, t)
}

func (s *paymentService) sumActiveTransfers(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID) (decimal.Decimal, error) {
	if tx == nil {
		tx = s.payments.DB()
	}
	return s.transfers.SumActiveByPaymentTx(tx, paymentID)
}
