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

var hundred = decimal.NewFromInt(100)

type DiscountService interface {
	Apply(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, actorRole string, req dto.ApplyDiscountRequest) (*dto.DiscountResponse, error)
	Revoke(ctx context.Context, orderID, discountID uuid.UUID, actorID uuid.UUID, req dto.RevokeDiscountRequest) (*dto.DiscountResponse, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]dto.DiscountResponse, error)
}

type discountService struct {
	discounts repository.DiscountRepository
	orders    repository.OrderRepository
	promos    repository.PromotionRepository
}

func NewDiscountService(discounts repository.DiscountRepository, orders repository.OrderRepository, promos repository.PromotionRepository) DiscountService {
	return &discountService{discounts: discounts, orders: orders, promos: promos}
}

func (s *discountService) Apply(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, actorRole string, req dto.ApplyDiscountRequest) (*dto.DiscountResponse, error) {
	pct, err := resolvePercentage(req)
	if err != nil {
		return nil, err
	}
	if req.Tipo == model.DiscountOwnerAdditional && actorRole != model.RoleOwner {
		return nil, errForbidden("solo el duenio puede aplicar el descuento adicional")
	}

	var created *model.OrderDiscount
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return errNotFound("orden no encontrada")
		}
		if o.Estado == model.EstadoCancelado || o.Estado == model.EstadoAnulada {
			return errConflict("no se pueden aplicar descuentos sobre una orden cancelada o anulada")
		}
		if err := s.checkStacking(ctx, o); err != nil {
			return err
		}

		created = &model.OrderDiscount{
			OrderID:     o.ID,
			Percentage:  pct,
			Tipo:        req.Tipo,
			Status:      model.DiscountApplied,
			AppliedByID: actorID,
			Reason:      req.Reason,
			AppliedAt:   time.Now(),
		}
		if err := s.createDiscount(ctx, tx, created); err != nil {
			return err
		}
		return s.recompute(ctx, tx, o, created)
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.DiscountToResponse(created)
	return &resp, nil
}

func (s *discountService) Revoke(ctx context.Context, orderID, discountID uuid.UUID, actorID uuid.UUID, req dto.RevokeDiscountRequest) (*dto.DiscountResponse, error) {
	var revoked *model.OrderDiscount
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return errNotFound("orden no encontrada")
		}
		d, err := s.discounts.FindByID(ctx, discountID)
		if err != nil || d.OrderID != o.ID {
			return errNotFound("descuento no encontrado")
		}
		if d.Status == model.DiscountRevoked {
			return errConflict("el descuento ya fue revocado")
		}

		now := time.Now()
		d.Status = model.DiscountRevoked
		d.RevokedByID = &actorID
		d.RevokedAt = &now
		if req.Reason != nil {
			d.Reason = req.Reason
		}
		if err := s.saveDiscount(ctx, tx, d); err != nil {
			return err
		}
		revoked = d
		return s.recompute(ctx, tx, o, nil)
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.DiscountToResponse(revoked)
	return &resp, nil
}

func (s *discountService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]dto.DiscountResponse, error) {
	rows, err := s.discounts.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DiscountResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.DiscountToResponse(&rows[i]))
	}
	return out, nil
}

// recompute rebuilds the order's discounted total from all APPLIED rows.
// Percentages are additive and the sum clamps at 100, so the result does
// not depend on application order. extra is a row created in this tx that
// the repository list may not see yet.
func (s *discountService) recompute(ctx context.Context, tx *gorm.DB, o *model.Order, extra *model.OrderDiscount) error {
	rows, err := s.discounts.ListByOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	sum := decimal.Zero
	seen := false
	for i := range rows {
		if rows[i].Status != model.DiscountApplied {
			continue
		}
		sum = sum.Add(rows[i].Percentage)
		if extra != nil && rows[i].ID == extra.ID {
			seen = true
		}
	}
	if extra != nil && !seen {
		sum = sum.Add(extra.Percentage)
	}
	if sum.GreaterThan(hundred) {
		sum = hundred
	}

	if sum.IsZero() {
		o.DiscountedTotal = nil
	} else {
		factor := hundred.Sub(sum).Div(hundred)
		dt := o.Total.Mul(factor).Round(2)
		o.DiscountedTotal = &dt
	}
	if tx == nil {
		return s.orders.Save(ctx, o)
	}
	return s.orders.SaveTx(tx, o)
}

// checkStacking rejects discounts on orders holding promotion items whose
// promotion opted out of stacking.
func (s *discountService) checkStacking(ctx context.Context, o *model.Order) error {
	checked := map[uuid.UUID]bool{}
	for i := range o.Items {
		it := &o.Items[i]
		if !it.IsPromotionItem || it.PromotionID == nil || checked[*it.PromotionID] {
			continue
		}
		checked[*it.PromotionID] = true
		p, err := s.promos.FindByID(ctx, *it.PromotionID)
		if err != nil {
			return err
		}
		if !p.AllowStackWithDiscounts {
			return errConflict("la promocion de esta orden no admite descuentos adicionales")
		}
	}
	return nil
}

func resolvePercentage(req dto.ApplyDiscountRequest) (decimal.Decimal, error) {
	if pct, ok := model.PresetPercentage(req.Tipo); ok {
		return pct, nil
	}
	if req.Percentage == nil {
		return decimal.Zero, errInvalid("el porcentaje es obligatorio para descuentos personalizados")
	}
	pct := *req.Percentage
	if !pct.IsPositive() || pct.GreaterThan(hundred) {
		return decimal.Zero, errInvalid("el porcentaje debe estar entre 0 y 100")
	}
	return pct, nil
}

func (s *discountService) lockOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	if tx == nil {
		return s.orders.FindByID(ctx, id)
	}
	return s.orders.LockForUpdateTx(tx, id)
}

func (s *discountService) createDiscount(ctx context.Context, tx *gorm.DB, d *model.OrderDiscount) error {
	if tx == nil {
		tx = s.discounts.DB()
	}
	return s.discounts.CreateTx(tx, d)
}

func (s *discountService) saveDiscount(ctx context.Context, tx *gorm.DB, d *model.OrderDiscount) error {
	if tx == nil {
		tx = s.discounts.DB()
	}
	return s.discounts.SaveTx(tx, d)
}
