package service

import (
	"context"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplicationLine is one concrete order line produced by expanding a
// promotion instance.
type ApplicationLine struct {
	ProductID   uuid.UUID
	ProductName string
	Cantidad    int
	UnitPrice   decimal.Decimal
	IsFree      bool
	IsMain      bool
}

// PromotionApplication is the value object produced by expanding one
// promotion instance. It carries everything the order builder needs: the
// generated instance id, the group index inside the request, the concrete
// lines, the pack price (charged once per instance) and any assortment
// quantity still to be chosen by the buyer.
type PromotionApplication struct {
	PromotionID             uuid.UUID
	SpecialPromotionID      *uuid.UUID
	InstanceID              uuid.UUID
	GroupIndex              int
	Lines                   []ApplicationLine
	PackPrice               *decimal.Decimal
	PendingAssortment       int
	AllowStackWithDiscounts bool
}

type PromotionService interface {
	Create(ctx context.Context, req dto.CreatePromotionRequest) (*dto.PromotionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PromotionResponse, error)
	List(ctx context.Context, activeOnly bool) ([]dto.PromotionResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Expand validates the promotion for the vendor at the given time and
	// produces one application per requested instance.
	Expand(ctx context.Context, promotionID uuid.UUID, instances int, groupIndex int, now time.Time) ([]PromotionApplication, error)
	ExpandSpecial(ctx context.Context, specialID uuid.UUID, vendorID uuid.UUID, instances int, groupIndex int, now time.Time) ([]PromotionApplication, error)

	CreateSpecial(ctx context.Context, req dto.CreateSpecialPromotionRequest) (*dto.SpecialPromotionResponse, error)
	ListSpecial(ctx context.Context, vendorID *uuid.UUID) ([]dto.SpecialPromotionResponse, error)
}

type promotionService struct {
	repo     repository.PromotionRepository
	products repository.ProductRepository
	users    repository.UserRepository
}

func NewPromotionService(repo repository.PromotionRepository, products repository.ProductRepository, users repository.UserRepository) PromotionService {
	return &promotionService{repo: repo, products: products, users: users}
}

func (s *promotionService) Create(ctx context.Context, req dto.CreatePromotionRequest) (*dto.PromotionResponse, error) {
	if req.Tipo == model.PromoPack && req.PackPrice == nil {
		return nil, errInvalid("una promocion PACK requiere pack_price")
	}
	if req.Tipo == model.PromoBuyGetFree && req.FreeQuantity <= 0 {
		return nil, errInvalid("una promocion BUY_GET_FREE requiere free_quantity > 0")
	}
	if req.MainProductID != nil {
		if _, err := s.products.FindByID(ctx, *req.MainProductID); err != nil {
			return nil, errInvalid("producto principal no encontrado")
		}
	}

	allowStack := true
	if req.AllowStackWithDiscounts != nil {
		allowStack = *req.AllowStackWithDiscounts
	}
	p := &model.Promotion{
		Nombre:                      req.Nombre,
		Descripcion:                 req.Descripcion,
		Tipo:                        req.Tipo,
		BuyQuantity:                 req.BuyQuantity,
		FreeQuantity:                req.FreeQuantity,
		PackPrice:                   req.PackPrice,
		MainProductID:               req.MainProductID,
		RequiresAssortmentSelection: req.RequiresAssortmentSelection,
		AllowStackWithDiscounts:     allowStack,
		Activo:                      true,
		ValidFrom:                   req.ValidFrom,
		ValidUntil:                  req.ValidUntil,
	}
	for _, gi := range req.GiftItems {
		if _, err := s.products.FindByID(ctx, gi.ProductID); err != nil {
			return nil, errInvalid("producto de regalo no encontrado")
		}
		p.GiftItems = append(p.GiftItems, model.PromotionGiftItem{
			ProductID: gi.ProductID,
			Cantidad:  gi.Cantidad,
		})
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

func (s *promotionService) Get(ctx context.Context, id uuid.UUID) (*dto.PromotionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errNotFound("promocion no encontrada")
	}
	resp := dto.PromotionToResponse(p)
	return &resp, nil
}

func (s *promotionService) List(ctx context.Context, activeOnly bool) ([]dto.PromotionResponse, error) {
	promos, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PromotionResponse, 0, len(promos))
	for i := range promos {
		out = append(out, dto.PromotionToResponse(&promos[i]))
	}
	return out, nil
}

func (s *promotionService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *promotionService) Expand(ctx context.Context, promotionID uuid.UUID, instances int, groupIndex int, now time.Time) ([]PromotionApplication, error) {
	p, err := s.repo.FindByID(ctx, promotionID)
	if err != nil {
		return nil, errNotFound("promocion no encontrada")
	}
	if !p.IsValidAt(now) {
		return nil, errConflict("la promocion no esta vigente")
	}
	return s.expand(p, nil, instances, groupIndex)
}

func (s *promotionService) ExpandSpecial(ctx context.Context, specialID uuid.UUID, vendorID uuid.UUID, instances int, groupIndex int, now time.Time) ([]PromotionApplication, error) {
	sp, err := s.repo.FindSpecialByID(ctx, specialID)
	if err != nil {
		return nil, errNotFound("promocion especial no encontrada")
	}
	if !sp.IsValidAt(now) {
		return nil, errConflict("la promocion especial no esta vigente")
	}
	if !sp.VendorAllowed(vendorID) {
		return nil, errForbidden("el vendedor no tiene acceso a esta promocion")
	}
	if sp.ParentPromotion == nil {
		return nil, errConflict("la promocion especial no tiene promocion base")
	}

	// Materialize the effective promotion before expanding so the override
	// resolution stays in one place.
	effective := *sp.ParentPromotion
	effective.Tipo = sp.EffectiveTipo()
	effective.BuyQuantity = sp.EffectiveBuyQuantity()
	effective.FreeQuantity = sp.EffectiveFreeQuantity()
	effective.PackPrice = sp.EffectivePackPrice()
	return s.expand(&effective, &sp.ID, instances, groupIndex)
}

func (s *promotionService) expand(p *model.Promotion, specialID *uuid.UUID, instances int, groupIndex int) ([]PromotionApplication, error) {
	if instances <= 0 {
		return nil, errInvalid("la cantidad de instancias debe ser positiva")
	}
	if p.MainProductID == nil || p.MainProduct == nil {
		return nil, errConflict("la promocion no tiene producto principal")
	}

	apps := make([]PromotionApplication, 0, instances)
	for i := 0; i < instances; i++ {
		app := PromotionApplication{
			PromotionID:             p.ID,
			SpecialPromotionID:      specialID,
			InstanceID:              uuid.New(),
			GroupIndex:              groupIndex + i,
			AllowStackWithDiscounts: p.AllowStackWithDiscounts,
		}

		main := ApplicationLine{
			ProductID:   *p.MainProductID,
			ProductName: p.MainProduct.Nombre,
			Cantidad:    p.BuyQuantity,
			UnitPrice:   p.MainProduct.Precio,
			IsMain:      true,
		}

		switch p.Tipo {
		case model.PromoPack:
			// Pack revenue is the pack price, charged once per instance;
			// the main line still consumes stock at its real quantity.
			app.PackPrice = p.PackPrice
			app.Lines = append(app.Lines, main)

		case model.PromoBuyGetFree:
			app.Lines = append(app.Lines, main)
			if p.RequiresAssortmentSelection {
				app.PendingAssortment = p.FreeQuantity
				break
			}
			for gi := range p.GiftItems {
				g := &p.GiftItems[gi]
				name := ""
				if g.Product != nil {
					name = g.Product.Nombre
				}
				app.Lines = append(app.Lines, ApplicationLine{
					ProductID:   g.ProductID,
					ProductName: name,
					Cantidad:    g.Cantidad,
					UnitPrice:   decimal.Zero,
					IsFree:      true,
				})
			}

		default:
			return nil, errInvalid("tipo de promocion desconocido")
		}

		apps = append(apps, app)
	}
	return apps, nil
}

func (s *promotionService) CreateSpecial(ctx context.Context, req dto.CreateSpecialPromotionRequest) (*dto.SpecialPromotionResponse, error) {
	sp := &model.SpecialPromotion{
		Nombre:            req.Nombre,
		Tipo:              req.Tipo,
		BuyQuantity:       req.BuyQuantity,
		FreeQuantity:      req.FreeQuantity,
		PackPrice:         req.PackPrice,
		ParentPromotionID: req.ParentPromotionID,
		Activo:            true,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
	}
	if req.ParentPromotionID != nil {
		if _, err := s.repo.FindByID(ctx, *req.ParentPromotionID); err != nil {
			return nil, errInvalid("promocion base no encontrada")
		}
	}
	for _, vid := range req.AllowedVendorIDs {
		v, err := s.users.FindByID(ctx, vid)
		if err != nil {
			return nil, errInvalid("vendedor permitido no encontrado")
		}
		sp.AllowedVendors = append(sp.AllowedVendors, *v)
	}
	if err := s.repo.CreateSpecial(ctx, sp); err != nil {
		return nil, err
	}
	full, err := s.repo.FindSpecialByID(ctx, sp.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.SpecialPromotionToResponse(full)
	return &resp, nil
}

func (s *promotionService) ListSpecial(ctx context.Context, vendorID *uuid.UUID) ([]dto.SpecialPromotionResponse, error) {
	sps, err := s.repo.ListSpecial(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SpecialPromotionResponse, 0, len(sps))
	for i := range sps {
		out = append(out, dto.SpecialPromotionToResponse(&sps[i]))
	}
	return out, nil
}
