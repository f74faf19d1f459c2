package service

import (
	"context"
	"fmt"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"
	"vitalexa/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, vendorID uuid.UUID, req dto.CreateOrderRequest, username string) (*dto.CreateOrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]dto.OrderResponse, int64, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, to string, username string) (*dto.OrderResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, reason *string, username string) (*dto.OrderResponse, error)
	Annul(ctx context.Context, id uuid.UUID, reason string, username string) (*dto.OrderResponse, error)
	CompleteAssortment(ctx context.Context, id uuid.UUID, req dto.CompleteAssortmentRequest, username string) (*dto.OrderResponse, error)
	UpdateItemETA(ctx context.Context, orderID, itemID uuid.UUID, req dto.UpdateItemETARequest) error
	RemoveItem(ctx context.Context, orderID, itemID uuid.UUID, username string) (*dto.OrderResponse, error)

	CreateHistorical(ctx context.Context, actorID uuid.UUID, req dto.HistoricalInvoiceRequest, username string) (*dto.OrderResponse, error)
	EditHistorical(ctx context.Context, id uuid.UUID, req dto.EditHistoricalInvoiceRequest) (*dto.OrderResponse, error)
}

type orderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	clients    repository.ClientRepository
	users      repository.UserRepository
	payments   repository.PaymentRepository
	payroll    repository.PayrollRepository
	promos     PromotionService
	inventory  InventoryService
	dispatcher *worker.Dispatcher

	freightPrice decimal.Decimal
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	clients repository.ClientRepository,
	users repository.UserRepository,
	payments repository.PaymentRepository,
	payroll repository.PayrollRepository,
	promos PromotionService,
	inventory InventoryService,
	dispatcher *worker.Dispatcher,
	freightPrice decimal.Decimal,
) OrderService {
	return &orderService{
		orders:       orders,
		products:     products,
		clients:      clients,
		users:        users,
		payments:     payments,
		payroll:      payroll,
		promos:       promos,
		inventory:    inventory,
		dispatcher:   dispatcher,
		freightPrice: freightPrice,
	}
}

// lineSpec is one resolved order line plus its stock ledger target,
// before anything is persisted.
type lineSpec struct {
	item model.OrderItem

	consumesStock bool
	// stockProductID targets the product ledger (also for parent-linked
	// special products); specialOwnStockID targets a special product's own
	// counter when it has no parent.
	stockProductID    *uuid.UUID
	specialOwnStockID *uuid.UUID
	productName       string

	// hardStock rejects the order on shortfall; soft lines (promo gifts)
	// may drive stock negative and get flagged OutOfStock instead.
	hardStock bool

	kind string // invoice kind bucket
}

func (s *orderService) Create(ctx context.Context, vendorID uuid.UUID, req dto.CreateOrderRequest, username string) (*dto.CreateOrderResponse, error) {
	now := time.Now()

	if _, err := s.users.FindByID(ctx, vendorID); err != nil {
		return nil, errNotFound("vendedor no encontrado")
	}
	if req.ClienteID != nil {
		if _, err := s.clients.FindByID(ctx, *req.ClienteID); err != nil {
			return nil, errNotFound("cliente no encontrado")
		}
	}

	specs, err := s.resolveLines(ctx, vendorID, req, now)
	if err != nil {
		return nil, err
	}

	// Partition into per-invoice-kind buckets. Standard always leads so the
	// freight line lands on the main order.
	buckets := map[string][]lineSpec{}
	for _, spec := range specs {
		buckets[spec.kind] = append(buckets[spec.kind], spec)
	}
	if req.IncludeFreight {
		freight := lineSpec{kind: model.InvoiceStandard, item: model.OrderItem{
			Cantidad:       1,
			PrecioUnitario: s.freightPrice,
			Subtotal:       s.freightPrice,
			IsFreightItem:  true,
			IsBonified:     req.IsFreightBonified,
		}}
		if req.IsFreightBonified {
			freight.item.PrecioUnitario = decimal.Zero
			freight.item.Subtotal = decimal.Zero
		}
		buckets[model.InvoiceStandard] = append(buckets[model.InvoiceStandard], freight)
	}

	var created []*model.Order
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		for _, kind := range []string{model.InvoiceStandard, model.InvoiceSinRegistro, model.InvoicePromocion} {
			lines := buckets[kind]
			if len(lines) == 0 {
				continue
			}
			o, err := s.createBucketOrder(ctx, tx, vendorID, req, kind, lines, now, username)
			if err != nil {
				return err
			}
			created = append(created, o)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := &dto.CreateOrderResponse{Order: dto.OrderToResponse(created[0])}
	for _, o := range created[1:] {
		resp.SubOrders = append(resp.SubOrders, dto.OrderToResponse(o))
	}
	return resp, nil
}

// resolveLines turns the request into concrete line specs: catalog lookups,
// vendor permission checks and promotion expansion happen here, before the
// write transaction opens.
func (s *orderService) resolveLines(ctx context.Context, vendorID uuid.UUID, req dto.CreateOrderRequest, now time.Time) ([]lineSpec, error) {
	var specs []lineSpec

	for idx, ir := range req.Items {
		switch {
		case ir.ProductID != nil:
			p, err := s.products.FindByID(ctx, *ir.ProductID)
			if err != nil {
				return nil, errNotFound("producto no encontrado")
			}
			if !p.Activo {
				return nil, errConflict(fmt.Sprintf("el producto %s esta inactivo", p.Nombre))
			}
			price := p.Precio
			if ir.IsBonified {
				price = decimal.Zero
			}
			kind := model.InvoiceStandard
			if p.Tag != nil && p.Tag.Name == model.TagSinRegistro {
				kind = model.InvoiceSinRegistro
			}
			specs = append(specs, lineSpec{
				item: model.OrderItem{
					ProductID:      &p.ID,
					Cantidad:       ir.Cantidad,
					PrecioUnitario: price,
					Subtotal:       price.Mul(decimal.NewFromInt(int64(ir.Cantidad))),
					IsBonified:     ir.IsBonified,
				},
				consumesStock:  true,
				stockProductID: &p.ID,
				productName:    p.Nombre,
				hardStock:      !ir.IsBonified,
				kind:           kind,
			})

		case ir.SpecialProductID != nil:
			sp, err := s.products.FindSpecialByID(ctx, *ir.SpecialProductID)
			if err != nil {
				return nil, errNotFound("producto especial no encontrado")
			}
			if !sp.Activo {
				return nil, errConflict(fmt.Sprintf("el producto especial %s esta inactivo", sp.Nombre))
			}
			if !sp.VendorAllowed(vendorID) {
				return nil, errForbidden("el vendedor no tiene acceso a este producto especial")
			}
			price := sp.Precio
			if ir.IsBonified {
				price = decimal.Zero
			}
			spec := lineSpec{
				item: model.OrderItem{
					SpecialProductID: &sp.ID,
					Cantidad:         ir.Cantidad,
					PrecioUnitario:   price,
					Subtotal:         price.Mul(decimal.NewFromInt(int64(ir.Cantidad))),
					IsBonified:       ir.IsBonified,
				},
				consumesStock: true,
				productName:   sp.Nombre,
				hardStock:     !ir.IsBonified,
				kind:          model.InvoiceStandard,
			}
			if sp.ParentProductID != nil {
				spec.stockProductID = sp.ParentProductID
			} else {
				spec.specialOwnStockID = &sp.ID
			}
			specs = append(specs, spec)

		case ir.PromotionID != nil || ir.SpecialPromotionID != nil:
			var apps []PromotionApplication
			var err error
			if ir.PromotionID != nil {
				apps, err = s.promos.Expand(ctx, *ir.PromotionID, ir.Cantidad, idx, now)
			} else {
				apps, err = s.promos.ExpandSpecial(ctx, *ir.SpecialPromotionID, vendorID, ir.Cantidad, idx, now)
			}
			if err != nil {
				return nil, err
			}
			specs = append(specs, s.promotionSpecs(apps)...)

		default:
			return nil, errInvalid("cada item debe referenciar un producto o una promocion")
		}
	}
	return specs, nil
}

// promotionSpecs converts expanded applications into line specs in the
// PROMOCION bucket.
func (s *orderService) promotionSpecs(apps []PromotionApplication) []lineSpec {
	var specs []lineSpec
	for ai := range apps {
		app := &apps[ai]
		instanceID := app.InstanceID
		promoID := app.PromotionID
		for _, line := range app.Lines {
			pid := line.ProductID
			item := model.OrderItem{
				ProductID:           &pid,
				Cantidad:            line.Cantidad,
				PrecioUnitario:      line.UnitPrice,
				Subtotal:            line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Cantidad))),
				IsFreeItem:          line.IsFree,
				IsPromotionItem:     true,
				PromotionID:         &promoID,
				SpecialPromotionID:  app.SpecialPromotionID,
				PromotionInstanceID: &instanceID,
				PromotionGroupIndex: app.GroupIndex,
			}
			if line.IsMain {
				item.PromotionPackPrice = app.PackPrice
				if app.PendingAssortment > 0 {
					item.CantidadPendiente = app.PendingAssortment
				}
			}
			specs = append(specs, lineSpec{
				item:           item,
				consumesStock:  true,
				stockProductID: &pid,
				productName:    line.ProductName,
				// Main lines enforce stock; gift lines may go negative.
				hardStock: line.IsMain && !line.IsFree,
				kind:      model.InvoicePromocion,
			})
		}
	}
	return specs
}

func (s *orderService) createBucketOrder(ctx context.Context, tx *gorm.DB, vendorID uuid.UUID, req dto.CreateOrderRequest, kind string, lines []lineSpec, now time.Time, username string) (*model.Order, error) {
	o := &model.Order{
		Fecha:             now,
		VendedorID:        vendorID,
		ClienteID:         req.ClienteID,
		Estado:            model.EstadoPendiente,
		InvoiceKind:       kind,
		Notas:             req.Notas,
		IncludeFreight:    req.IncludeFreight && kind == model.InvoiceStandard,
		IsFreightBonified: req.IsFreightBonified,
		PaymentStatus:     model.PaymentPending,
	}

	pending := false
	for i := range lines {
		spec := &lines[i]
		if spec.consumesStock {
			outOfStock, err := s.consumeStock(ctx, tx, spec, username)
			if err != nil {
				return nil, err
			}
			spec.item.OutOfStock = outOfStock
		}
		if spec.item.CantidadPendiente > 0 {
			pending = true
		}
		o.Items = append(o.Items, spec.item)
	}
	if pending {
		o.Estado = model.EstadoPendingPromotionCompletion
	}
	o.RecalculateTotal()

	if err := s.orders.Create(ctx, tx, o); err != nil {
		return nil, fmt.Errorf("creando orden: %w", err)
	}
	return o, nil
}

// consumeStock locks the ledger row, enforces availability for hard lines,
// decrements, and writes the SALE movement. Returns whether the line left
// the ledger negative.
func (s *orderService) consumeStock(ctx context.Context, tx *gorm.DB, spec *lineSpec, username string) (bool, error) {
	qty := spec.item.Cantidad

	if spec.specialOwnStockID != nil {
		sp, err := s.products.FindSpecialByID(ctx, *spec.specialOwnStockID)
		if err != nil {
			return false, errNotFound("producto especial no encontrado")
		}
		prev := sp.EffectiveStock()
		if spec.hardStock && prev < qty {
			return false, errConflict(fmt.Sprintf("stock insuficiente de %s: disponible %d, solicitado %d", sp.Nombre, prev, qty))
		}
		if err := s.updateSpecialOwnStock(ctx, tx, *spec.specialOwnStockID, -qty); err != nil {
			return false, err
		}
		if err := s.inventory.LogMovementTx(tx, nil, spec.productName, model.MovSale,
			-qty, prev, prev-qty, "venta", username); err != nil {
			return false, err
		}
		return prev-qty < 0, nil
	}

	p, err := s.lockProduct(ctx, tx, *spec.stockProductID)
	if err != nil {
		return false, errNotFound("producto no encontrado")
	}
	prev := p.Stock
	if spec.hardStock && prev < qty {
		return false, errConflict(fmt.Sprintf("stock insuficiente de %s: disponible %d, solicitado %d", p.Nombre, prev, qty))
	}
	if err := s.updateStock(ctx, tx, p.ID, -qty); err != nil {
		return false, err
	}
	if err := s.inventory.LogMovementTx(tx, &p.ID, p.Nombre, model.MovSale,
		-qty, prev, prev-qty, "venta", username); err != nil {
		return false, err
	}
	return prev-qty < 0, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, errNotFound("orden no encontrada")
	}
	resp := dto.OrderToResponse(o)
	return &resp, nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) ([]dto.OrderResponse, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, dto.OrderToResponse(&orders[i]))
	}
	return out, total, nil
}

func (s *orderService) ChangeStatus(ctx context.Context, id uuid.UUID, to string, username string) (*dto.OrderResponse, error) {
	var updated *model.Order
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return errNotFound("orden no encontrada")
		}
		if to == model.EstadoCancelado {
			return errInvalid("usar la operacion de cancelacion")
		}
		if !o.CanTransitionTo(to) {
			return errConflict(fmt.Sprintf("transicion invalida: %s → %s", o.Estado, to))
		}

		if to == model.EstadoCompletado {
			if err := s.completeOrder(ctx, tx, o); err != nil {
				return err
			}
		}
		o.Estado = to
		if err := s.saveOrder(ctx, tx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if updated.Estado == model.EstadoCompletado {
		s.notifyCompleted(ctx, updated)
	}
	resp := dto.OrderToResponse(updated)
	return &resp, nil
}

// completeOrder assigns the invoice number from the sequence, stamps the
// completion time and advances the vendor's sale goal and the client's
// lifetime total.
func (s *orderService) completeOrder(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	n, err := s.nextInvoiceNumber(ctx, tx)
	if err != nil {
		return fmt.Errorf("asignando numero de factura: %w", err)
	}
	o.InvoiceNumber = &n
	now := time.Now()
	o.CompletedAt = &now

	total := o.EffectiveTotal()
	if tx != nil {
		if err := s.payroll.AddGoalProgressTx(tx, o.VendedorID, int(o.Fecha.Month()), o.Fecha.Year(), total); err != nil {
			return err
		}
		if o.ClienteID != nil {
			if err := s.clients.AddToTotalComprasTx(tx, *o.ClienteID, total); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *orderService) notifyCompleted(ctx context.Context, o *model.Order) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.OrderCompletedPayload{
		OrderID: o.ID,
		Total:   o.EffectiveTotal().StringFixed(2),
	}
	if o.InvoiceNumber != nil {
		payload.InvoiceNumber = *o.InvoiceNumber
	}
	if vendor, err := s.users.FindByID(ctx, o.VendedorID); err == nil && vendor.Email != nil {
		payload.VendorEmail = *vendor.Email
	}
	if err := s.dispatcher.EnqueueOrderCompleted(ctx, payload); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID.String()).Msg("order completed notification enqueue failed")
	}
}

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID, reason *string, username string) (*dto.OrderResponse, error) {
	var updated *model.Order
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return errNotFound("orden no encontrada")
		}
		// Cancelling twice is a no-op, not an error.
		if o.Estado == model.EstadoCancelado {
			updated = o
			return nil
		}
		if o.Estado == model.EstadoCompletado || o.Estado == model.EstadoAnulada {
			return errConflict("la orden ya esta en estado terminal")
		}

		if err := s.restoreStockForItems(ctx, tx, o.Items, model.MovReturn, "cancelacion de orden", username); err != nil {
			return err
		}

		o.Estado = model.EstadoCancelado
		o.CancellationReason = reason
		if err := s.saveOrder(ctx, tx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.OrderToResponse(updated)
	return &resp, nil
}

// restoreStockForItems puts back exactly what each line took out. Gift lines
// live on their own rows, so each row restores independently and nothing is
// restored twice. Assortment mains restore their own quantity; the chosen
// gifts are separate rows created at completion time. Freight lines and
// never-decremented pending quantities restore nothing.
func (s *orderService) restoreStockForItems(ctx context.Context, tx *gorm.DB, items []model.OrderItem, movTipo, motivo, username string) error {
	for i := range items {
		it := &items[i]
		if it.IsFreightItem || it.Cantidad <= 0 {
			continue
		}

		switch {
		case it.ProductID != nil:
			p, err := s.lockProduct(ctx, tx, *it.ProductID)
			if err != nil {
				return errNotFound("producto no encontrado al restaurar stock")
			}
			prev := p.Stock
			if err := s.updateStock(ctx, tx, p.ID, it.Cantidad); err != nil {
				return err
			}
			if err := s.inventory.LogMovementTx(tx, &p.ID, p.Nombre, movTipo,
				it.Cantidad, prev, prev+it.Cantidad, motivo, username); err != nil {
				return err
			}

		case it.SpecialProductID != nil:
			sp, err := s.products.FindSpecialByID(ctx, *it.SpecialProductID)
			if err != nil {
				return errNotFound("producto especial no encontrado al restaurar stock")
			}
			if sp.ParentProductID != nil {
				p, err := s.lockProduct(ctx, tx, *sp.ParentProductID)
				if err != nil {
					return err
				}
				prev := p.Stock
				if err := s.updateStock(ctx, tx, p.ID, it.Cantidad); err != nil {
					return err
				}
				if err := s.inventory.LogMovementTx(tx, &p.ID, p.Nombre, movTipo,
					it.Cantidad, prev, prev+it.Cantidad, motivo, username); err != nil {
					return err
				}
			} else {
				prev := sp.EffectiveStock()
				if err := s.updateSpecialOwnStock(ctx, tx, sp.ID, it.Cantidad); err != nil {
					return err
				}
				if err := s.inventory.LogMovementTx(tx, nil, sp.Nombre, movTipo,
					it.Cantidad, prev, prev+it.Cantidad, motivo, username); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *orderService) Annul(ctx context.Context, id uuid.UUID, reason string, username string) (*dto.OrderResponse, error) {
	if reason == "" {
		return nil, errInvalid("la anulacion requiere un motivo")
	}
	var updated *model.Order
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return errNotFound("orden no encontrada")
		}
		if o.Estado != model.EstadoCompletado {
			return errConflict("solo una orden completada puede anularse")
		}

		// Administrative correction: the invoice leaves payroll and goal
		// aggregates but the physical stock stays as counted.
		total := o.EffectiveTotal()
		if tx != nil {
			if err := s.payroll.AddGoalProgressTx(tx, o.VendedorID, int(o.Fecha.Month()), o.Fecha.Year(), total.Neg()); err != nil {
				return err
			}
			if o.ClienteID != nil {
				if err := s.clients.AddToTotalComprasTx(tx, *o.ClienteID, total.Neg()); err != nil {
					return err
				}
			}
		}

		o.Estado = model.EstadoAnulada
		o.AnnulmentReason = &reason
		if err := s.saveOrder(ctx, tx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.OrderToResponse(updated)
	return &resp, nil
}

func (s *orderService) CompleteAssortment(ctx context.Context, id uuid.UUID, req dto.CompleteAssortmentRequest, username string) (*dto.OrderResponse, error) {
	var updated *model.Order
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return errNotFound("orden no encontrada")
		}
		if o.Estado != model.EstadoPendingPromotionCompletion {
			return errConflict("la orden no tiene promociones pendientes")
		}

		totalPending := 0
		for i := range o.Items {
			totalPending += o.Items[i].CantidadPendiente
		}
		totalSelected := 0
		for _, sel := range req.Selections {
			totalSelected += sel.Cantidad
		}
		if totalSelected != totalPending {
			return errConflict(fmt.Sprintf("la seleccion debe cubrir exactamente %d unidades, recibidas %d", totalPending, totalSelected))
		}

		// Fill pending mains in order, consuming selections sequentially.
		// Gift rows accumulate apart so o.Items never reallocates under the
		// main pointers.
		var gifts []model.OrderItem
		selIdx, selRemaining := 0, 0
		if len(req.Selections) > 0 {
			selRemaining = req.Selections[0].Cantidad
		}
		for i := range o.Items {
			main := &o.Items[i]
			for main.CantidadPendiente > 0 {
				if selRemaining == 0 {
					selIdx++
					selRemaining = req.Selections[selIdx].Cantidad
				}
				take := main.CantidadPendiente
				if selRemaining < take {
					take = selRemaining
				}
				sel := req.Selections[selIdx]

				p, err := s.lockProduct(ctx, tx, sel.ProductID)
				if err != nil {
					return errNotFound("producto seleccionado no encontrado")
				}
				prev := p.Stock
				if err := s.updateStock(ctx, tx, p.ID, -take); err != nil {
					return err
				}
				if err := s.inventory.LogMovementTx(tx, &p.ID, p.Nombre, model.MovSale,
					-take, prev, prev-take, "entrega de surtido de promocion", username); err != nil {
					return err
				}

				gift := model.OrderItem{
					OrderID:             o.ID,
					ProductID:           &p.ID,
					Cantidad:            take,
					PrecioUnitario:      decimal.Zero,
					Subtotal:            decimal.Zero,
					IsFreeItem:          true,
					IsPromotionItem:     true,
					PromotionID:         main.PromotionID,
					SpecialPromotionID:  main.SpecialPromotionID,
					PromotionInstanceID: main.PromotionInstanceID,
					PromotionGroupIndex: main.PromotionGroupIndex,
					CantidadDescontada:  take,
					OutOfStock:          prev-take < 0,
				}
				if err := s.saveItem(ctx, tx, &gift); err != nil {
					return err
				}
				gifts = append(gifts, gift)

				main.CantidadPendiente -= take
				main.CantidadDescontada += take
				selRemaining -= take
			}
			if main.ID != uuid.Nil {
				if err := s.saveItem(ctx, tx, main); err != nil {
					return err
				}
			}
		}
		o.Items = append(o.Items, gifts...)

		o.Estado = model.EstadoConfirmado
		if err := s.saveOrder(ctx, tx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.OrderToResponse(updated)
	return &resp, nil
}

func (s *orderService) UpdateItemETA(ctx context.Context, orderID, itemID uuid.UUID, req dto.UpdateItemETARequest) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return errNotFound("orden no encontrada")
	}
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == itemID {
			it.EstimatedArrivalDate = req.EstimatedArrivalDate
			it.EstimatedArrivalNote = req.EstimatedArrivalNote
			return s.saveItem(ctx, nil, it)
		}
	}
	return errNotFound("item no encontrado en la orden")
}

func (s *orderService) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID, username string) (*dto.OrderResponse, error) {
	var updated *model.Order
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return errNotFound("orden no encontrada")
		}
		if o.IsTerminal() {
			return errConflict("no se pueden quitar items de una orden terminal")
		}

		var target *model.OrderItem
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				target = &o.Items[i]
				break
			}
		}
		if target == nil {
			return errNotFound("item no encontrado en la orden")
		}

		// Removing a promotion main removes its whole instance: the gift
		// rows fall with it, stock restored for every row.
		toRemove := []model.OrderItem{*target}
		if target.IsPromotionItem && !target.IsFreeItem && target.PromotionInstanceID != nil {
			for i := range o.Items {
				it := &o.Items[i]
				if it.ID != target.ID && it.PromotionInstanceID != nil &&
					*it.PromotionInstanceID == *target.PromotionInstanceID {
					toRemove = append(toRemove, *it)
				}
			}
		}

		if err := s.restoreStockForItems(ctx, tx, toRemove, model.MovOrderItemRemoval, "item retirado de la orden", username); err != nil {
			return err
		}
		remaining := o.Items[:0]
		removedIDs := make(map[uuid.UUID]bool, len(toRemove))
		for _, it := range toRemove {
			removedIDs[it.ID] = true
			if err := s.deleteItem(ctx, tx, it.ID); err != nil {
				return err
			}
		}
		for i := range o.Items {
			if !removedIDs[o.Items[i].ID] {
				remaining = append(remaining, o.Items[i])
			}
		}
		o.Items = remaining
		o.RecalculateTotal()
		if err := s.saveOrder(ctx, tx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.OrderToResponse(updated)
	return &resp, nil
}

func (s *orderService) CreateHistorical(ctx context.Context, actorID uuid.UUID, req dto.HistoricalInvoiceRequest, username string) (*dto.OrderResponse, error) {
	if req.AmountPaid.GreaterThan(req.TotalValue) {
		return nil, errInvalid("el monto pagado no puede superar el total")
	}
	client, err := s.clients.FindByID(ctx, req.ClienteID)
	if err != nil {
		return nil, errNotFound("cliente no encontrado")
	}
	exists, err := s.orders.InvoiceNumberExists(ctx, req.InvoiceNumber, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errConflict(fmt.Sprintf("el numero de factura %d ya existe", req.InvoiceNumber))
	}

	vendorID := actorID
	if req.VendedorID != nil {
		vendorID = *req.VendedorID
	} else if client.VendedorAsignadoID != nil {
		vendorID = *client.VendedorAsignadoID
	}
	if _, err := s.users.FindByID(ctx, vendorID); err != nil {
		return nil, errNotFound("vendedor no encontrado")
	}

	completedAt := req.Fecha
	invoiceNumber := req.InvoiceNumber
	o := &model.Order{
		Fecha:         req.Fecha,
		VendedorID:    vendorID,
		ClienteID:     &req.ClienteID,
		Estado:        model.EstadoCompletado,
		InvoiceKind:   model.InvoiceStandard,
		InvoiceNumber: &invoiceNumber,
		Total:         req.TotalValue,
		Notas:         req.Notas,
		IsHistorical:  true,
		CompletedAt:   &completedAt,
		PaymentStatus: model.PaymentPending,
	}

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if err := s.orders.Create(ctx, tx, o); err != nil {
			return err
		}
		if req.AmountPaid.IsPositive() {
			payment := &model.Payment{
				OrderID:           o.ID,
				Amount:            req.AmountPaid,
				PaymentDate:       req.Fecha,
				ActualPaymentDate: req.Fecha,
				Method:            "HISTORICO",
				RegisteredByID:    actorID,
				Notes:             "pago inicial de factura historica",
			}
			if err := s.createPayment(ctx, tx, payment); err != nil {
				return err
			}
			switch {
			case req.AmountPaid.GreaterThanOrEqual(req.TotalValue):
				o.PaymentStatus = model.PaymentPaid
			case req.AmountPaid.IsPositive():
				o.PaymentStatus = model.PaymentPartial
			}
			if err := s.saveOrder(ctx, tx, o); err != nil {
				return err
			}
		}
		if tx != nil {
			if err := s.payroll.AddGoalProgressTx(tx, vendorID, int(req.Fecha.Month()), req.Fecha.Year(), req.TotalValue); err != nil {
				return err
			}
			if err := s.clients.AddToTotalComprasTx(tx, req.ClienteID, req.TotalValue); err != nil {
				return err
			}
			// The sequence must stay ahead of manually assigned numbers.
			if err := s.orders.SyncInvoiceSequence(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.OrderToResponse(o)
	return &resp, nil
}

func (s *orderService) EditHistorical(ctx context.Context, id uuid.UUID, req dto.EditHistoricalInvoiceRequest) (*dto.OrderResponse, error) {
	var updated *model.Order
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return errNotFound("orden no encontrada")
		}
		// Historical rows are editable past the terminal state; regular
		// completed orders are not.
		if !o.IsHistorical {
			return errConflict("solo las facturas historicas pueden editarse")
		}

		oldTotal := o.EffectiveTotal()
		oldMonth, oldYear := int(o.Fecha.Month()), o.Fecha.Year()

		if req.InvoiceNumber != nil && (o.InvoiceNumber == nil || *req.InvoiceNumber != *o.InvoiceNumber) {
			exists, err := s.orders.InvoiceNumberExists(ctx, *req.InvoiceNumber, &o.ID)
			if err != nil {
				return err
			}
			if exists {
				return errConflict(fmt.Sprintf("el numero de factura %d ya existe", *req.InvoiceNumber))
			}
			o.InvoiceNumber = req.InvoiceNumber
		}
		if req.Fecha != nil {
			o.Fecha = *req.Fecha
			o.CompletedAt = req.Fecha
		}
		if req.TotalValue != nil {
			o.Total = *req.TotalValue
		}
		if req.Notas != nil {
			o.Notas = *req.Notas
		}

		// Stock is never touched here; only the goal aggregates follow the
		// new figures.
		if tx != nil {
			newTotal := o.EffectiveTotal()
			if err := s.payroll.AddGoalProgressTx(tx, o.VendedorID, oldMonth, oldYear, oldTotal.Neg()); err != nil {
				return err
			}
			if err := s.payroll.AddGoalProgressTx(tx, o.VendedorID, int(o.Fecha.Month()), o.Fecha.Year(), newTotal); err != nil {
				return err
			}
			if o.ClienteID != nil {
				if err := s.clients.AddToTotalComprasTx(tx, *o.ClienteID, newTotal.Sub(oldTotal)); err != nil {
					return err
				}
			}
			if err := s.orders.SyncInvoiceSequence(tx); err != nil {
				return err
			}
		}

		if err := s.saveOrder(ctx, tx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := dto.OrderToResponse(updated)
	return &resp, nil
}

// ── Tx fallbacks for stub-repo unit tests ────────────────────────────────────

func (s *orderService) lockOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	if tx == nil {
		return s.orders.FindByID(ctx, id)
	}
	return s.orders.LockForUpdateTx(tx, id)
}

func (s *orderService) saveOrder(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	if tx == nil {
		return s.orders.Save(ctx, o)
	}
	return s.orders.SaveTx(tx, o)
}

func (s *orderService) saveItem(ctx context.Context, tx *gorm.DB, it *model.OrderItem) error {
	if tx == nil {
		tx = s.orders.DB()
	}
	if tx == nil {
		return nil // stub repos keep items inside the order aggregate
	}
	return s.orders.SaveItemTx(tx, it)
}

func (s *orderService) deleteItem(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		tx = s.orders.DB()
	}
	if tx == nil {
		return nil
	}
	return s.orders.DeleteItemTx(tx, id)
}

func (s *orderService) lockProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	if tx == nil {
		return s.products.FindByID(ctx, id)
	}
	return s.products.LockForUpdateTx(tx, id)
}

func (s *orderService) updateStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	if tx == nil {
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		p.Stock += delta
		return s.products.Update(ctx, p)
	}
	return s.products.UpdateStockTx(tx, id, delta)
}

func (s *orderService) updateSpecialOwnStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	if tx == nil {
		sp, err := s.products.FindSpecialByID(ctx, id)
		if err != nil {
			return err
		}
		if sp.OwnStock != nil {
			v := *sp.OwnStock + delta
			sp.OwnStock = &v
		}
		return s.products.UpdateSpecial(ctx, sp)
	}
	return s.products.UpdateSpecialOwnStockTx(tx, id, delta)
}

func (s *orderService) nextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		tx = s.orders.DB()
	}
	return s.orders.NextInvoiceNumber(tx)
}

func (s *orderService) createPayment(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	if tx == nil {
		tx = s.payments.DB()
	}
	if tx == nil {
		return nil
	}
	return s.payments.CreateTx(tx, p)
}
