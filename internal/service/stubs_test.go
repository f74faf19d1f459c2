package service

import (
	"context"
	"fmt"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repositories for unit tests. Their DB() returns nil, so runTx
// calls the service body with a nil tx and every helper falls back to the
// plain repository methods.

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

// ── users ────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) add(u *model.User) *model.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

func (r *stubUserRepo) Create(ctx context.Context, u *model.User) error {
	r.add(u)
	return nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Role == role && u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(ctx context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = activo
	return nil
}

// ── clients ──────────────────────────────────────────────────────────────────

type stubClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

func (r *stubClientRepo) add(c *model.Client) *model.Client {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = c
	return c
}

func (r *stubClientRepo) Create(ctx context.Context, c *model.Client) error {
	r.add(c)
	return nil
}

func (r *stubClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClientRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Client, error) {
	for _, c := range r.clients {
		if c.UserID != nil && *c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClientRepo) ListAll(ctx context.Context) ([]model.Client, error) {
	var out []model.Client
	for _, c := range r.clients {
		if c.Activo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClientRepo) ListByVendedor(ctx context.Context, vendorID uuid.UUID) ([]model.Client, error) {
	var out []model.Client
	for _, c := range r.clients {
		if c.Activo && c.VendedorAsignadoID != nil && *c.VendedorAsignadoID == vendorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClientRepo) List(ctx context.Context, nombre string, page, limit int) ([]model.Client, int64, error) {
	var out []model.Client
	for _, c := range r.clients {
		if c.Activo {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) Update(ctx context.Context, c *model.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	c, ok := r.clients[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = false
	return nil
}

func (r *stubClientRepo) AddToTotalComprasTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	c, ok := r.clients[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.TotalCompras = c.TotalCompras.Add(delta)
	return nil
}

// ── products ─────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	specials map[uuid.UUID]*model.SpecialProduct
	tags     map[uuid.UUID]*model.ProductTag
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		specials: make(map[uuid.UUID]*model.SpecialProduct),
		tags:     make(map[uuid.UUID]*model.ProductTag),
	}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) addSpecial(sp *model.SpecialProduct) *model.SpecialProduct {
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	r.specials[sp.ID] = sp
	return sp
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) Create(ctx context.Context, p *model.Product) error {
	r.add(p)
	return nil
}

func (r *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(ctx context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProductRepo) LowStock(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Activo && p.ReorderPoint != nil && p.Stock <= *p.ReorderPoint {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductRepo) SetStockTx(tx *gorm.DB, id uuid.UUID, newStock int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = newStock
	return nil
}

func (r *stubProductRepo) CreateTag(ctx context.Context, t *model.ProductTag) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.tags[t.ID] = t
	return nil
}

func (r *stubProductRepo) FindTagByID(ctx context.Context, id uuid.UUID) (*model.ProductTag, error) {
	t, ok := r.tags[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubProductRepo) FindTagByName(ctx context.Context, name string) (*model.ProductTag, error) {
	for _, t := range r.tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) ListTags(ctx context.Context) ([]model.ProductTag, error) {
	var out []model.ProductTag
	for _, t := range r.tags {
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubProductRepo) CreateSpecial(ctx context.Context, sp *model.SpecialProduct) error {
	r.addSpecial(sp)
	return nil
}

func (r *stubProductRepo) FindSpecialByID(ctx context.Context, id uuid.UUID) (*model.SpecialProduct, error) {
	sp, ok := r.specials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sp, nil
}

func (r *stubProductRepo) ListSpecial(ctx context.Context, vendorID *uuid.UUID) ([]model.SpecialProduct, error) {
	var out []model.SpecialProduct
	for _, sp := range r.specials {
		if vendorID != nil && !sp.VendorAllowed(*vendorID) {
			continue
		}
		out = append(out, *sp)
	}
	return out, nil
}

func (r *stubProductRepo) UpdateSpecial(ctx context.Context, sp *model.SpecialProduct) error {
	r.specials[sp.ID] = sp
	return nil
}

func (r *stubProductRepo) UpdateSpecialOwnStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	sp, ok := r.specials[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if sp.OwnStock != nil {
		v := *sp.OwnStock + delta
		sp.OwnStock = &v
	}
	return nil
}

// ── inventory movements ──────────────────────────────────────────────────────

type stubMovementRepo struct {
	rows []model.InventoryMovement
}

var _ repository.MovementRepository = (*stubMovementRepo)(nil)

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

func (r *stubMovementRepo) CreateTx(tx *gorm.DB, m *model.InventoryMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.rows = append(r.rows, *m)
	return nil
}

func (r *stubMovementRepo) List(ctx context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error) {
	var out []model.InventoryMovement
	for _, m := range r.rows {
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		if filter.ProductID != "" && (m.ProductID == nil || m.ProductID.String() != filter.ProductID) {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) byTipo(tipo string) []model.InventoryMovement {
	var out []model.InventoryMovement
	for _, m := range r.rows {
		if m.Tipo == tipo {
			out = append(out, m)
		}
	}
	return out
}

// ── promotions ───────────────────────────────────────────────────────────────

type stubPromotionRepo struct {
	promos   map[uuid.UUID]*model.Promotion
	specials map[uuid.UUID]*model.SpecialPromotion
}

var _ repository.PromotionRepository = (*stubPromotionRepo)(nil)

func newStubPromotionRepo() *stubPromotionRepo {
	return &stubPromotionRepo{
		promos:   make(map[uuid.UUID]*model.Promotion),
		specials: make(map[uuid.UUID]*model.SpecialPromotion),
	}
}

func (r *stubPromotionRepo) add(p *model.Promotion) *model.Promotion {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.promos[p.ID] = p
	return p
}

func (r *stubPromotionRepo) addSpecial(sp *model.SpecialPromotion) *model.SpecialPromotion {
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	r.specials[sp.ID] = sp
	return sp
}

func (r *stubPromotionRepo) Create(ctx context.Context, p *model.Promotion) error {
	r.add(p)
	return nil
}

func (r *stubPromotionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	p, ok := r.promos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPromotionRepo) List(ctx context.Context, activeOnly bool) ([]model.Promotion, error) {
	var out []model.Promotion
	for _, p := range r.promos {
		if activeOnly && !p.Activo {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPromotionRepo) Update(ctx context.Context, p *model.Promotion) error {
	r.promos[p.ID] = p
	return nil
}

func (r *stubPromotionRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	p, ok := r.promos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubPromotionRepo) ReplaceGiftItems(ctx context.Context, promotionID uuid.UUID, items []model.PromotionGiftItem) error {
	p, ok := r.promos[promotionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.GiftItems = items
	return nil
}

func (r *stubPromotionRepo) CreateSpecial(ctx context.Context, sp *model.SpecialPromotion) error {
	// Mirrors the repository preload of the parent row.
	if sp.ParentPromotion == nil && sp.ParentPromotionID != nil {
		sp.ParentPromotion = r.promos[*sp.ParentPromotionID]
	}
	r.addSpecial(sp)
	return nil
}

func (r *stubPromotionRepo) FindSpecialByID(ctx context.Context, id uuid.UUID) (*model.SpecialPromotion, error) {
	sp, ok := r.specials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sp, nil
}

func (r *stubPromotionRepo) ListSpecial(ctx context.Context, vendorID *uuid.UUID) ([]model.SpecialPromotion, error) {
	var out []model.SpecialPromotion
	for _, sp := range r.specials {
		if vendorID != nil && !sp.VendorAllowed(*vendorID) {
			continue
		}
		out = append(out, *sp)
	}
	return out, nil
}

func (r *stubPromotionRepo) UpdateSpecial(ctx context.Context, sp *model.SpecialPromotion) error {
	r.specials[sp.ID] = sp
	return nil
}

// ── orders ───────────────────────────────────────────────────────────────────

type stubOrderRepo struct {
	orders      map[uuid.UUID]*model.Order
	nextInvoice int64
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order), nextInvoice: 1}
}

func (r *stubOrderRepo) add(o *model.Order) *model.Order {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
	}
	r.orders[o.ID] = o
	return o
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

func (r *stubOrderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	r.add(o)
	return nil
}

func (r *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) Save(ctx context.Context, o *model.Order) error {
	r.add(o)
	return nil
}

func (r *stubOrderRepo) SaveTx(tx *gorm.DB, o *model.Order) error {
	r.add(o)
	return nil
}

func (r *stubOrderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if filter.Estado != "" && o.Estado != filter.Estado {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.ClienteID != nil && *o.ClienteID == clientID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) NextInvoiceNumber(tx *gorm.DB) (int64, error) {
	n := r.nextInvoice
	r.nextInvoice++
	return n, nil
}

func (r *stubOrderRepo) SyncInvoiceSequence(tx *gorm.DB) error {
	for _, o := range r.orders {
		if o.InvoiceNumber != nil && *o.InvoiceNumber >= r.nextInvoice {
			r.nextInvoice = *o.InvoiceNumber + 1
		}
	}
	return nil
}

func (r *stubOrderRepo) InvoiceNumberExists(ctx context.Context, n int64, excludeID *uuid.UUID) (bool, error) {
	for _, o := range r.orders {
		if excludeID != nil && o.ID == *excludeID {
			continue
		}
		if o.InvoiceNumber != nil && *o.InvoiceNumber == n {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubOrderRepo) CommittedStock(ctx context.Context, productID uuid.UUID) (int, error) {
	committed := 0
	for _, o := range r.orders {
		if o.Estado == model.EstadoCompletado || o.Estado == model.EstadoCancelado || o.Estado == model.EstadoAnulada {
			continue
		}
		for i := range o.Items {
			it := &o.Items[i]
			if it.ProductID == nil || *it.ProductID != productID {
				continue
			}
			if it.IsFreightItem || it.IsBonified || it.IsFreeItem {
				continue
			}
			committed += it.Cantidad
		}
	}
	return committed, nil
}

func (r *stubOrderRepo) SumCompletedTotals(ctx context.Context, vendorIDs []uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range r.orders {
		if o.Estado != model.EstadoCompletado {
			continue
		}
		if o.Fecha.Before(from) || !o.Fecha.Before(to) {
			continue
		}
		for _, vid := range vendorIDs {
			if o.VendedorID == vid {
				sum = sum.Add(o.EffectiveTotal())
				break
			}
		}
	}
	return sum, nil
}

func (r *stubOrderRepo) SumCompletedTotalsAll(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range r.orders {
		if o.Estado != model.EstadoCompletado {
			continue
		}
		if o.Fecha.Before(from) || !o.Fecha.Before(to) {
			continue
		}
		sum = sum.Add(o.EffectiveTotal())
	}
	return sum, nil
}

func (r *stubOrderRepo) SaveItemTx(tx *gorm.DB, it *model.OrderItem) error { return nil }

func (r *stubOrderRepo) DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error { return nil }

// ── discounts ────────────────────────────────────────────────────────────────

type stubDiscountRepo struct {
	rows []*model.OrderDiscount
}

var _ repository.DiscountRepository = (*stubDiscountRepo)(nil)

func newStubDiscountRepo() *stubDiscountRepo { return &stubDiscountRepo{} }

func (r *stubDiscountRepo) DB() *gorm.DB { return nil }

func (r *stubDiscountRepo) CreateTx(tx *gorm.DB, d *model.OrderDiscount) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.rows = append(r.rows, d)
	return nil
}

func (r *stubDiscountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.OrderDiscount, error) {
	for _, d := range r.rows {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubDiscountRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderDiscount, error) {
	var out []model.OrderDiscount
	for _, d := range r.rows {
		if d.OrderID == orderID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubDiscountRepo) SaveTx(tx *gorm.DB, d *model.OrderDiscount) error {
	for i, row := range r.rows {
		if row.ID == d.ID {
			r.rows[i] = d
			return nil
		}
	}
	r.rows = append(r.rows, d)
	return nil
}

// ── payments ─────────────────────────────────────────────────────────────────

type stubPaymentRepo struct {
	payments map[uuid.UUID]*model.Payment
	// orders lets SumCollectedForInvoices join against invoices the way the
	// SQL implementation does.
	orders *stubOrderRepo
}

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

func newStubPaymentRepo(orders *stubOrderRepo) *stubPaymentRepo {
	return &stubPaymentRepo{payments: make(map[uuid.UUID]*model.Payment), orders: orders}
}

func (r *stubPaymentRepo) add(p *model.Payment) *model.Payment {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments[p.ID] = p
	return p
}

func (r *stubPaymentRepo) DB() *gorm.DB { return nil }

func (r *stubPaymentRepo) CreateTx(tx *gorm.DB, p *model.Payment) error {
	r.add(p)
	return nil
}

func (r *stubPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPaymentRepo) LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPaymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPaymentRepo) SaveTx(tx *gorm.DB, p *model.Payment) error {
	r.add(p)
	return nil
}

func (r *stubPaymentRepo) SumActiveByOrderTx(tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.payments {
		if p.OrderID == orderID && !p.IsCancelled {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r *stubPaymentRepo) SumCollectedForInvoices(ctx context.Context, vendorIDs []uuid.UUID, invFrom, invTo, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.payments {
		if p.IsCancelled {
			continue
		}
		if p.ActualPaymentDate.Before(from) || !p.ActualPaymentDate.Before(to) {
			continue
		}
		o, ok := r.orders.orders[p.OrderID]
		if !ok || o.Estado != model.EstadoCompletado {
			continue
		}
		if o.Fecha.Before(invFrom) || !o.Fecha.Before(invTo) {
			continue
		}
		for _, vid := range vendorIDs {
			if o.VendedorID == vid {
				sum = sum.Add(p.Amount)
				break
			}
		}
	}
	return sum, nil
}

// ── transfers ────────────────────────────────────────────────────────────────

type stubTransferRepo struct {
	transfers []*model.PaymentTransfer
}

var _ repository.TransferRepository = (*stubTransferRepo)(nil)

func newStubTransferRepo() *stubTransferRepo { return &stubTransferRepo{} }

func (r *stubTransferRepo) add(t *model.PaymentTransfer) *model.PaymentTransfer {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.transfers = append(r.transfers, t)
	return t
}

func (r *stubTransferRepo) CreateTx(tx *gorm.DB, t *model.PaymentTransfer) error {
	r.add(t)
	return nil
}

func (r *stubTransferRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentTransfer, error) {
	for _, t := range r.transfers {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTransferRepo) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]model.PaymentTransfer, error) {
	var out []model.PaymentTransfer
	for _, t := range r.transfers {
		if t.PaymentID == paymentID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTransferRepo) ListByDestVendor(ctx context.Context, vendorID uuid.UUID, month, year int) ([]model.PaymentTransfer, error) {
	var out []model.PaymentTransfer
	for _, t := range r.transfers {
		if t.DestVendorID == vendorID && t.TargetMonth == month && t.TargetYear == year {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTransferRepo) SaveTx(tx *gorm.DB, t *model.PaymentTransfer) error {
	for i, row := range r.transfers {
		if row.ID == t.ID {
			r.transfers[i] = t
			return nil
		}
	}
	r.add(t)
	return nil
}

func (r *stubTransferRepo) SumActiveByPaymentTx(tx *gorm.DB, paymentID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range r.transfers {
		if t.PaymentID == paymentID && !t.IsRevoked {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (r *stubTransferRepo) SumActiveForVendorMonth(ctx context.Context, vendorIDs []uuid.UUID, month, year int) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range r.transfers {
		if t.IsRevoked || t.TargetMonth != month || t.TargetYear != year {
			continue
		}
		for _, vid := range vendorIDs {
			if t.DestVendorID == vid {
				sum = sum.Add(t.Amount)
				break
			}
		}
	}
	return sum, nil
}

// ── payroll ──────────────────────────────────────────────────────────────────

type stubPayrollRepo struct {
	configs   map[uuid.UUID]*model.VendorPayrollConfig
	snapshots map[string]*model.Payroll
	goals     map[string]*model.SaleGoal
}

var _ repository.PayrollRepository = (*stubPayrollRepo)(nil)

func newStubPayrollRepo() *stubPayrollRepo {
	return &stubPayrollRepo{
		configs:   make(map[uuid.UUID]*model.VendorPayrollConfig),
		snapshots: make(map[string]*model.Payroll),
		goals:     make(map[string]*model.SaleGoal),
	}
}

func vmyKey(vendorID uuid.UUID, month, year int) string {
	return fmt.Sprintf("%s/%d/%d", vendorID, month, year)
}

func (r *stubPayrollRepo) SaveConfig(ctx context.Context, c *model.VendorPayrollConfig) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.configs[c.VendedorID] = c
	return nil
}

func (r *stubPayrollRepo) FindConfigByVendor(ctx context.Context, vendorID uuid.UUID) (*model.VendorPayrollConfig, error) {
	c, ok := r.configs[vendorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubPayrollRepo) ListConfigs(ctx context.Context) ([]model.VendorPayrollConfig, error) {
	var out []model.VendorPayrollConfig
	for _, c := range r.configs {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubPayrollRepo) FindSnapshot(ctx context.Context, vendorID uuid.UUID, month, year int) (*model.Payroll, error) {
	p, ok := r.snapshots[vmyKey(vendorID, month, year)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPayrollRepo) SaveSnapshot(ctx context.Context, p *model.Payroll) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	r.snapshots[vmyKey(p.VendedorID, p.Month, p.Year)] = p
	return nil
}

func (r *stubPayrollRepo) ListSnapshots(ctx context.Context, month, year int) ([]model.Payroll, error) {
	var out []model.Payroll
	for _, p := range r.snapshots {
		if p.Month == month && p.Year == year {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPayrollRepo) CreateGoal(ctx context.Context, g *model.SaleGoal) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	r.goals[vmyKey(g.VendedorID, g.Month, g.Year)] = g
	return nil
}

func (r *stubPayrollRepo) FindGoal(ctx context.Context, vendorID uuid.UUID, month, year int) (*model.SaleGoal, error) {
	g, ok := r.goals[vmyKey(vendorID, month, year)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

func (r *stubPayrollRepo) ListGoals(ctx context.Context, month, year int) ([]model.SaleGoal, error) {
	var out []model.SaleGoal
	for _, g := range r.goals {
		if g.Month == month && g.Year == year {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *stubPayrollRepo) SaveGoal(ctx context.Context, g *model.SaleGoal) error {
	r.goals[vmyKey(g.VendedorID, g.Month, g.Year)] = g
	return nil
}

func (r *stubPayrollRepo) AddGoalProgressTx(tx *gorm.DB, vendorID uuid.UUID, month, year int, delta decimal.Decimal) error {
	g, ok := r.goals[vmyKey(vendorID, month, year)]
	if !ok {
		return nil
	}
	g.CurrentAmount = g.CurrentAmount.Add(delta)
	return nil
}

func (r *stubPayrollRepo) SumGoalTargets(ctx context.Context, month, year int) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, g := range r.goals {
		if g.Month == month && g.Year == year {
			sum = sum.Add(g.TargetAmount)
		}
	}
	return sum, nil
}
