package service

import (
	"context"
	"encoding/json"
	"time"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const lowStockCacheKey = "cache:low_stock"

// InventoryService owns the movement ledger and the reconciliation views.
// Other services call LogMovementTx inside their own transactions so that
// every stock mutation and its audit row commit or roll back together.
type InventoryService interface {
	LogMovementTx(tx *gorm.DB, productID *uuid.UUID, productName, tipo string, cantidad, prev, nuevo int, motivo, username string) error
	ListMovements(ctx context.Context, filter dto.MovementFilter) ([]dto.MovementResponse, int64, error)
	ExportMovements(ctx context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, error)
	StockSummary(ctx context.Context, productID uuid.UUID) (*dto.StockSummaryResponse, error)
	LowStock(ctx context.Context) ([]dto.ProductResponse, error)
}

type inventoryService struct {
	movements repository.MovementRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	rdb       *redis.Client
}

func NewInventoryService(movements repository.MovementRepository, products repository.ProductRepository, orders repository.OrderRepository, rdb *redis.Client) InventoryService {
	return &inventoryService{movements: movements, products: products, orders: orders, rdb: rdb}
}

func (s *inventoryService) LogMovementTx(tx *gorm.DB, productID *uuid.UUID, productName, tipo string, cantidad, prev, nuevo int, motivo, username string) error {
	m := &model.InventoryMovement{
		ProductID:     productID,
		ProductName:   productName,
		Tipo:          tipo,
		Cantidad:      cantidad,
		StockAnterior: prev,
		StockNuevo:    nuevo,
		Motivo:        motivo,
		Username:      username,
	}
	return s.movements.CreateTx(tx, m)
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) ([]dto.MovementResponse, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	movs, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for i := range movs {
		out = append(out, dto.MovementToResponse(&movs[i]))
	}
	return out, total, nil
}

// ExportMovements returns raw movement rows for report rendering, capped to
// keep a single PDF manageable.
func (s *inventoryService) ExportMovements(ctx context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, error) {
	filter.Page = 1
	if filter.Limit <= 0 || filter.Limit > 2000 {
		filter.Limit = 2000
	}
	movs, _, err := s.movements.List(ctx, filter)
	return movs, err
}

func (s *inventoryService) StockSummary(ctx context.Context, productID uuid.UUID) (*dto.StockSummaryResponse, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, errNotFound("producto no encontrado")
	}
	committed, err := s.orders.CommittedStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.StockSummaryResponse{
		ProductID:      p.ID,
		Nombre:         p.Nombre,
		Stock:          p.Stock,
		CommittedStock: committed,
		PhysicalStock:  p.Stock + committed,
	}, nil
}

func (s *inventoryService) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, lowStockCacheKey).Result(); err == nil {
			var out []dto.ProductResponse
			if json.Unmarshal([]byte(cached), &out) == nil {
				return out, nil
			}
		}
	}

	products, err := s.products.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, dto.ProductToResponse(&products[i]))
	}

	if s.rdb != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := s.rdb.Set(ctx, lowStockCacheKey, data, 60*time.Second).Err(); err != nil {
				log.Warn().Err(err).Msg("low stock cache write failed")
			}
		}
	}
	return out, nil
}

// invalidateLowStockCache drops the cached alert list after stock changes.
func invalidateLowStockCache(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, lowStockCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("low stock cache invalidation failed")
	}
}
