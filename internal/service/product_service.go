package service

import (
	"context"
	"fmt"

	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ProductService is the catalog facade. Every operation that touches stock
// pairs the mutation with an inventory movement in the same transaction.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest, username string) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest, username string) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID, username string) error
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest, username string) (*dto.ProductResponse, error)
	Restock(ctx context.Context, id uuid.UUID, req dto.RestockRequest, username string) (*dto.ProductResponse, error)

	CreateTag(ctx context.Context, req dto.CreateTagRequest) (*model.ProductTag, error)
	ListTags(ctx context.Context) ([]model.ProductTag, error)

	CreateSpecial(ctx context.Context, req dto.CreateSpecialProductRequest) (*dto.SpecialProductResponse, error)
	GetSpecial(ctx context.Context, id uuid.UUID) (*dto.SpecialProductResponse, error)
	ListSpecial(ctx context.Context, vendorID *uuid.UUID) ([]dto.SpecialProductResponse, error)
	UpdateSpecial(ctx context.Context, id uuid.UUID, req dto.UpdateSpecialProductRequest) (*dto.SpecialProductResponse, error)
	DeactivateSpecial(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo      repository.ProductRepository
	users     repository.UserRepository
	inventory InventoryService
	rdb       *redis.Client
}

func NewProductService(repo repository.ProductRepository, users repository.UserRepository, inventory InventoryService, rdb *redis.Client) ProductService {
	return &productService{repo: repo, users: users, inventory: inventory, rdb: rdb}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest, username string) (*dto.ProductResponse, error) {
	p := &model.Product{
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		Precio:       req.Precio,
		Stock:        req.Stock,
		ReorderPoint: req.ReorderPoint,
		TagID:        req.TagID,
		ImageURL:     req.ImageURL,
		Hidden:       req.Hidden,
		Activo:       true,
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			if err := s.repo.Create(ctx, p); err != nil {
				return err
			}
		} else if err := tx.Create(p).Error; err != nil {
			return err
		}
		return s.inventory.LogMovementTx(tx, &p.ID, p.Nombre, model.MovCreation,
			p.Stock, 0, p.Stock, "alta de producto", username)
	})
	if err != nil {
		return nil, err
	}

	invalidateLowStockCache(ctx, s.rdb)
	resp := dto.ProductToResponse(p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errNotFound("producto no encontrado")
	}
	resp := dto.ProductToResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductResponse, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, dto.ProductToResponse(&products[i]))
	}
	return out, total, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest, username string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errNotFound("producto no encontrado")
	}

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.Precio != nil {
		p.Precio = *req.Precio
	}
	if req.ReorderPoint != nil {
		p.ReorderPoint = req.ReorderPoint
	}
	if req.TagID != nil {
		p.TagID = req.TagID
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}
	if req.Hidden != nil {
		p.Hidden = *req.Hidden
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			if err := s.repo.Update(ctx, p); err != nil {
				return err
			}
		} else if err := tx.Save(p).Error; err != nil {
			return err
		}
		return s.inventory.LogMovementTx(tx, &p.ID, p.Nombre, model.MovUpdate,
			0, p.Stock, p.Stock, "actualizacion de producto", username)
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ProductToResponse(p)
	return &resp, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID, username string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errNotFound("producto no encontrado")
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			if err := s.repo.SoftDelete(ctx, id); err != nil {
				return err
			}
		} else if err := tx.Model(&model.Product{}).Where("id = ?", id).Update("activo", false).Error; err != nil {
			return err
		}
		return s.inventory.LogMovementTx(tx, &p.ID, p.Nombre, model.MovDeletion,
			0, p.Stock, p.Stock, "baja de producto", username)
	})
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest, username string) (*dto.ProductResponse, error) {
	if (req.NewStock == nil) == (req.Delta == nil) {
		return nil, errInvalid("se requiere exactamente uno de new_stock o delta")
	}

	var updated *model.Product
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.lockProduct(ctx, tx, id)
		if err != nil {
			return errNotFound("producto no encontrado")
		}

		prev := p.Stock
		nuevo := prev
		if req.NewStock != nil {
			nuevo = *req.NewStock
		} else {
			nuevo = prev + *req.Delta
		}

		if err := s.setStock(ctx, tx, id, nuevo); err != nil {
			return err
		}
		p.Stock = nuevo
		updated = p
		return s.inventory.LogMovementTx(tx, &p.ID, p.Nombre, model.MovStockAdjustment,
			nuevo-prev, prev, nuevo, req.Reason, username)
	})
	if err != nil {
		return nil, err
	}

	invalidateLowStockCache(ctx, s.rdb)
	resp := dto.ProductToResponse(updated)
	return &resp, nil
}

func (s *productService) Restock(ctx context.Context, id uuid.UUID, req dto.RestockRequest, username string) (*dto.ProductResponse, error) {
	var updated *model.Product
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.lockProduct(ctx, tx, id)
		if err != nil {
			return errNotFound("producto no encontrado")
		}
		prev := p.Stock
		nuevo := prev + req.Cantidad
		if err := s.setStock(ctx, tx, id, nuevo); err != nil {
			return err
		}
		p.Stock = nuevo
		updated = p
		motivo := req.Reason
		if motivo == "" {
			motivo = fmt.Sprintf("reposicion de %d unidades", req.Cantidad)
		}
		return s.inventory.LogMovementTx(tx, &p.ID, p.Nombre, model.MovRestock,
			req.Cantidad, prev, nuevo, motivo, username)
	})
	if err != nil {
		return nil, err
	}

	invalidateLowStockCache(ctx, s.rdb)
	resp := dto.ProductToResponse(updated)
	return &resp, nil
}

// lockProduct and setStock fall back to unlocked repo calls when running
// without a transaction (stub-repo unit tests).
func (s *productService) lockProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	if tx == nil {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.LockForUpdateTx(tx, id)
}

func (s *productService) setStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, newStock int) error {
	if tx == nil {
		p, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		p.Stock = newStock
		return s.repo.Update(ctx, p)
	}
	return s.repo.SetStockTx(tx, id, newStock)
}

func (s *productService) CreateTag(ctx context.Context, req dto.CreateTagRequest) (*model.ProductTag, error) {
	if _, err := s.repo.FindTagByName(ctx, req.Name); err == nil {
		return nil, errConflict("la etiqueta ya existe")
	}
	t := &model.ProductTag{Name: req.Name, Description: req.Description}
	if err := s.repo.CreateTag(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *productService) ListTags(ctx context.Context) ([]model.ProductTag, error) {
	return s.repo.ListTags(ctx)
}

func (s *productService) CreateSpecial(ctx context.Context, req dto.CreateSpecialProductRequest) (*dto.SpecialProductResponse, error) {
	if req.ParentProductID == nil && req.OwnStock == nil {
		return nil, errInvalid("un producto especial necesita stock propio o un producto padre")
	}
	sp := &model.SpecialProduct{
		Nombre:          req.Nombre,
		Descripcion:     req.Descripcion,
		Precio:          req.Precio,
		OwnStock:        req.OwnStock,
		ParentProductID: req.ParentProductID,
		TagID:           req.TagID,
		Activo:          true,
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
	return s.GetSpecial(ctx, sp.ID)
}

func (s *productService) GetSpecial(ctx context.Context, id uuid.UUID) (*dto.SpecialProductResponse, error) {
	sp, err := s.repo.FindSpecialByID(ctx, id)
	if err != nil {
		return nil, errNotFound("producto especial no encontrado")
	}
	resp := dto.SpecialProductToResponse(sp)
	return &resp, nil
}

func (s *productService) UpdateSpecial(ctx context.Context, id uuid.UUID, req dto.UpdateSpecialProductRequest) (*dto.SpecialProductResponse, error) {
	sp, err := s.repo.FindSpecialByID(ctx, id)
	if err != nil {
		return nil, errNotFound("producto especial no encontrado")
	}
	if req.Nombre != nil {
		sp.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		sp.Descripcion = req.Descripcion
	}
	if req.Precio != nil {
		sp.Precio = *req.Precio
	}
	if req.TagID != nil {
		sp.TagID = req.TagID
	}
	if req.AllowedVendorIDs != nil {
		sp.AllowedVendors = sp.AllowedVendors[:0]
		for _, vid := range req.AllowedVendorIDs {
			v, err := s.users.FindByID(ctx, vid)
			if err != nil {
				return nil, errInvalid("vendedor permitido no encontrado")
			}
			sp.AllowedVendors = append(sp.AllowedVendors, *v)
		}
	}
	if err := s.repo.UpdateSpecial(ctx, sp); err != nil {
		return nil, err
	}
	return s.GetSpecial(ctx, sp.ID)
}

func (s *productService) DeactivateSpecial(ctx context.Context, id uuid.UUID) error {
	sp, err := s.repo.FindSpecialByID(ctx, id)
	if err != nil {
		return errNotFound("producto especial no encontrado")
	}
	sp.Activo = false
	return s.repo.UpdateSpecial(ctx, sp)
}

func (s *productService) ListSpecial(ctx context.Context, vendorID *uuid.UUID) ([]dto.SpecialProductResponse, error) {
	sps, err := s.repo.ListSpecial(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SpecialProductResponse, 0, len(sps))
	for i := range sps {
		out = append(out, dto.SpecialProductToResponse(&sps[i]))
	}
	return out, nil
}
