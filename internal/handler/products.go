package handler

import (
	"net/http"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/middleware"
	"vitalexa/internal/model"
	"vitalexa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary Crear producto
// @Description Alta de producto con movimiento de inventario CREATION.
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateProductRequest true "Producto"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/productos [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Create(c.Request.Context(), req, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary Listar productos
// @Tags productos
// @Produce json
// @Security BearerAuth
// @Param nombre query string false "Filtro por nombre"
// @Param tag_id query string false "Filtro por etiqueta"
// @Param activo query string false "true (default) | false | all"
// @Param page query int false "Pagina (default 1)"
// @Param limit query int false "Registros por pagina (default 50)"
// @Success 200 {array} dto.ProductResponse
// @Router /v1/productos [get]
func (h *ProductsHandler) List(c *gin.Context) {
	filter := dto.ProductFilter{
		Nombre: c.Query("nombre"),
		TagID:  c.Query("tag_id"),
		Activo: c.Query("activo"),
		Hidden: c.Query("hidden"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 50),
	}
	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *ProductsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Update(c.Request.Context(), id, req, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	if err := h.svc.Deactivate(c.Request.Context(), id, claims.Username); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock godoc
// @Summary Ajustar stock
// @Description Ajuste manual absoluto (new_stock) o relativo (delta), con auditoria.
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID del producto"
// @Param body body dto.AdjustStockRequest true "Ajuste"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/productos/{id}/stock [patch]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.AdjustStock(c.Request.Context(), id, req, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Restock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RestockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Restock(c.Request.Context(), id, req, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) CreateTag(c *gin.Context) {
	var req dto.CreateTagRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateTag(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductsHandler) ListTags(c *gin.Context) {
	resp, err := h.svc.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) CreateSpecial(c *gin.Context) {
	var req dto.CreateSpecialProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSpecial(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductsHandler) GetSpecial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.GetSpecial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) UpdateSpecial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.UpdateSpecialProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateSpecial(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) DeactivateSpecial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.DeactivateSpecial(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSpecial returns the special catalog. Vendors only see entries whose
// allow-list includes them.
func (h *ProductsHandler) ListSpecial(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var vendorID *uuid.UUID
	if claims.Role == model.RoleVendedor {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			vendorID = &id
		}
	}
	resp, err := h.svc.ListSpecial(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
