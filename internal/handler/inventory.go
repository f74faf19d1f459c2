package handler

import (
	"net/http"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/model"
	"vitalexa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MovementsPDFGenerator renders a movements report to disk and returns the
// file path.
type MovementsPDFGenerator interface {
	GenerateMovementsPDF(movs []model.InventoryMovement, title string) (string, error)
}

type InventoryHandler struct {
	svc service.InventoryService
	pdf MovementsPDFGenerator
}

func NewInventoryHandler(svc service.InventoryService, pdf MovementsPDFGenerator) *InventoryHandler {
	return &InventoryHandler{svc: svc, pdf: pdf}
}

// ListMovements godoc
// @Summary Listar movimientos de inventario
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Param product_id query string false "UUID del producto"
// @Param tipo query string false "CREATION | UPDATE | DELETION | SALE | RESTOCK | RETURN | ADJUSTMENT | ORDER_ITEM_REMOVAL"
// @Param desde query string false "Fecha YYYY-MM-DD"
// @Param hasta query string false "Fecha YYYY-MM-DD"
// @Success 200 {array} dto.MovementResponse
// @Router /v1/inventario/movimientos [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	filter := dto.MovementFilter{
		ProductID: c.Query("product_id"),
		Tipo:      c.Query("tipo"),
		Desde:     c.Query("desde"),
		Hasta:     c.Query("hasta"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 50),
	}
	items, total, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

// StockSummary godoc
// @Summary Resumen de stock de un producto
// @Description Devuelve stock actual, comprometido en ordenes abiertas y fisico.
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID del producto"
// @Success 200 {object} dto.StockSummaryResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/inventario/productos/{id}/resumen [get]
func (h *InventoryHandler) StockSummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.StockSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportMovementsPDF godoc
// @Summary Exportar movimientos a PDF
// @Tags inventario
// @Produce application/pdf
// @Security BearerAuth
// @Param product_id query string false "UUID del producto"
// @Param desde query string false "Fecha YYYY-MM-DD"
// @Param hasta query string false "Fecha YYYY-MM-DD"
// @Success 200
// @Router /v1/inventario/movimientos/pdf [get]
func (h *InventoryHandler) ExportMovementsPDF(c *gin.Context) {
	filter := dto.MovementFilter{
		ProductID: c.Query("product_id"),
		Tipo:      c.Query("tipo"),
		Desde:     c.Query("desde"),
		Hasta:     c.Query("hasta"),
	}
	movs, err := h.svc.ExportMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	path, err := h.pdf.GenerateMovementsPDF(movs, "Movimientos de inventario")
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "movimientos.pdf")
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
