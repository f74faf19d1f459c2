package handler

import (
	"net/http"

	"vitalexa/internal/apierror"
	"vitalexa/internal/dto"
	"vitalexa/internal/middleware"
	"vitalexa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// Create godoc
// @Summary Crear orden
// @Description Crea la orden descontando stock. Productos S/R y promociones se separan en sub-ordenes con su propio tipo de factura.
// @Tags ordenes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateOrderRequest true "Detalle de la orden"
// @Success 201 {object} dto.CreateOrderResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	vendorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Create(c.Request.Context(), vendorID, req, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrdersHandler) Get(c *gin.Context) {
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
// @Summary Listar ordenes
// @Tags ordenes
// @Produce json
// @Security BearerAuth
// @Param vendedor_id query string false "UUID del vendedor"
// @Param cliente_id query string false "UUID del cliente"
// @Param estado query string false "PENDIENTE | CONFIRMADO | PENDING_PROMOTION_COMPLETION | COMPLETADO | CANCELADO | ANULADA"
// @Param invoice_kind query string false "STANDARD | SIN_REGISTRO | PROMOCION"
// @Param desde query string false "Fecha YYYY-MM-DD"
// @Param hasta query string false "Fecha YYYY-MM-DD"
// @Success 200 {array} dto.OrderResponse
// @Router /v1/ordenes [get]
func (h *OrdersHandler) List(c *gin.Context) {
	filter := dto.OrderFilter{
		VendedorID:  c.Query("vendedor_id"),
		ClienteID:   c.Query("cliente_id"),
		Estado:      c.Query("estado"),
		InvoiceKind: c.Query("invoice_kind"),
		Desde:       c.Query("desde"),
		Hasta:       c.Query("hasta"),
		Page:        queryInt(c, "page", 1),
		Limit:       queryInt(c, "limit", 50),
	}
	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

// ChangeStatus godoc
// @Summary Cambiar estado de la orden
// @Description Transicion de estado validada. COMPLETADO asigna numero de factura y actualiza metas.
// @Tags ordenes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la orden"
// @Param body body dto.ChangeStatusRequest true "Nuevo estado"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes/{id}/estado [patch]
func (h *OrdersHandler) ChangeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ChangeStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.ChangeStatus(c.Request.Context(), id, req.Estado, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary Cancelar orden
// @Description Cancela una orden abierta restaurando el stock de cada item. Idempotente.
// @Tags ordenes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la orden"
// @Param body body dto.CancelOrderRequest false "Motivo"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes/{id}/cancelar [post]
func (h *OrdersHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CancelOrderRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Cancel(c.Request.Context(), id, req.Reason, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Annul godoc
// @Summary Anular orden completada
// @Description Correccion administrativa de una factura emitida. No restaura stock.
// @Tags ordenes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la orden"
// @Param body body dto.AnnulOrderRequest true "Motivo obligatorio"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes/{id}/anular [post]
func (h *OrdersHandler) Annul(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AnnulOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Annul(c.Request.Context(), id, req.Reason, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompleteAssortment godoc
// @Summary Completar surtido de promocion
// @Description Registra los productos elegidos para los regalos pendientes. La seleccion debe cubrir exactamente las unidades pendientes.
// @Tags ordenes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la orden"
// @Param body body dto.CompleteAssortmentRequest true "Seleccion"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes/{id}/surtido [post]
func (h *OrdersHandler) CompleteAssortment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CompleteAssortmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.CompleteAssortment(c.Request.Context(), id, req, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) UpdateItemETA(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de item invalido"))
		return
	}
	var req dto.UpdateItemETARequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.UpdateItemETA(c.Request.Context(), orderID, itemID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrdersHandler) RemoveItem(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de item invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.RemoveItem(c.Request.Context(), orderID, itemID, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateHistorical godoc
// @Summary Registrar factura historica
// @Description Alta retroactiva de una factura previa al sistema. Nace COMPLETADO, no toca stock y re-sincroniza la secuencia de numeracion.
// @Tags ordenes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.HistoricalInvoiceRequest true "Factura historica"
// @Success 201 {object} dto.OrderResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes/historicas [post]
func (h *OrdersHandler) CreateHistorical(c *gin.Context) {
	var req dto.HistoricalInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)
	resp, err := h.svc.CreateHistorical(c.Request.Context(), actorID, req, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrdersHandler) EditHistorical(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.EditHistoricalInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EditHistorical(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
