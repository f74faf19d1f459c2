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

type DiscountsHandler struct{ svc service.DiscountService }

func NewDiscountsHandler(svc service.DiscountService) *DiscountsHandler {
	return &DiscountsHandler{svc: svc}
}

// Apply godoc
// @Summary Aplicar descuento a una orden
// @Description Los porcentajes aplicados se suman (tope 100) y recalculan el total con descuento.
// @Tags descuentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la orden"
// @Param body body dto.ApplyDiscountRequest true "Descuento"
// @Success 201 {object} dto.DiscountResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes/{id}/descuentos [post]
func (h *DiscountsHandler) Apply(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ApplyDiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)
	resp, err := h.svc.Apply(c.Request.Context(), orderID, actorID, claims.Role, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Revoke godoc
// @Summary Revocar descuento
// @Description Marca el descuento como revocado y recalcula el total de la orden.
// @Tags descuentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la orden"
// @Param discountId path string true "UUID del descuento"
// @Param body body dto.RevokeDiscountRequest false "Motivo"
// @Success 200 {object} dto.DiscountResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes/{id}/descuentos/{discountId} [delete]
func (h *DiscountsHandler) Revoke(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	discountID, err := uuid.Parse(c.Param("discountId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de descuento invalido"))
		return
	}
	var req dto.RevokeDiscountRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)
	resp, err := h.svc.Revoke(c.Request.Context(), orderID, discountID, actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DiscountsHandler) ListByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
