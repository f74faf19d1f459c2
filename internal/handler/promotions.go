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

type PromotionsHandler struct{ svc service.PromotionService }

func NewPromotionsHandler(svc service.PromotionService) *PromotionsHandler {
	return &PromotionsHandler{svc: svc}
}

// Create godoc
// @Summary Crear promocion
// @Description Alta de promocion PACK (precio cerrado) o BUY_GET_FREE (regalos).
// @Tags promociones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreatePromotionRequest true "Promocion"
// @Success 201 {object} dto.PromotionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/promociones [post]
func (h *PromotionsHandler) Create(c *gin.Context) {
	var req dto.CreatePromotionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PromotionsHandler) Get(c *gin.Context) {
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

func (h *PromotionsHandler) List(c *gin.Context) {
	activeOnly := c.Query("activo") != "all"
	resp, err := h.svc.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PromotionsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PromotionsHandler) CreateSpecial(c *gin.Context) {
	var req dto.CreateSpecialPromotionRequest
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

// ListSpecial returns special promotions. Vendors only see the ones whose
// allow-list includes them.
func (h *PromotionsHandler) ListSpecial(c *gin.Context) {
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
