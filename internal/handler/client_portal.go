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

// ClientPortalHandler serves the CLIENTE self-service surface. Every route
// operates on the caller's own client record, resolved from the token.
type ClientPortalHandler struct{ svc service.CustomerOrderService }

func NewClientPortalHandler(svc service.CustomerOrderService) *ClientPortalHandler {
	return &ClientPortalHandler{svc: svc}
}

func (h *ClientPortalHandler) Me(c *gin.Context) {
	resp, err := h.svc.Me(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientPortalHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateClientMeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateMe(c.Request.Context(), callerID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientPortalHandler) CreateOrder(c *gin.Context) {
	var req dto.CustomerOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.CreateOrder(c.Request.Context(), callerID(c), claims.Username, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ClientPortalHandler) MyOrders(c *gin.Context) {
	items, err := h.svc.MyOrders(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ClientPortalHandler) MyOrderDetail(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.MyOrderDetail(c.Request.Context(), callerID(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientPortalHandler) CancelOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.CancelOrder(c.Request.Context(), callerID(c), claims.Username, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientPortalHandler) Reorder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Reorder(c.Request.Context(), callerID(c), claims.Username, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func callerID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return id
}
