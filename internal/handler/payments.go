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

type PaymentsHandler struct{ svc service.PaymentService }

func NewPaymentsHandler(svc service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

// Register godoc
// @Summary Registrar pago
// @Description Registra un pago contra una orden completada. Se admite sobrepago.
// @Tags pagos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la orden"
// @Param body body dto.RegisterPaymentRequest true "Pago"
// @Success 201 {object} dto.PaymentResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes/{id}/pagos [post]
func (h *PaymentsHandler) Register(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RegisterPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)
	resp, err := h.svc.Register(c.Request.Context(), orderID, actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cancel godoc
// @Summary Cancelar pago
// @Description Anula un pago con motivo obligatorio y recalcula el estado de pago de la orden.
// @Tags pagos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param paymentId path string true "UUID del pago"
// @Param body body dto.CancelPaymentRequest true "Motivo"
// @Success 200 {object} dto.PaymentResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/pagos/{paymentId}/cancelar [post]
func (h *PaymentsHandler) Cancel(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CancelPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)
	resp, err := h.svc.Cancel(c.Request.Context(), paymentID, actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Restore godoc
// @Summary Restaurar pago cancelado
// @Description Revierte la cancelacion de un pago y recalcula el estado de pago de la orden.
// @Tags pagos
// @Produce json
// @Security BearerAuth
// @Param paymentId path string true "UUID del pago"
// @Success 200 {object} dto.PaymentResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/pagos/{paymentId}/restaurar [post]
func (h *PaymentsHandler) Restore(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Restore(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentsHandler) ListByOrder(c *gin.Context) {
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

// Balance godoc
// @Summary Saldo de una orden
// @Description Total efectivo, pagado y pendiente. Pendiente negativo indica sobrepago.
// @Tags pagos
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la orden"
// @Success 200 {object} dto.OrderBalanceResponse
// @Router /v1/ordenes/{id}/saldo [get]
func (h *PaymentsHandler) Balance(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Balance(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateTransfer godoc
// @Summary Transferir credito de un pago
// @Description Reasigna parte del credito de un pago a la nomina de otro vendedor. Las transferencias activas nunca superan el monto del pago.
// @Tags pagos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param paymentId path string true "UUID del pago"
// @Param body body dto.CreateTransferRequest true "Transferencia"
// @Success 201 {object} dto.TransferResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/pagos/{paymentId}/transferencias [post]
func (h *PaymentsHandler) CreateTransfer(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CreateTransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)
	resp, err := h.svc.CreateTransfer(c.Request.Context(), paymentID, actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PaymentsHandler) RevokeTransfer(c *gin.Context) {
	transferID, err := uuid.Parse(c.Param("transferId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RevokeTransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)
	resp, err := h.svc.RevokeTransfer(c.Request.Context(), transferID, actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentsHandler) TransferAvailability(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.TransferAvailability(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentsHandler) ListTransfers(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ListTransfersByPayment(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
