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

type PayrollHandler struct {
	svc   service.PayrollService
	goals service.SaleGoalService
}

func NewPayrollHandler(svc service.PayrollService, goals service.SaleGoalService) *PayrollHandler {
	return &PayrollHandler{svc: svc, goals: goals}
}

func (h *PayrollHandler) SaveConfig(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.SavePayrollConfigRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SaveConfig(c.Request.Context(), vendorID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PayrollHandler) GetConfig(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.GetConfig(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Calculate godoc
// @Summary Calcular nomina de un vendedor
// @Description Calcula y congela la nomina del mes. Recalcular sobreescribe la instantanea anterior.
// @Tags nomina
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param vendorId path string true "UUID del vendedor"
// @Param body body dto.CalculatePayrollRequest true "Periodo"
// @Success 200 {object} dto.PayrollResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/nomina/{vendorId}/calcular [post]
func (h *PayrollHandler) Calculate(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CalculatePayrollRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)
	resp, err := h.svc.Calculate(c.Request.Context(), vendorID, actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CalculateAll godoc
// @Summary Calcular nomina de todos los vendedores
// @Description Corre el calculo para cada vendedor configurado. El fallo de uno no detiene al resto.
// @Tags nomina
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CalculatePayrollRequest true "Periodo"
// @Success 200 {object} dto.BatchPayrollResult
// @Router /v1/nomina/calcular-todas [post]
func (h *PayrollHandler) CalculateAll(c *gin.Context) {
	var req dto.CalculatePayrollRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)
	resp, err := h.svc.CalculateAll(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PayrollHandler) Get(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	month := queryInt(c, "month", 0)
	year := queryInt(c, "year", 0)
	if month < 1 || month > 12 || year == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("month y year son obligatorios"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), vendorID, month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportPDF godoc
// @Summary Recibo de nomina en PDF
// @Description Genera el recibo de la nomina ya calculada del vendedor para el mes dado.
// @Tags nomina
// @Produce application/pdf
// @Security BearerAuth
// @Param vendorId path string true "UUID del vendedor"
// @Param month query int true "Mes (1-12)"
// @Param year query int true "Anio"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/nomina/{vendorId}/pdf [get]
func (h *PayrollHandler) ExportPDF(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	month := queryInt(c, "month", 0)
	year := queryInt(c, "year", 0)
	if month < 1 || month > 12 || year == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("month y year son obligatorios"))
		return
	}
	path, err := h.svc.ExportPDF(c.Request.Context(), vendorID, month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "nomina.pdf")
}

func (h *PayrollHandler) ListMonth(c *gin.Context) {
	month := queryInt(c, "month", 0)
	year := queryInt(c, "year", 0)
	if month < 1 || month > 12 || year == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("month y year son obligatorios"))
		return
	}
	resp, err := h.svc.ListMonth(c.Request.Context(), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateGoal godoc
// @Summary Crear meta de venta
// @Description Meta mensual por vendedor. Una meta del mes en curso arranca con lo ya vendido.
// @Tags nomina
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateSaleGoalRequest true "Meta"
// @Success 201 {object} dto.SaleGoalResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/metas [post]
func (h *PayrollHandler) CreateGoal(c *gin.Context) {
	var req dto.CreateSaleGoalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.goals.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PayrollHandler) GetGoal(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	month := queryInt(c, "month", 0)
	year := queryInt(c, "year", 0)
	if month < 1 || month > 12 || year == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("month y year son obligatorios"))
		return
	}
	resp, err := h.goals.Get(c.Request.Context(), vendorID, month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PayrollHandler) ListGoals(c *gin.Context) {
	month := queryInt(c, "month", 0)
	year := queryInt(c, "year", 0)
	if month < 1 || month > 12 || year == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("month y year son obligatorios"))
		return
	}
	resp, err := h.goals.ListMonth(c.Request.Context(), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
