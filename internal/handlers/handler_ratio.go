package handlers

import (
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type ratioHandler struct {
	ratioService portssvc.RatioSvcFacade
}

func registerRatioRoutes(rg *gin.RouterGroup, ratioService portssvc.RatioSvcFacade) {
	h := &ratioHandler{ratioService: ratioService}

	ratios := rg.Group("/ratios")
	{
		ratios.POST("", h.calculate)
		ratios.GET("", h.list)
		ratios.GET("/:id", h.get)
		ratios.POST("/:id/recalculate", h.recalculate)
		ratios.DELETE("/:id", h.delete)
	}
}

// calculate godoc
// @Summary Calculate a ratio snapshot
// @Description Ratios whose denominator is zero are returned as null.
// @Tags ratios
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   ratio body dto.CreateRatioRequest true "Year and date"
// @Success 201 {object} dto.RatioResponse
// @Failure 400 {object} dto.ErrorResponse "Date outside year or snapshot exists"
// @Failure 404 {object} dto.ErrorResponse "Year not found"
// @Failure 503 {object} dto.ErrorResponse "Calculation already running"
// @Security CallerID
// @Router /businesses/{businessID}/ratios [post]
func (h *ratioHandler) calculate(c *gin.Context) {
	var req dto.CreateRatioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	if req.CalculationDate.IsZero() {
		badRequest(c, "calculationDate is required", nil)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	r, err := h.ratioService.CalculateRatios(c.Request.Context(), businessID(c), req.FinancialYearID, req.CalculationDate.Time, userID)
	if err != nil {
		respondError(c, err, "calculate ratios")
		return
	}
	c.JSON(http.StatusCreated, dto.ToRatioResponse(r))
}

// list godoc
// @Summary List ratio snapshots
// @Tags ratios
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   financialYearID query int false "Restrict to a year"
// @Success 200 {array} dto.RatioResponse
// @Security CallerID
// @Router /businesses/{businessID}/ratios [get]
func (h *ratioHandler) list(c *gin.Context) {
	var yearID *int64
	if raw := c.Query("financialYearID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid financialYearID", err)
			return
		}
		yearID = &id
	}
	ratios, err := h.ratioService.ListRatios(c.Request.Context(), businessID(c), yearID)
	if err != nil {
		respondError(c, err, "list ratios")
		return
	}
	res := make([]dto.RatioResponse, len(ratios))
	for i := range ratios {
		res[i] = dto.ToRatioResponse(&ratios[i])
	}
	c.JSON(http.StatusOK, res)
}

// get godoc
// @Summary Get a ratio snapshot
// @Tags ratios
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Snapshot ID"
// @Success 200 {object} dto.RatioResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/ratios/{id} [get]
func (h *ratioHandler) get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	r, err := h.ratioService.GetRatios(c.Request.Context(), businessID(c), id)
	if err != nil {
		respondError(c, err, "retrieve ratios")
		return
	}
	c.JSON(http.StatusOK, dto.ToRatioResponse(r))
}

// recalculate godoc
// @Summary Recalculate a ratio snapshot in place
// @Tags ratios
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Snapshot ID"
// @Success 200 {object} dto.RatioResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/ratios/{id}/recalculate [post]
func (h *ratioHandler) recalculate(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	r, err := h.ratioService.RecalculateRatios(c.Request.Context(), businessID(c), id, userID)
	if err != nil {
		respondError(c, err, "recalculate ratios")
		return
	}
	c.JSON(http.StatusOK, dto.ToRatioResponse(r))
}

// delete godoc
// @Summary Delete a ratio snapshot
// @Tags ratios
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Snapshot ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/ratios/{id} [delete]
func (h *ratioHandler) delete(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.ratioService.DeleteRatios(c.Request.Context(), businessID(c), id, userID); err != nil {
		respondError(c, err, "delete ratios")
		return
	}
	c.Status(http.StatusNoContent)
}
