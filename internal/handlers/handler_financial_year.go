package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type financialYearHandler struct {
	yearService portssvc.FinancialYearSvcFacade
}

func registerFinancialYearRoutes(rg *gin.RouterGroup, yearService portssvc.FinancialYearSvcFacade) {
	h := &financialYearHandler{yearService: yearService}

	years := rg.Group("/financial-years")
	{
		years.POST("", h.createYear)
		years.GET("", h.listYears)
		years.GET("/:id", h.getYear)
		years.POST("/:id/current", h.setCurrent)
		years.POST("/:id/lock", h.lockYear)
		years.POST("/:id/unlock", h.unlockYear)
	}
}

// createYear godoc
// @Summary Open a financial year
// @Description Years of a business may not overlap. The first year becomes current.
// @Tags financial-years
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   year body dto.CreateFinancialYearRequest true "Year details"
// @Success 201 {object} dto.FinancialYearResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid range or overlapping period"
// @Security CallerID
// @Router /businesses/{businessID}/financial-years [post]
func (h *financialYearHandler) createYear(c *gin.Context) {
	var req dto.CreateFinancialYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	year, err := h.yearService.CreateFinancialYear(c.Request.Context(), businessID(c), req, userID)
	if err != nil {
		respondError(c, err, "create financial year")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Financial year created", slog.Int64("year_id", year.ID))
	c.JSON(http.StatusCreated, dto.ToFinancialYearResponse(year))
}

// listYears godoc
// @Summary List financial years
// @Tags financial-years
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Success 200 {array} dto.FinancialYearResponse
// @Security CallerID
// @Router /businesses/{businessID}/financial-years [get]
func (h *financialYearHandler) listYears(c *gin.Context) {
	years, err := h.yearService.ListFinancialYears(c.Request.Context(), businessID(c))
	if err != nil {
		respondError(c, err, "list financial years")
		return
	}
	c.JSON(http.StatusOK, dto.ToListFinancialYearResponse(years))
}

// getYear godoc
// @Summary Get a financial year
// @Tags financial-years
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Year ID"
// @Success 200 {object} dto.FinancialYearResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/financial-years/{id} [get]
func (h *financialYearHandler) getYear(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	year, err := h.yearService.GetFinancialYear(c.Request.Context(), businessID(c), id)
	if err != nil {
		respondError(c, err, "retrieve financial year")
		return
	}
	c.JSON(http.StatusOK, dto.ToFinancialYearResponse(year))
}

// setCurrent godoc
// @Summary Make a financial year current
// @Tags financial-years
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Year ID"
// @Success 200 {object} dto.FinancialYearResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/financial-years/{id}/current [post]
func (h *financialYearHandler) setCurrent(c *gin.Context) {
	h.transition(c, "set current financial year", h.yearService.SetCurrentFinancialYear)
}

// lockYear godoc
// @Summary Lock a financial year
// @Description A locked year rejects postings, voids and draft edits dated inside it.
// @Tags financial-years
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Year ID"
// @Success 200 {object} dto.FinancialYearResponse
// @Failure 409 {object} dto.ErrorResponse "Already locked"
// @Security CallerID
// @Router /businesses/{businessID}/financial-years/{id}/lock [post]
func (h *financialYearHandler) lockYear(c *gin.Context) {
	h.transition(c, "lock financial year", h.yearService.LockFinancialYear)
}

// transition runs a year state change that takes no request body.
func (h *financialYearHandler) transition(c *gin.Context, action string,
	fn func(ctx context.Context, businessID, yearID int64, userID string) (*domain.FinancialYear, error)) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	year, err := fn(c.Request.Context(), businessID(c), id, userID)
	if err != nil {
		respondError(c, err, action)
		return
	}
	c.JSON(http.StatusOK, dto.ToFinancialYearResponse(year))
}

// unlockYear godoc
// @Summary Unlock a financial year
// @Description Requires {"confirm": true} in the body.
// @Tags financial-years
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Year ID"
// @Param   confirm body dto.UnlockFinancialYearRequest true "Confirmation"
// @Success 200 {object} dto.FinancialYearResponse
// @Failure 400 {object} dto.ErrorResponse "Confirmation required"
// @Failure 409 {object} dto.ErrorResponse "Not locked"
// @Security CallerID
// @Router /businesses/{businessID}/financial-years/{id}/unlock [post]
func (h *financialYearHandler) unlockYear(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.UnlockFinancialYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	year, err := h.yearService.UnlockFinancialYear(c.Request.Context(), businessID(c), id, req.Confirm, userID)
	if err != nil {
		respondError(c, err, "unlock financial year")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Financial year unlocked", slog.Int64("year_id", id))
	c.JSON(http.StatusOK, dto.ToFinancialYearResponse(year))
}
