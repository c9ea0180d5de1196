package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler serves read-only views over posted data.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := &reportingHandler{reportingService: reportingService}
	rg.GET("/trial-balance", h.trialBalance)
	rg.GET("/verify-balances", h.verifyBalances)
}

// trialBalance godoc
// @Summary Trial balance
// @Description Every ledger balance as of a date rolled up the group tree. Only posted vouchers count.
// @Tags reports
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   asOf query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.TrialBalance
// @Failure 400 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/trial-balance [get]
func (h *reportingHandler) trialBalance(c *gin.Context) {
	asOf, ok := dateQuery(c, "asOf")
	if !ok {
		return
	}
	tb, err := h.reportingService.TrialBalance(c.Request.Context(), businessID(c), asOf)
	if err != nil {
		respondError(c, err, "build trial balance")
		return
	}
	c.JSON(http.StatusOK, tb)
}

// verifyBalances godoc
// @Summary Verify stored ledger balances
// @Description Recomputes each balance from its journal lines and lists the ledgers that differ.
// @Tags reports
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Success 200 {array} domain.BalanceDiscrepancy
// @Security CallerID
// @Router /businesses/{businessID}/verify-balances [get]
func (h *reportingHandler) verifyBalances(c *gin.Context) {
	discrepancies, err := h.reportingService.VerifyBalances(c.Request.Context(), businessID(c))
	if err != nil {
		respondError(c, err, "verify balances")
		return
	}
	if len(discrepancies) > 0 {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Ledger balances disagree with journal lines", slog.Int("ledgers", len(discrepancies)))
	}
	c.JSON(http.StatusOK, discrepancies)
}
