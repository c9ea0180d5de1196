package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests related to ledger accounts.
type ledgerHandler struct {
	ledgerService portssvc.LedgerAccountSvc
}

func newLedgerHandler(ls portssvc.LedgerAccountSvc) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerAccountSvc) {
	h := newLedgerHandler(ledgerService)

	ledgers := rg.Group("/ledgers")
	{
		ledgers.POST("", h.createLedger)
		ledgers.GET("", h.listLedgers)
		ledgers.GET("/:id", h.getLedger)
		ledgers.PUT("/:id", h.updateLedger)
		ledgers.DELETE("/:id", h.deleteLedger)
		ledgers.POST("/:id/restore", h.restoreLedger)
		ledgers.GET("/:id/balance", h.getBalance)
	}
}

// createLedger godoc
// @Summary Create a ledger account
// @Tags ledgers
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   ledger body dto.CreateLedgerAccountRequest true "Ledger details"
// @Success 201 {object} dto.LedgerAccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Group not found"
// @Security CallerID
// @Router /businesses/{businessID}/ledgers [post]
func (h *ledgerHandler) createLedger(c *gin.Context) {
	var req dto.CreateLedgerAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	ledger, err := h.ledgerService.CreateLedgerAccount(c.Request.Context(), businessID(c), req, userID)
	if err != nil {
		respondError(c, err, "create ledger account")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Ledger account created", slog.Int64("ledger_id", ledger.ID))
	c.JSON(http.StatusCreated, dto.ToLedgerAccountResponse(ledger))
}

// listLedgers godoc
// @Summary List ledger accounts
// @Tags ledgers
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   includeDeleted query bool false "Include soft deleted ledgers"
// @Success 200 {array} dto.LedgerAccountResponse
// @Security CallerID
// @Router /businesses/{businessID}/ledgers [get]
func (h *ledgerHandler) listLedgers(c *gin.Context) {
	includeDeleted := false
	if raw := c.Query("includeDeleted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid includeDeleted", err)
			return
		}
		includeDeleted = v
	}
	ledgers, err := h.ledgerService.ListLedgerAccounts(c.Request.Context(), businessID(c), includeDeleted)
	if err != nil {
		respondError(c, err, "list ledger accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListLedgerAccountResponse(ledgers))
}

// getLedger godoc
// @Summary Get a ledger account
// @Tags ledgers
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Ledger ID"
// @Success 200 {object} dto.LedgerAccountResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/ledgers/{id} [get]
func (h *ledgerHandler) getLedger(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	ledger, err := h.ledgerService.GetLedgerAccount(c.Request.Context(), businessID(c), id)
	if err != nil {
		respondError(c, err, "retrieve ledger account")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerAccountResponse(ledger))
}

// updateLedger godoc
// @Summary Update a ledger account
// @Description Moving a ledger to a group of another nature flips the sign of its balances.
// @Tags ledgers
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Ledger ID"
// @Param   ledger body dto.UpdateLedgerAccountRequest true "Fields to change"
// @Success 200 {object} dto.LedgerAccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/ledgers/{id} [put]
func (h *ledgerHandler) updateLedger(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLedgerAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	ledger, err := h.ledgerService.UpdateLedgerAccount(c.Request.Context(), businessID(c), id, req, userID)
	if err != nil {
		respondError(c, err, "update ledger account")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerAccountResponse(ledger))
}

// deleteLedger godoc
// @Summary Soft delete a ledger account
// @Tags ledgers
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Ledger ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/ledgers/{id} [delete]
func (h *ledgerHandler) deleteLedger(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.ledgerService.DeleteLedgerAccount(c.Request.Context(), businessID(c), id, userID); err != nil {
		respondError(c, err, "delete ledger account")
		return
	}
	c.Status(http.StatusNoContent)
}

// restoreLedger godoc
// @Summary Restore a soft deleted ledger account
// @Tags ledgers
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Ledger ID"
// @Success 200 {object} dto.LedgerAccountResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Ledger is not deleted"
// @Security CallerID
// @Router /businesses/{businessID}/ledgers/{id}/restore [post]
func (h *ledgerHandler) restoreLedger(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	ledger, err := h.ledgerService.RestoreLedgerAccount(c.Request.Context(), businessID(c), id, userID)
	if err != nil {
		respondError(c, err, "restore ledger account")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerAccountResponse(ledger))
}

// getBalance godoc
// @Summary Get a ledger balance as of a date
// @Description Opening balance plus every posted line dated on or before asOf.
// @Tags ledgers
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Ledger ID"
// @Param   asOf query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/ledgers/{id}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	asOf, ok := dateQuery(c, "asOf")
	if !ok {
		return
	}
	balance, err := h.ledgerService.BalanceAsOf(c.Request.Context(), businessID(c), id, asOf)
	if err != nil {
		respondError(c, err, "calculate ledger balance")
		return
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{LedgerAccountID: id, AsOf: dto.NewDate(asOf), Balance: balance})
}
