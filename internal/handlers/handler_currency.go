package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

func newCurrencyHandler(cs portssvc.CurrencySvcFacade) *currencyHandler {
	return &currencyHandler{currencyService: cs}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade) {
	h := newCurrencyHandler(currencyService)

	currencies := rg.Group("/currencies")
	{
		currencies.POST("", h.createCurrency)
		currencies.GET("", h.listCurrencies)
		currencies.GET("/convert", h.convert)
		currencies.GET("/:code", h.getCurrencyByCode)
		currencies.PUT("/:code", h.updateCurrency)
		currencies.DELETE("/:code", h.deleteCurrency)
		currencies.POST("/:code/default", h.setDefault)
	}
}

// createCurrency godoc
// @Summary Create a new currency
// @Description Adds a currency. The first currency becomes the default with rate 1.
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   currency body dto.CreateCurrencyRequest true "Currency details"
// @Success 201 {object} dto.CurrencyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Currency code already exists"
// @Security CallerID
// @Router /currencies [post]
func (h *currencyHandler) createCurrency(c *gin.Context) {
	var req dto.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	created, err := h.currencyService.CreateCurrency(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "create currency")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Currency created successfully", slog.String("currency_code", created.Code))
	c.JSON(http.StatusCreated, dto.ToCurrencyResponse(created))
}

// getCurrencyByCode godoc
// @Summary Get a currency by code
// @Tags currencies
// @Produce  json
// @Param   code path string true "Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Success 200 {object} dto.CurrencyResponse
// @Failure 404 {object} dto.ErrorResponse "Currency not found"
// @Security CallerID
// @Router /currencies/{code} [get]
func (h *currencyHandler) getCurrencyByCode(c *gin.Context) {
	currency, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "retrieve currency")
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}

// listCurrencies godoc
// @Summary List all currencies
// @Tags currencies
// @Produce  json
// @Success 200 {array} dto.CurrencyResponse
// @Security CallerID
// @Router /currencies [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, err, "list currencies")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCurrencyResponse(currencies))
}

// updateCurrency godoc
// @Summary Update a currency
// @Description Changes the name, symbol or exchange rate. The default currency keeps rate 1.
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   code path string true "Currency Code"
// @Param   currency body dto.UpdateCurrencyRequest true "Fields to change"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /currencies/{code} [put]
func (h *currencyHandler) updateCurrency(c *gin.Context) {
	var req dto.UpdateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	updated, err := h.currencyService.UpdateCurrency(c.Request.Context(), c.Param("code"), req, userID)
	if err != nil {
		respondError(c, err, "update currency")
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(updated))
}

// deleteCurrency godoc
// @Summary Delete a currency
// @Description The default currency and currencies used by vouchers cannot be deleted.
// @Tags currencies
// @Param   code path string true "Currency Code"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "Default currency"
// @Failure 409 {object} dto.ErrorResponse "Currency in use"
// @Security CallerID
// @Router /currencies/{code} [delete]
func (h *currencyHandler) deleteCurrency(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.currencyService.DeleteCurrency(c.Request.Context(), c.Param("code"), userID); err != nil {
		respondError(c, err, "delete currency")
		return
	}
	c.Status(http.StatusNoContent)
}

// setDefault godoc
// @Summary Make a currency the default
// @Description Rebases every other exchange rate onto the new default.
// @Tags currencies
// @Produce  json
// @Param   code path string true "Currency Code"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /currencies/{code}/default [post]
func (h *currencyHandler) setDefault(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	currency, err := h.currencyService.SetDefaultCurrency(c.Request.Context(), c.Param("code"), userID)
	if err != nil {
		respondError(c, err, "set default currency")
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}

// convert godoc
// @Summary Convert an amount between currencies
// @Tags currencies
// @Produce  json
// @Param   from query string true "Source currency"
// @Param   to query string true "Target currency"
// @Param   amount query string true "Amount"
// @Success 200 {object} dto.ConvertCurrencyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown currency"
// @Security CallerID
// @Router /currencies/convert [get]
func (h *currencyHandler) convert(c *gin.Context) {
	from, to := strings.ToUpper(c.Query("from")), strings.ToUpper(c.Query("to"))
	if from == "" || to == "" {
		badRequest(c, "from and to are required", nil)
		return
	}
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		badRequest(c, "invalid amount", err)
		return
	}
	result, err := h.currencyService.ConvertAmount(c.Request.Context(), amount, from, to)
	if err != nil {
		respondError(c, err, "convert amount")
		return
	}
	c.JSON(http.StatusOK, dto.ConvertCurrencyResponse{From: from, To: to, Amount: amount, Result: result})
}
