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

// voucherHandler handles voucher types and the voucher lifecycle.
type voucherHandler struct {
	voucherService portssvc.VoucherSvcFacade
}

func newVoucherHandler(vs portssvc.VoucherSvcFacade) *voucherHandler {
	return &voucherHandler{voucherService: vs}
}

func registerVoucherRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade) {
	h := newVoucherHandler(voucherService)

	types := rg.Group("/voucher-types")
	{
		types.POST("", h.createVoucherType)
		types.GET("", h.listVoucherTypes)
	}

	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.createDraft)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:id", h.getVoucher)
		vouchers.PUT("/:id", h.updateDraft)
		vouchers.DELETE("/:id", h.deleteDraft)
		vouchers.POST("/:id/post", h.postVoucher)
		vouchers.POST("/:id/void", h.voidVoucher)
		vouchers.POST("/:id/duplicate", h.duplicateVoucher)
	}
}

// createVoucherType godoc
// @Summary Create a voucher type
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   voucherType body dto.CreateVoucherTypeRequest true "Voucher type details"
// @Success 201 {object} domain.VoucherType
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Name already used"
// @Security CallerID
// @Router /businesses/{businessID}/voucher-types [post]
func (h *voucherHandler) createVoucherType(c *gin.Context) {
	var req dto.CreateVoucherTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	vt, err := h.voucherService.CreateVoucherType(c.Request.Context(), businessID(c), req, userID)
	if err != nil {
		respondError(c, err, "create voucher type")
		return
	}
	c.JSON(http.StatusCreated, vt)
}

// listVoucherTypes godoc
// @Summary List voucher types
// @Tags vouchers
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Success 200 {array} domain.VoucherType
// @Security CallerID
// @Router /businesses/{businessID}/voucher-types [get]
func (h *voucherHandler) listVoucherTypes(c *gin.Context) {
	types, err := h.voucherService.ListVoucherTypes(c.Request.Context(), businessID(c))
	if err != nil {
		respondError(c, err, "list voucher types")
		return
	}
	c.JSON(http.StatusOK, types)
}

// createDraft godoc
// @Summary Create a draft voucher
// @Description Drafts are stored without balance checks and do not affect ledger balances.
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   voucher body dto.CreateVoucherRequest true "Voucher header and lines"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/vouchers [post]
func (h *voucherHandler) createDraft(c *gin.Context) {
	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	v, err := h.voucherService.CreateDraft(c.Request.Context(), businessID(c), req, userID)
	if err != nil {
		respondError(c, err, "create voucher")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Draft voucher created", slog.Int64("voucher_id", v.ID))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(v))
}

// listVouchers godoc
// @Summary List vouchers
// @Description Newest first, paged with nextToken.
// @Tags vouchers
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   status query string false "draft, posted or void"
// @Param   voucherTypeID query int false "Voucher type"
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Param   limit query int false "Page size (max 200)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListVouchersResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}
	res, err := h.voucherService.ListVouchers(c.Request.Context(), businessID(c), params)
	if err != nil {
		respondError(c, err, "list vouchers")
		return
	}
	c.JSON(http.StatusOK, res)
}

// getVoucher godoc
// @Summary Get a voucher with its lines
// @Tags vouchers
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/vouchers/{id} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	v, err := h.voucherService.GetVoucher(c.Request.Context(), businessID(c), id)
	if err != nil {
		respondError(c, err, "retrieve voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(v))
}

// updateDraft godoc
// @Summary Replace a draft voucher
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Voucher ID"
// @Param   voucher body dto.UpdateVoucherRequest true "Voucher header and lines"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Not a draft"
// @Security CallerID
// @Router /businesses/{businessID}/vouchers/{id} [put]
func (h *voucherHandler) updateDraft(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	v, err := h.voucherService.UpdateDraft(c.Request.Context(), businessID(c), id, req, userID)
	if err != nil {
		respondError(c, err, "update voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(v))
}

// deleteDraft godoc
// @Summary Delete a draft voucher
// @Tags vouchers
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Voucher ID"
// @Success 204
// @Failure 409 {object} dto.ErrorResponse "Not a draft"
// @Security CallerID
// @Router /businesses/{businessID}/vouchers/{id} [delete]
func (h *voucherHandler) deleteDraft(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.voucherService.DeleteDraft(c.Request.Context(), businessID(c), id, userID); err != nil {
		respondError(c, err, "delete voucher")
		return
	}
	c.Status(http.StatusNoContent)
}

// postVoucher godoc
// @Summary Post a draft voucher
// @Description Validates balance and dates, assigns the reference number and updates ledger balances atomically.
// @Tags vouchers
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} dto.ErrorResponse "Unbalanced voucher or date outside any financial year"
// @Failure 409 {object} dto.ErrorResponse "Not a draft or financial year locked"
// @Failure 503 {object} dto.ErrorResponse "Lock contention, retry"
// @Security CallerID
// @Router /businesses/{businessID}/vouchers/{id}/post [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	h.transition(c, "post voucher", h.voucherService.PostVoucher)
}

// voidVoucher godoc
// @Summary Void a posted voucher
// @Description Appends mirror lines and reverses the ledger balance changes.
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Voucher ID"
// @Param   void body dto.VoidVoucherRequest false "Reason"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} dto.ErrorResponse "Not posted or financial year locked"
// @Security CallerID
// @Router /businesses/{businessID}/vouchers/{id}/void [post]
func (h *voucherHandler) voidVoucher(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.VoidVoucherRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request format", err)
			return
		}
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	v, err := h.voucherService.VoidVoucher(c.Request.Context(), businessID(c), id, req.Reason, userID)
	if err != nil {
		respondError(c, err, "void voucher")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Voucher voided", slog.Int64("voucher_id", id))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(v))
}

// duplicateVoucher godoc
// @Summary Copy a voucher into a new draft
// @Tags vouchers
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Voucher ID"
// @Success 201 {object} dto.VoucherResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/vouchers/{id}/duplicate [post]
func (h *voucherHandler) duplicateVoucher(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	v, err := h.voucherService.DuplicateVoucher(c.Request.Context(), businessID(c), id, userID)
	if err != nil {
		respondError(c, err, "duplicate voucher")
		return
	}
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(v))
}

func (h *voucherHandler) transition(c *gin.Context, action string,
	fn func(ctx context.Context, businessID, voucherID int64, userID string) (*domain.Voucher, error)) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	v, err := fn(c.Request.Context(), businessID(c), id, userID)
	if err != nil {
		respondError(c, err, action)
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Voucher "+string(v.Status), slog.Int64("voucher_id", v.ID), slog.String("reference", v.ReferenceNumber))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(v))
}
