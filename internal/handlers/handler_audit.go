package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	auditService portssvc.AuditQuerySvc
}

// registerAuditRoutes mounts the audit log on rg. When scoped is set the
// listing is restricted to the business in the path.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditQuerySvc, scoped bool) {
	h := &auditHandler{auditService: auditService}
	if scoped {
		rg.GET("/audit-logs", h.listBusiness)
	} else {
		rg.GET("/audit-logs", h.listAll)
	}
}

// listBusiness godoc
// @Summary List a business's audit log
// @Description Newest first, paged with nextToken.
// @Tags audit
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   causerID query string false "Caller who made the change"
// @Param   subjectType query string false "currency, account_group, ledger_account, financial_year, voucher_type, voucher, financial_ratio or business_settings"
// @Param   subjectID query string false "Subject id"
// @Param   event query string false "create, update, delete or restore"
// @Param   from query string false "From (YYYY-MM-DD or RFC 3339)"
// @Param   to query string false "To (YYYY-MM-DD or RFC 3339)"
// @Param   limit query int false "Page size (max 200)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListAuditLogsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/audit-logs [get]
func (h *auditHandler) listBusiness(c *gin.Context) {
	id := businessID(c)
	h.list(c, &id)
}

// listAll godoc
// @Summary List the audit log across businesses
// @Description Includes changes to shared records such as currencies.
// @Tags audit
// @Produce  json
// @Param   causerID query string false "Caller who made the change"
// @Param   subjectType query string false "Subject type"
// @Param   subjectID query string false "Subject id"
// @Param   event query string false "create, update, delete or restore"
// @Param   from query string false "From (YYYY-MM-DD or RFC 3339)"
// @Param   to query string false "To (YYYY-MM-DD or RFC 3339)"
// @Param   limit query int false "Page size (max 200)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListAuditLogsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security CallerID
// @Router /audit-logs [get]
func (h *auditHandler) listAll(c *gin.Context) {
	h.list(c, nil)
}

func (h *auditHandler) list(c *gin.Context, business *int64) {
	var params dto.ListAuditLogsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}
	res, err := h.auditService.ListAuditLogs(c.Request.Context(), business, params)
	if err != nil {
		respondError(c, err, "list audit logs")
		return
	}
	c.JSON(http.StatusOK, res)
}
