package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountGroupHandler handles the group hierarchy of a chart of accounts.
type accountGroupHandler struct {
	chartService portssvc.AccountGroupSvc
}

func newAccountGroupHandler(cs portssvc.AccountGroupSvc) *accountGroupHandler {
	return &accountGroupHandler{chartService: cs}
}

// registerAccountGroupRoutes registers chart seeding and group routes.
func registerAccountGroupRoutes(rg *gin.RouterGroup, chartService portssvc.AccountGroupSvc) {
	h := newAccountGroupHandler(chartService)

	rg.POST("/chart/seed", h.seedChart)
	groups := rg.Group("/groups")
	{
		groups.POST("", h.createGroup)
		groups.GET("/tree", h.getTree)
		groups.GET("/:id", h.getGroup)
		groups.PUT("/:id", h.updateGroup)
		groups.DELETE("/:id", h.deleteGroup)
	}
}

// seedChart godoc
// @Summary Seed the default chart of accounts
// @Description Creates the system groups and voucher types. Running it again leaves existing ones untouched.
// @Tags chart
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Success 200 {array} dto.AccountGroupResponse
// @Security CallerID
// @Router /businesses/{businessID}/chart/seed [post]
func (h *accountGroupHandler) seedChart(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	groups, err := h.chartService.SeedDefaultChart(c.Request.Context(), businessID(c), userID)
	if err != nil {
		respondError(c, err, "seed chart of accounts")
		return
	}
	res := make([]dto.AccountGroupResponse, len(groups))
	for i := range groups {
		res[i] = dto.ToAccountGroupResponse(&groups[i])
	}
	c.JSON(http.StatusOK, res)
}

// createGroup godoc
// @Summary Create an account group
// @Description A child group inherits its parent's nature unless one is given.
// @Tags chart
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   group body dto.CreateAccountGroupRequest true "Group details"
// @Success 201 {object} dto.AccountGroupResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Parent not found"
// @Security CallerID
// @Router /businesses/{businessID}/groups [post]
func (h *accountGroupHandler) createGroup(c *gin.Context) {
	var req dto.CreateAccountGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	group, err := h.chartService.CreateGroup(c.Request.Context(), businessID(c), req, userID)
	if err != nil {
		respondError(c, err, "create account group")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account group created", slog.Int64("group_id", group.ID))
	c.JSON(http.StatusCreated, dto.ToAccountGroupResponse(group))
}

// getTree godoc
// @Summary Get the group hierarchy
// @Tags chart
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Success 200 {array} dto.GroupTreeNode
// @Security CallerID
// @Router /businesses/{businessID}/groups/tree [get]
func (h *accountGroupHandler) getTree(c *gin.Context) {
	tree, err := h.chartService.GetGroupTree(c.Request.Context(), businessID(c))
	if err != nil {
		respondError(c, err, "load group tree")
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupTreeResponse(tree))
}

// getGroup godoc
// @Summary Get an account group
// @Tags chart
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Group ID"
// @Success 200 {object} dto.AccountGroupResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/groups/{id} [get]
func (h *accountGroupHandler) getGroup(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	group, err := h.chartService.GetGroup(c.Request.Context(), businessID(c), id)
	if err != nil {
		respondError(c, err, "retrieve account group")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountGroupResponse(group))
}

// updateGroup godoc
// @Summary Update an account group
// @Description Renames, reorders or moves a group. Moves that create a cycle are rejected.
// @Tags chart
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Group ID"
// @Param   group body dto.UpdateAccountGroupRequest true "Fields to change"
// @Success 200 {object} dto.AccountGroupResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/groups/{id} [put]
func (h *accountGroupHandler) updateGroup(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateAccountGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	group, err := h.chartService.UpdateGroup(c.Request.Context(), businessID(c), id, req, userID)
	if err != nil {
		respondError(c, err, "update account group")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountGroupResponse(group))
}

// deleteGroup godoc
// @Summary Delete an empty account group
// @Tags chart
// @Param   businessID path int true "Business ID"
// @Param   id path int true "Group ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "System group or group not empty"
// @Failure 404 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/groups/{id} [delete]
func (h *accountGroupHandler) deleteGroup(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.chartService.DeleteGroup(c.Request.Context(), businessID(c), id, userID); err != nil {
		respondError(c, err, "delete account group")
		return
	}
	c.Status(http.StatusNoContent)
}
