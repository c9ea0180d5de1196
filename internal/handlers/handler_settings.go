package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type settingsHandler struct {
	settingsService portssvc.SettingsSvcFacade
}

func registerSettingsRoutes(rg *gin.RouterGroup, settingsService portssvc.SettingsSvcFacade) {
	h := &settingsHandler{settingsService: settingsService}
	rg.GET("/settings", h.getSettings)
	rg.PUT("/settings", h.updateSettings)
}

// getSettings godoc
// @Summary Get business settings
// @Description Returns the stored settings or the configured defaults.
// @Tags settings
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Success 200 {object} domain.BusinessSettings
// @Security CallerID
// @Router /businesses/{businessID}/settings [get]
func (h *settingsHandler) getSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context(), businessID(c))
	if err != nil {
		respondError(c, err, "load settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// updateSettings godoc
// @Summary Update business settings
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   businessID path int true "Business ID"
// @Param   settings body dto.UpdateSettingsRequest true "Settings to change"
// @Success 200 {object} domain.BusinessSettings
// @Failure 400 {object} dto.ErrorResponse
// @Security CallerID
// @Router /businesses/{businessID}/settings [put]
func (h *settingsHandler) updateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), businessID(c), req, userID)
	if err != nil {
		respondError(c, err, "update settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}
