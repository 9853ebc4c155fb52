// internal/handlers/settings.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wrdrobe/wrdrobe-backend/internal/services"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GET /settings/theme
func (h *SettingsHandler) GetTheme(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"theme": h.settingsService.Theme()})
}

type setThemeRequest struct {
	Theme *int `json:"theme" validate:"required,min=0,max=100"`
}

// PUT /settings/theme
func (h *SettingsHandler) SetTheme(c *gin.Context) {
	var req setThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.settingsService.SetTheme(*req.Theme); err != nil {
		if errors.Is(err, services.ErrThemeOutOfRange) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"theme": h.settingsService.Theme()})
}
