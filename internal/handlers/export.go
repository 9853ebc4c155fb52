// internal/handlers/export.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wrdrobe/wrdrobe-backend/internal/models"
	"github.com/wrdrobe/wrdrobe-backend/internal/services"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// POST /export/canvas
func (h *ExportHandler) ExportCanvas(c *gin.Context) {
	dataURI, err := h.exportService.RenderCanvas()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"imageDataUri": dataURI})
}

// POST /export/crop — rasterizes the canvas and crops to the given
// canvas-space rectangle. Drag direction does not matter; the rectangle
// is normalized first.
func (h *ExportHandler) ExportCrop(c *gin.Context) {
	var region models.Rect
	if err := c.ShouldBindJSON(&region); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	dataURI, err := h.exportService.RenderCrop(region)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCrop) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"imageDataUri": dataURI})
}

type compositeExportRequest struct {
	AspectRatio string `json:"aspectRatio" validate:"required,aspectratio"`
}

// POST /export/composite — flat-lay synthesis over whatever is on the
// canvas right now.
func (h *ExportHandler) ExportComposite(c *gin.Context) {
	var req compositeExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	dataURI, err := h.exportService.RenderComposite(c.Request.Context(), req.AspectRatio)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCanvas) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.BadGatewayResponse(c, "Could not generate the outfit image. Please try again.", err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"imageDataUri": dataURI})
}
