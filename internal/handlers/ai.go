// internal/handlers/ai.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wrdrobe/wrdrobe-backend/internal/services"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

// AIHandler fronts the generative flows. Failures from the upstream
// model surface as 502 so the client can tell "model said no" apart
// from "you asked wrong".
type AIHandler struct {
	aiService *services.AIService
}

func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// POST /ai/items/:id/remove-background
func (h *AIHandler) RemoveBackground(c *gin.Context) {
	item, err := h.aiService.RemoveBackground(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeMaskError(c, err, "Could not remove the background. Please try again.")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": "Background removed for " + item.Name + ".",
		"item":    item,
	})
}

// POST /ai/items/:id/cutout
func (h *AIHandler) CreateCutout(c *gin.Context) {
	item, err := h.aiService.CreateCutout(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeMaskError(c, err, "Could not create the cutout. Please try again.")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": "Cutout created for " + item.Name + ".",
		"item":    item,
	})
}

// POST /ai/items/:id/refine-mask
func (h *AIHandler) RefineMask(c *gin.Context) {
	item, err := h.aiService.RefineMask(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeMaskError(c, err, "Could not refine the mask. Please try again.")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": "Mask refined for " + item.Name + ".",
		"item":    item,
	})
}

func (h *AIHandler) writeMaskError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrOperationInFlight):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.BadGatewayResponse(c, message, err.Error())
	}
}

type compositeRequest struct {
	Items       []services.CompositeItem `json:"items" validate:"required,min=1,dive"`
	AspectRatio string                   `json:"aspectRatio" validate:"required,aspectratio"`
}

// POST /ai/composite — synthesizes a flat-lay from the given photos. The
// result goes back to the caller only; nothing in the catalog changes.
func (h *AIHandler) GenerateComposite(c *gin.Context) {
	var req compositeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	dataURI, err := h.aiService.GenerateOutfitComposite(c.Request.Context(), req.Items, req.AspectRatio)
	if err != nil {
		utils.BadGatewayResponse(c, "Could not generate the outfit image. Please try again.", err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"imageDataUri": dataURI})
}

// POST /ai/suggest-outfits
func (h *AIHandler) SuggestOutfits(c *gin.Context) {
	suggestions, err := h.aiService.SuggestOutfits(c.Request.Context())
	if err != nil {
		utils.BadGatewayResponse(c, "Could not suggest outfits. Please try again.", err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"suggestions": suggestions})
}
