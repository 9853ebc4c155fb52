// internal/handlers/outfit.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wrdrobe/wrdrobe-backend/internal/services"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

type OutfitHandler struct {
	outfitService *services.OutfitService
}

func NewOutfitHandler(outfitService *services.OutfitService) *OutfitHandler {
	return &OutfitHandler{outfitService: outfitService}
}

// GET /outfits
func (h *OutfitHandler) GetOutfits(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"outfits": h.outfitService.List(),
	})
}

type saveOutfitRequest struct {
	Name        string `json:"name" validate:"required"`
	OverwriteID string `json:"overwriteId"`
}

// POST /outfits — snapshots the current canvas. An overwriteId replaces
// that outfit in place; otherwise a new one joins the top of the gallery.
func (h *OutfitHandler) SaveOutfit(c *gin.Context) {
	var req saveOutfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	outfit, err := h.outfitService.Save(req.Name, req.OverwriteID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCanvas), errors.Is(err, services.ErrNameRequired):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Your outfit \"" + outfit.Name + "\" has been saved.",
		"outfit":  outfit,
	})
}

// POST /outfits/:id/load
func (h *OutfitHandler) LoadOutfit(c *gin.Context) {
	items, err := h.outfitService.Load(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"items": items})
}

type renameOutfitRequest struct {
	Name string `json:"name" validate:"required"`
}

// PUT /outfits/:id
func (h *OutfitHandler) RenameOutfit(c *gin.Context) {
	var req renameOutfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	outfit, err := h.outfitService.Rename(c.Param("id"), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOutfitNotFound):
			utils.NotFoundResponse(c, err.Error())
		case errors.Is(err, services.ErrNameRequired):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}
	utils.SuccessResponse(c, gin.H{"outfit": outfit})
}

// DELETE /outfits/:id
func (h *OutfitHandler) DeleteOutfit(c *gin.Context) {
	if err := h.outfitService.Delete(c.Param("id")); err != nil {
		if errors.Is(err, services.ErrOutfitNotFound) {
			utils.NotFoundResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "Outfit deleted."})
}
