// internal/handlers/wardrobe.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wrdrobe/wrdrobe-backend/internal/services"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

type WardrobeHandler struct {
	wardrobeService *services.WardrobeService
}

func NewWardrobeHandler(wardrobeService *services.WardrobeService) *WardrobeHandler {
	return &WardrobeHandler{wardrobeService: wardrobeService}
}

// GET /wardrobe
func (h *WardrobeHandler) GetWardrobe(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"items": h.wardrobeService.List(),
	})
}

// POST /wardrobe
func (h *WardrobeHandler) AddItem(c *gin.Context) {
	var req services.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	item, err := h.wardrobeService.Add(&req)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": item.Name + " has been added to your wardrobe.",
		"item":    item,
	})
}

// PUT /wardrobe/:id
func (h *WardrobeHandler) UpdateItem(c *gin.Context) {
	var req services.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	item, err := h.wardrobeService.Update(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			utils.NotFoundResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": item.Name + " has been updated successfully.",
		"item":    item,
	})
}

// DELETE /wardrobe/:id
func (h *WardrobeHandler) DeleteItem(c *gin.Context) {
	if err := h.wardrobeService.Delete(c.Param("id")); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			utils.NotFoundResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "The item has been removed from your wardrobe and canvas.",
	})
}

// POST /wardrobe/:id/revert
func (h *WardrobeHandler) RevertItem(c *gin.Context) {
	item, err := h.wardrobeService.Revert(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			utils.NotFoundResponse(c, err.Error())
		case errors.Is(err, services.ErrNoRevert):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Original photo restored.",
		"item":    item,
	})
}

type photoFromURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// POST /wardrobe/photo-from-url
func (h *WardrobeHandler) PhotoFromURL(c *gin.Context) {
	var req photoFromURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	dataURI, err := utils.DataURIFromURL(c.Request.Context(), req.URL)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"photoDataUri": dataURI,
	})
}

// GET /categories
func (h *WardrobeHandler) GetCategories(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"categories": h.wardrobeService.Categories(),
	})
}

type addCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// POST /categories
func (h *WardrobeHandler) AddCategory(c *gin.Context) {
	var req addCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.wardrobeService.AddCategory(req.Name); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"categories": h.wardrobeService.Categories(),
	})
}
