// internal/handlers/canvas.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wrdrobe/wrdrobe-backend/internal/models"
	"github.com/wrdrobe/wrdrobe-backend/internal/services"
	"github.com/wrdrobe/wrdrobe-backend/internal/utils"
)

type CanvasHandler struct {
	canvasService   *services.CanvasService
	wardrobeService *services.WardrobeService
}

func NewCanvasHandler(canvasService *services.CanvasService, wardrobeService *services.WardrobeService) *CanvasHandler {
	return &CanvasHandler{
		canvasService:   canvasService,
		wardrobeService: wardrobeService,
	}
}

// GET /canvas
func (h *CanvasHandler) GetCanvas(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"items":           h.canvasService.Items(),
		"selection":       h.canvasService.Selection(),
		"keepLayersOrder": h.canvasService.KeepLayerOrder(),
	})
}

type placeItemRequest struct {
	ItemID string  `json:"itemId" validate:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// POST /canvas/items
func (h *CanvasHandler) PlaceItem(c *gin.Context) {
	var req placeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	item, err := h.wardrobeService.Get(req.ItemID)
	if err != nil {
		utils.NotFoundResponse(c, err.Error())
		return
	}

	placed := h.canvasService.Place(item, req.X, req.Y)
	utils.CreatedResponse(c, gin.H{
		"item": placed,
	})
}

// DELETE /canvas/items/:instanceId
func (h *CanvasHandler) RemoveItem(c *gin.Context) {
	if err := h.canvasService.Remove(c.Param("instanceId")); err != nil {
		utils.NotFoundResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "Item removed from canvas."})
}

// DELETE /canvas
func (h *CanvasHandler) ClearCanvas(c *gin.Context) {
	h.canvasService.RemoveAll()
	utils.SuccessResponse(c, gin.H{"message": "Canvas cleared."})
}

type moveRequest struct {
	InstanceIDs []string `json:"instanceIds"`
	DX          float64  `json:"dx"`
	DY          float64  `json:"dy"`
}

// POST /canvas/move — translates the listed placements (or the current
// selection when the list is empty) by one shared delta.
func (h *CanvasHandler) MoveItems(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.canvasService.Move(req.InstanceIDs, req.DX, req.DY); err != nil {
		utils.NotFoundResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"items": h.canvasService.Items()})
}

type resizeRequest struct {
	Width  float64 `json:"width" validate:"required,gt=0"`
	Height float64 `json:"height" validate:"required,gt=0"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// POST /canvas/items/:instanceId/resize
func (h *CanvasHandler) ResizeItem(c *gin.Context) {
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	item, err := h.canvasService.Resize(c.Param("instanceId"), req.Width, req.Height, req.X, req.Y)
	if err != nil {
		utils.NotFoundResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"item": item})
}

// POST /canvas/items/:instanceId/front
func (h *CanvasHandler) BringToFront(c *gin.Context) {
	if err := h.canvasService.BringToFront(c.Param("instanceId")); err != nil {
		utils.NotFoundResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"items": h.canvasService.Items()})
}

// POST /canvas/items/:instanceId/back
func (h *CanvasHandler) SendToBack(c *gin.Context) {
	if err := h.canvasService.SendToBack(c.Param("instanceId")); err != nil {
		utils.NotFoundResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"items": h.canvasService.Items()})
}

type reorderRequest struct {
	InstanceIDs []string `json:"instanceIds" validate:"required,min=1"`
}

// POST /canvas/reorder — front-to-back ordering from the layers panel.
func (h *CanvasHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.canvasService.Reorder(req.InstanceIDs); err != nil {
		if errors.Is(err, services.ErrBadReorder) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.NotFoundResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"items": h.canvasService.Items()})
}

type selectRequest struct {
	InstanceID string `json:"instanceId" validate:"required"`
	Additive   bool   `json:"additive"`
}

// POST /canvas/select — pointer-down selection; additive mirrors a held
// shift key.
func (h *CanvasHandler) SelectItem(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.canvasService.Select(req.InstanceID, req.Additive); err != nil {
		utils.NotFoundResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"selection": h.canvasService.Selection()})
}

// POST /canvas/marquee
func (h *CanvasHandler) MarqueeSelect(c *gin.Context) {
	var req models.Rect
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	selection := h.canvasService.MarqueeSelect(req)
	utils.SuccessResponse(c, gin.H{"selection": selection})
}

// GET /canvas/selection
func (h *CanvasHandler) GetSelection(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"selection": h.canvasService.Selection()})
}

// DELETE /canvas/selection
func (h *CanvasHandler) ClearSelection(c *gin.Context) {
	h.canvasService.ClearSelection()
	utils.SuccessResponse(c, gin.H{"selection": []string{}})
}

type layerOrderLockRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// PUT /canvas/layer-order-lock
func (h *CanvasHandler) SetLayerOrderLock(c *gin.Context) {
	var req layerOrderLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	h.canvasService.SetKeepLayerOrder(*req.Enabled)
	utils.SuccessResponse(c, gin.H{"keepLayersOrder": h.canvasService.KeepLayerOrder()})
}

// GET /canvas/layer-order-lock
func (h *CanvasHandler) GetLayerOrderLock(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"keepLayersOrder": h.canvasService.KeepLayerOrder()})
}
