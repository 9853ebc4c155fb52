// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wrdrobe/wrdrobe-backend/internal/config"
	"github.com/wrdrobe/wrdrobe-backend/internal/handlers"
	"github.com/wrdrobe/wrdrobe-backend/internal/middleware"
	"github.com/wrdrobe/wrdrobe-backend/internal/services"
	"github.com/wrdrobe/wrdrobe-backend/internal/storage"
)

func Initialize(store storage.Store, cfg *config.Config) *gin.Engine {
	// Initialize services
	canvasService := services.NewCanvasService(cfg.Canvas)
	wardrobeService := services.NewWardrobeService(store, canvasService)
	outfitService := services.NewOutfitService(store, canvasService)
	settingsService := services.NewSettingsService(store)
	generator := services.NewGeminiGenerator(cfg.AI)
	aiService := services.NewAIService(generator, wardrobeService)
	exportService := services.NewExportService(canvasService, aiService)

	// Initialize handlers
	wardrobeHandler := handlers.NewWardrobeHandler(wardrobeService)
	canvasHandler := handlers.NewCanvasHandler(canvasService, wardrobeService)
	outfitHandler := handlers.NewOutfitHandler(outfitService)
	aiHandler := handlers.NewAIHandler(aiService)
	exportHandler := handlers.NewExportHandler(exportService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Wardrobe catalog routes
		wardrobe := v1.Group("/wardrobe")
		{
			wardrobe.GET("", wardrobeHandler.GetWardrobe)
			wardrobe.POST("", wardrobeHandler.AddItem)
			wardrobe.PUT("/:id", wardrobeHandler.UpdateItem)
			wardrobe.DELETE("/:id", wardrobeHandler.DeleteItem)
			wardrobe.POST("/:id/revert", wardrobeHandler.RevertItem)
			wardrobe.POST("/photo-from-url", wardrobeHandler.PhotoFromURL)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", wardrobeHandler.GetCategories)
			categories.POST("", wardrobeHandler.AddCategory)
		}

		// Canvas routes
		canvas := v1.Group("/canvas")
		{
			canvas.GET("", canvasHandler.GetCanvas)
			canvas.DELETE("", canvasHandler.ClearCanvas)
			canvas.POST("/items", canvasHandler.PlaceItem)
			canvas.DELETE("/items/:instanceId", canvasHandler.RemoveItem)
			canvas.POST("/items/:instanceId/resize", canvasHandler.ResizeItem)
			canvas.POST("/items/:instanceId/front", canvasHandler.BringToFront)
			canvas.POST("/items/:instanceId/back", canvasHandler.SendToBack)
			canvas.POST("/move", canvasHandler.MoveItems)
			canvas.POST("/reorder", canvasHandler.Reorder)
			canvas.GET("/layer-order-lock", canvasHandler.GetLayerOrderLock)
			canvas.PUT("/layer-order-lock", canvasHandler.SetLayerOrderLock)
			canvas.GET("/selection", canvasHandler.GetSelection)
			canvas.DELETE("/selection", canvasHandler.ClearSelection)
			canvas.POST("/select", canvasHandler.SelectItem)
			canvas.POST("/marquee", canvasHandler.MarqueeSelect)
		}

		// Outfit gallery routes
		outfits := v1.Group("/outfits")
		{
			outfits.GET("", outfitHandler.GetOutfits)
			outfits.POST("", outfitHandler.SaveOutfit)
			outfits.POST("/:id/load", outfitHandler.LoadOutfit)
			outfits.PUT("/:id", outfitHandler.RenameOutfit)
			outfits.DELETE("/:id", outfitHandler.DeleteOutfit)
		}

		// Generative routes get a tighter rate budget
		ai := v1.Group("/ai")
		ai.Use(middleware.AIRateLimit())
		{
			ai.POST("/items/:id/remove-background", aiHandler.RemoveBackground)
			ai.POST("/items/:id/cutout", aiHandler.CreateCutout)
			ai.POST("/items/:id/refine-mask", aiHandler.RefineMask)
			ai.POST("/composite", aiHandler.GenerateComposite)
			ai.POST("/suggest-outfits", aiHandler.SuggestOutfits)
		}

		// Export routes
		export := v1.Group("/export")
		{
			export.POST("/canvas", exportHandler.ExportCanvas)
			export.POST("/crop", exportHandler.ExportCrop)
			export.POST("/composite", middleware.AIRateLimit(), exportHandler.ExportComposite)
		}

		// Settings routes
		settings := v1.Group("/settings")
		{
			settings.GET("/theme", settingsHandler.GetTheme)
			settings.PUT("/theme", settingsHandler.SetTheme)
		}
	}

	return r
}
