package http

import (
	"github.com/gin-gonic/gin"
	"github.com/kmfahey/nutritracker/config"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Stored foods
		foods := v1.Group("/foods")
		{
			foods.GET("", handler.ListFoods)
			foods.GET("/search", handler.SearchFoods)
			foods.GET("/:fdcId", handler.GetFood)
		}

		// FoodData Central passthrough and import
		fdc := v1.Group("/fdc")
		{
			fdc.GET("/search", handler.SearchFDC)
			fdc.GET("/foods/:fdcId", handler.LookupFDC)
			fdc.POST("/foods/:fdcId/import", handler.ImportFDC)
		}

		recipes := v1.Group("/recipes")
		{
			recipes.GET("", handler.ListRecipes)
			recipes.POST("", handler.CreateRecipe)
			recipes.GET("/:id", handler.GetRecipe)
			recipes.DELETE("/:id", handler.DeleteRecipe)
			recipes.GET("/:id/ingredients/preview", handler.PreviewIngredient)
			recipes.POST("/:id/ingredients", handler.AddIngredient)
			recipes.DELETE("/:id/ingredients/:index", handler.RemoveIngredient)
			recipes.POST("/:id/finish", handler.FinishRecipe)
		}
	}

	return router
}
