package api

import (
	"alcyxob/fitness-catalog/internal/domain" // Needed for RoleMiddleware
	"alcyxob/fitness-catalog/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	exerciseService service.ExerciseService,
	catalogService service.CatalogService,
) {
	exerciseHandler := NewExerciseHandler(exerciseService)
	catalogHandler := NewCatalogHandler(catalogService)

	authMiddleware := AuthMiddleware(jwtSecret)
	curators := RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Exercise Library Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			// GET /api/v1/exercises - any authenticated user can browse the library
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			// PUT /api/v1/exercises/:id - re-parse a corrected catalog line
			exerciseGroup.PUT("/:id", curators, exerciseHandler.ReplaceExercise)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleAdmin), exerciseHandler.DeleteExercise)
		}

		// --- Catalog Routes ---
		catalogGroup := protected.Group("/catalog")
		{
			// POST /api/v1/catalog/preview - parse only, nothing is stored
			catalogGroup.POST("/preview", catalogHandler.Preview)

			curatorGroup := catalogGroup.Group("")
			curatorGroup.Use(curators)
			{
				curatorGroup.POST("/uploads", catalogHandler.RequestUploadURL)
				curatorGroup.POST("/imports", catalogHandler.CreateImport)
				curatorGroup.POST("/imports/from-upload", catalogHandler.ImportFromUpload)
				curatorGroup.GET("/imports", catalogHandler.ListImports)
				curatorGroup.GET("/imports/:id", catalogHandler.GetImport)
			}
		}
	}
}
