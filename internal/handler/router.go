package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/pricelist_api/internal/metrics"
	"github.com/GTDGit/pricelist_api/internal/middleware"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	Product *ProductHandler
	List    *ListHandler
}

// SetupRoutes registers all routes.
func SetupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, throttle *middleware.LoginThrottle) {
	router.GET("/health", handlers.Health.GetHealth)
	router.GET("/metrics", metrics.Handler())

	router.POST("/auth/login", throttle.Handle(), handlers.Auth.Login)

	guard := jwtMiddleware.Handle()

	products := router.Group("/products")
	{
		products.GET("", handlers.Product.ListProducts)
		products.GET("/:id", handlers.Product.GetProduct)
		products.POST("", guard, handlers.Product.CreateProduct)
		products.PUT("/:id", guard, handlers.Product.UpdateProduct)
		products.DELETE("/:id", guard, handlers.Product.DeleteProduct)
	}

	lists := router.Group("/lists")
	{
		lists.GET("/brands", handlers.List.ListBrands)
		lists.GET("/logos", handlers.List.ListLogos)
		lists.POST("/logos", guard, handlers.List.CreateLogo)
	}
}
