package router

import (
	"github.com/gin-gonic/gin"

	"shelfscan/internal/handler"
	"shelfscan/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	scanH *handler.ScanHandler,
	productH *handler.ProductHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Scan routes
	scans := v1.Group("/scans")
	scans.POST("", scanH.Create)
	scans.POST("/header", scanH.ExtractHeader)
	scans.GET("/:id", scanH.GetByID)
	scans.POST("/:id/resolution", scanH.Resolve)

	// Product catalog routes
	products := v1.Group("/products")
	products.GET("", productH.List)
	products.GET("/export", productH.Export)
	products.GET("/:catalogNumber", productH.GetByCatalogNumber)

	return r
}
