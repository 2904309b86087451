package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/address-normalizer/app/controllers"
)

// SetupAPIRoutes registers the /v1 API.
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		addresses := v1.Group("/addresses")
		{
			addresses.POST("/parse", addressController.ParseAddress)
			addresses.POST("/batch", addressController.BatchParse)
			addresses.POST("/jobs", addressController.SubmitJob)
			addresses.GET("/jobs/:jobID/status", addressController.GetJobStatus)
			addresses.GET("/jobs/:jobID/results", addressController.GetJobResults)
		}

		v1.GET("/cities/suggest", addressController.SuggestCities)

		admin := v1.Group("/admin")
		{
			admin.GET("/stats", adminController.GetStats)
			admin.POST("/cache/clear", adminController.ClearCache)
			admin.POST("/meili/seed", adminController.SeedSearch)
		}

		v1.GET("/health", addressController.HealthCheck)
	}
}

// SetupLegacyRoutes keeps the two unversioned parsing endpoints used by the
// CSV importer.
func SetupLegacyRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.POST("/parse-address", addressController.ParseAddress)
	router.POST("/parse-addresses", addressController.BatchParse)
}

// SetupHealthRoutes registers the probe endpoints.
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}
