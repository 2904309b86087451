package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/address-normalizer/app/controllers"
)

// SetupWebRoutes registers the index and docs pages.
func SetupWebRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Address Normalizer Service",
			"version": controllers.Version,
			"docs":    "/docs",
		})
	})

	router.GET("/docs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"api": "Address Normalizer API v1",
			"endpoints": map[string]string{
				"parse":        "POST /parse-address | POST /v1/addresses/parse",
				"batch":        "POST /parse-addresses | POST /v1/addresses/batch",
				"submit_job":   "POST /v1/addresses/jobs",
				"job_status":   "GET /v1/addresses/jobs/:jobID/status",
				"job_results":  "GET /v1/addresses/jobs/:jobID/results?format=ndjson&gzip=1",
				"city_suggest": "GET /v1/cities/suggest?q=&state=&limit=",
				"admin_stats":  "GET /v1/admin/stats",
				"cache_clear":  "POST /v1/admin/cache/clear",
				"search_seed":  "POST /v1/admin/meili/seed",
				"health":       "GET /health",
			},
		})
	})
}
