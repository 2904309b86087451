// Package routes wires the gin engine.
//
//   - api.go: /v1 API, legacy parse endpoints and probes
//   - web.go: / and /docs
//   - routes.go: middleware and SetupAllRoutes
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/controllers"
	"github.com/address-normalizer/app/responses"
	"github.com/address-normalizer/helpers/utils"
)

const requestIDHeader = "X-Request-ID"

// SetupAllRoutes installs middleware and every route group.
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController, logger *zap.Logger) {
	setupMiddleware(router, logger)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, addressController)
	SetupLegacyRoutes(router, addressController)
	SetupAPIRoutes(router, addressController, adminController)

	router.NoRoute(func(c *gin.Context) {
		resp := responses.NewErrorResponse("NOT_FOUND", c.Request.Method+" "+c.Request.URL.Path+" not found")
		resp.RequestID = c.GetString(controllers.RequestIDKey)
		c.JSON(http.StatusNotFound, resp)
	})
}

func setupMiddleware(router *gin.Engine, logger *zap.Logger) {
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(logger))
}

// requestID reuses an incoming X-Request-ID or issues a fresh one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = utils.GenerateUUID()
		}
		c.Set(controllers.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(controllers.RequestIDKey)))
	}
}
