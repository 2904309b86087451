package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/responses"
	"github.com/address-normalizer/app/services"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// AdminController serves the operational endpoints.
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// GetStats returns system stats.
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("collect stats", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "STATS_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ClearCache drops every cached parse.
func (ac *AdminController) ClearCache(c *gin.Context) {
	if err := ac.adminService.ClearCache(c.Request.Context()); err != nil {
		if errors.Is(err, services.ErrCacheDisabled) {
			abortWithError(c, http.StatusConflict, "CACHE_DISABLED", err.Error())
			return
		}
		ac.logger.Error("clear cache", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "CACHE_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "cache cleared",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// SeedSearch rebuilds the city search index from the gazetteer.
func (ac *AdminController) SeedSearch(c *gin.Context) {
	result, err := ac.adminService.SeedSearch()
	if err != nil {
		if errors.Is(err, services.ErrSearchDisabled) {
			abortWithError(c, http.StatusConflict, "SEARCH_DISABLED", err.Error())
			return
		}
		ac.logger.Error("seed city index", zap.Error(err))
		abortWithError(c, http.StatusBadGateway, "SEED_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "city index seeded",
		Data:      result,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
