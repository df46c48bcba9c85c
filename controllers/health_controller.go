package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/utils"
)

// HealthCheck handles GET /api/v1/health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Jersey Orders API is running",
	})
}

// DatabaseStatus handles GET /api/v1/database/status - pings the database and lists its tables
func (h *Handler) DatabaseStatus(c *gin.Context) {
	ctx := c.Request.Context()

	sqlDB, err := h.svc.DB.DB()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get database instance")
		return
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Printf("Database ping failed: %v", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "DATABASE_CONNECTION_ERROR", "Database connection failed")
		return
	}

	// Migrator works for both postgres and sqlite
	tables, err := h.svc.DB.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "DATABASE_QUERY_ERROR", "Failed to query tables")
		return
	}

	stats := sqlDB.Stats()
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Database connected",
		"tables":           tables,
		"open_connections": stats.OpenConnections,
	})
}
