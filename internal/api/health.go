package api

import (
	"context"  // Ping deadline
	"net/http" // HTTP status codes
	"time"     // Ping deadline

	"wallet_ledger/internal/utils" // Redis cache

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// healthTimeout bounds each dependency ping
const healthTimeout = 2 * time.Second

// HealthHandler pings the database and redis
func HealthHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		checks := gin.H{"database": "ok", "redis": "ok"}
		healthy := true
		if sqlDB, err := db.DB(); err != nil {
			checks["database"], healthy = err.Error(), false
		} else if err := sqlDB.PingContext(ctx); err != nil {
			checks["database"], healthy = err.Error(), false
		}
		if err := cache.Ping(ctx); err != nil {
			checks["redis"], healthy = err.Error(), false
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, Response{Success: false, Message: "Unhealthy", Data: checks, Errors: []string{}})
			return
		}
		respond(c, http.StatusOK, "Healthy", checks)
	}
}
