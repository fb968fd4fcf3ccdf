// Package monitor exposes a lightweight operational status endpoint
// covering the server's two backing services.
package monitor

import (
	"context"
	"time"

	"audition-management-api/config"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// RegisterMonitorRoutes adds /monitor: uptime plus database and Redis
// connectivity.
func RegisterMonitorRoutes(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "ok"
		if sqlDB, err := config.DB.DB(); err != nil {
			dbStatus = "error: " + err.Error()
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "error: " + err.Error()
		}

		redisStatus := "ok"
		if err := config.Redis.Ping(ctx).Err(); err != nil {
			redisStatus = "error: " + err.Error()
		}

		status := 200
		if dbStatus != "ok" || redisStatus != "ok" {
			status = 503
		}

		c.JSON(status, gin.H{
			"uptime":   time.Since(startedAt).Round(time.Second).String(),
			"database": dbStatus,
			"redis":    redisStatus,
		})
	})
}
