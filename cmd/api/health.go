package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthHandler reports persistence reachability. It is the one
// unauthenticated probe the service exposes.
func healthHandler(c *gin.Context, db *sql.DB) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"detail": "database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
