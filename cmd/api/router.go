package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"todo-backend/internal/auth"
	"todo-backend/internal/config"
	"todo-backend/internal/todo"
)

// setupRouter builds the gin engine and registers every endpoint. The
// four todo routes sit behind the bearer-token middleware; the health
// probe and root banner do not.
func setupRouter(cfg *config.Config, db *sql.DB, verifier *auth.Verifier, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Todo Backend API", "version": "0.1.0"})
	})
	r.GET("/api/health", func(c *gin.Context) { healthHandler(c, db) })

	todoHandler := todo.NewHandler(todo.NewService(todo.NewRepository(db)), logger)
	authorized := r.Group("/api")
	authorized.Use(auth.Middleware(verifier))
	todoHandler.Register(authorized)

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", float64(time.Since(start).Microseconds())/1000,
		)
	}
}
