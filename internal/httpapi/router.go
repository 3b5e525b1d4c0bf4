package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the HTTP surface. The caller owns the http.Server.
func NewRouter(handler *Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestLogger(logger))
	router.Use(gin.Recovery())

	router.GET("/healthz", handler.Healthz)

	api := router.Group("/api")
	{
		api.POST("/analyze", handler.Analyze)
		api.POST("/analyze/batch", handler.AnalyzeBatch)
		api.GET("/history", handler.RecentHistory)
		api.GET("/history/:id", handler.HistoryByID)
	}

	router.GET("/ws/analyze", handler.AnalyzeWS)

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
