package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "requisition",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/requisitions", h.ListRequisitions)
		api.POST("/requisitions", h.CreateRequisition)
		api.GET("/requisitions/:id", h.GetRequisition)
		api.PUT("/requisitions/:id", h.SaveRequisition)
		api.DELETE("/requisitions/:id", h.DeleteRequisition)

		api.POST("/requisitions/:id/submit", h.Submit)
		api.POST("/requisitions/:id/approve", h.Approve)
		api.POST("/requisitions/:id/reject", h.Reject)

		api.POST("/requisitions/:id/items", h.AddItem)
		api.DELETE("/requisitions/:id/items/:itemID", h.RemoveItem)

		api.GET("/requisitions/:id/export/xlsx", h.ExportExcel)
		api.GET("/requisitions/:id/export/pdf", h.ExportPDF)

		api.POST("/autofill", h.Autofill)
		api.POST("/autofill/quote", h.AutofillFromQuote)
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Actor-Role, X-Actor-Name")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
