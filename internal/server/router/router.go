package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/mealledger/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.GET("/pricing", handler.GetPricing)
	api.PUT("/pricing", handler.UpdatePricing)
	api.GET("/items", handler.Items)
	api.GET("/meals", handler.Meals)

	org := api.Group("/organizers/:organizerId")
	org.GET("/reports", handler.ListReports)
	org.POST("/reports", handler.CreateReport)
	org.POST("/reports/preview", handler.PreviewReport)
	org.GET("/reports/:reportId", handler.GetReport)
	org.PUT("/reports/:reportId", handler.UpdateReport)
	org.DELETE("/reports/:reportId", handler.DeleteReport)
	org.GET("/stats", handler.Stats)

	org.GET("/stock", handler.ListStock)
	org.POST("/stock", handler.AddStock)
	org.DELETE("/stock/:entryId", handler.RemoveStock)
	org.GET("/balances", handler.Balances)
	org.GET("/rollups/:month", handler.MonthlyRollup)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
