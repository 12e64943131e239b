package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inventory-sales-ledger/internal/api_gateway/handler"
	"github.com/inventory-sales-ledger/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	requestTimeout time.Duration,
	itemHandler *handler.ItemHandler,
	saleHandler *handler.SaleHandler,
	reportHandler *handler.ReportHandler,
) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Timeout(requestTimeout))

	v1 := r.Group("/api/v1")
	{
		items := v1.Group("/items")
		{
			items.POST("", itemHandler.Create)
			items.GET("", itemHandler.List)
			items.GET("/sold", itemHandler.ListSold)
			items.GET("/:id", itemHandler.GetByID)
			items.PATCH("/:id", itemHandler.Update)
			items.DELETE("/:id", itemHandler.Delete)

			items.POST("/:id/sell", saleHandler.Sell)
			items.GET("/:id/sales", saleHandler.ListByItem)
		}

		v1.GET("/sales", saleHandler.History)
		v1.POST("/checkouts", saleHandler.Checkout)

		reports := v1.Group("/reports")
		{
			reports.GET("/sales-summary", reportHandler.SalesSummary)
			reports.GET("/sales/:id", reportHandler.ProjectedSale)
			reports.GET("/rejections", reportHandler.Rejections)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
