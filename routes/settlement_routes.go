package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers/settlement_controller"
	"github.com/joy095/settlement/logger"
	middleware "github.com/joy095/settlement/middlewares"
)

// Execution writes money records, so it also gets an hourly ceiling on top of the burst rate.
const executeHourlyRate = "100-1h"

func RegisterSettlementRoutes(admin *gin.RouterGroup, deps Deps) {
	settlementController, err := settlement_controller.NewSettlementController(deps.Services)
	if err != nil {
		logger.ErrorLogger.Fatalf("failed to initialize settlement controller: %v", err)
	}

	rate := deps.SettlementRate
	if rate == "" {
		rate = "10-1m"
	}

	settlements := admin.Group("/settlements")
	{
		settlements.POST("/calculate",
			middleware.NewRateLimiter(rate, "settlement-calculate", deps.Redis),
			settlementController.Calculate)
		settlements.GET("/orders", settlementController.Orders)
		settlements.POST("/execute",
			middleware.CombinedRateLimiter("settlement-execute", deps.Redis, rate, executeHourlyRate),
			settlementController.Execute)
	}

	records := admin.Group("/settlement-records")
	{
		records.GET("", settlementController.ListRecords)
		records.GET("/:id", settlementController.GetRecord)
	}

	admin.POST("/orders/:resellerId/:orderNumber/cancel", settlementController.CancelOrder)
}
