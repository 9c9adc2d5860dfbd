package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers/commission_controller"
	"github.com/joy095/settlement/logger"
)

func RegisterCommissionRoutes(admin *gin.RouterGroup, deps Deps) {
	commissionController, err := commission_controller.NewCommissionController(deps.Services)
	if err != nil {
		logger.ErrorLogger.Fatalf("failed to initialize commission controller: %v", err)
	}

	api := admin.Group("/commissions")
	{
		api.GET("", commissionController.ListCommissions)
		api.PUT("/:id/review", commissionController.ReviewCommission)
	}
}
