package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers/discount_rule_controller"
	"github.com/joy095/settlement/logger"
)

func RegisterDiscountRuleRoutes(admin *gin.RouterGroup, deps Deps) {
	discountRuleController, err := discount_rule_controller.NewDiscountRuleController(deps.Services)
	if err != nil {
		logger.ErrorLogger.Fatalf("failed to initialize discount rule controller: %v", err)
	}

	api := admin.Group("/user-discount-rules/:resellerId")
	{
		api.GET("", discountRuleController.ListRules)
		api.POST("", discountRuleController.CreateRule)
		api.PUT("/:ruleId", discountRuleController.UpdateRule)
		api.DELETE("/:ruleId", discountRuleController.DeleteRule)
	}
}
