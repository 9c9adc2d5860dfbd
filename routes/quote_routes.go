package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers/quote_controller"
	"github.com/joy095/settlement/logger"
)

func RegisterQuoteRoutes(admin *gin.RouterGroup, deps Deps) {
	quoteController, err := quote_controller.NewQuoteController(deps.Services)
	if err != nil {
		logger.ErrorLogger.Fatalf("failed to initialize quote controller: %v", err)
	}

	api := admin.Group("/quotes")
	{
		api.GET("/resolve", quoteController.ResolveQuote)
		api.POST("", quoteController.CreateQuote)
	}
}
