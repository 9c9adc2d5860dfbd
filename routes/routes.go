package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/middlewares/auth"
	"github.com/joy095/settlement/services"
	"github.com/redis/go-redis/v9"
)

// Deps is what the route registrations need. Redis is optional; without it rate limits are
// kept per process.
type Deps struct {
	Services       *services.Services
	JWTSecret      []byte
	Redis          *redis.Client
	SettlementRate string
}

// RegisterRoutes mounts the health check and every admin route on r.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok from settlement service"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	admin := r.Group("/admin")
	admin.Use(auth.AdminMiddleware(deps.JWTSecret))

	RegisterSettlementRoutes(admin, deps)
	RegisterCommissionRoutes(admin, deps)
	RegisterDiscountRuleRoutes(admin, deps)
	RegisterQuoteRoutes(admin, deps)
}
