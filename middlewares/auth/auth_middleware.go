package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/utils"
	"github.com/joy095/settlement/utils/jwt_parse"
)

const RoleAdmin = "admin"

// AdminMiddleware admits requests carrying a valid token with role "admin". Tokens are
// issued by the identity service; this side only verifies them.
func AdminMiddleware(secret []byte) gin.HandlerFunc {
	parse := jwt_parse.ParseJWTToken(secret)
	return func(c *gin.Context) {
		parse(c)
		if c.IsAborted() {
			return
		}

		role, _ := c.Get(utils.ContextKeyRole)
		if role != RoleAdmin {
			sub, _ := c.Get(utils.ContextKeySubject)
			logger.WarnLogger.Warnf("Subject %v with role %v denied admin access to %s", sub, role, c.FullPath())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden: admin role required."})
			return
		}
		c.Next()
	}
}
