// settlement/utils/context.go
package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/logger"
)

const (
	ContextKeySubject = "sub"
	ContextKeyRole    = "role"
)

// GetAdminIDFromContext returns the subject the auth middleware stored for this request.
// Admin ids are issued elsewhere and are kept as opaque strings.
func GetAdminIDFromContext(c *gin.Context) (string, error) {
	sub, exists := c.Get(ContextKeySubject)
	if !exists {
		logger.ErrorLogger.Error("Admin ID not found in context.")
		return "", ErrUserIDNotFound
	}
	id, ok := sub.(string)
	if !ok || id == "" {
		logger.ErrorLogger.Errorf("Admin ID in context is not a string, actual type: %T", sub)
		return "", fmt.Errorf("internal server error: invalid admin ID format in context")
	}
	return id, nil
}
