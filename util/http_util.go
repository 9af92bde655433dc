// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
)

// ContextKeyUserID is where the auth middleware stores the caller's user id.
const ContextKeyUserID = "requestingUserID"

// RespondWithError logs err and writes the stable reason code for it.
func RespondWithError(c *gin.Context, code int, message string, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", code),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	}
	if code >= 500 {
		logger.Error(message, fields...)
	} else {
		logger.Warn(message, fields...)
	}
	c.JSON(code, gin.H{"error": perm_errors.Code(err)})
}

func GetUserIDFromContext(c *gin.Context) (int64, error) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, perm_errors.ErrUnauthorized
	}
	id, ok := userID.(int64)
	if !ok || id <= 0 {
		return 0, perm_errors.ErrUnauthorized
	}
	return id, nil
}
