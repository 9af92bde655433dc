// api/middleware/auth.go
package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/util"
)

// ClaimUserID is the token claim carrying the acting user's id.
const ClaimUserID = "user_id"

// Auth verifies the HS256 bearer token and stores the caller's user id in
// the gin context under util.ContextKeyUserID.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.RespondWithError(c, http.StatusUnauthorized, "No Authorization token provided", perm_errors.ErrUnauthorized)
			c.Abort()
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			util.RespondWithError(c, http.StatusUnauthorized, "Invalid authorization header format", perm_errors.ErrUnauthorized)
			c.Abort()
			return
		}

		userID, err := parseToken(strings.TrimSpace(tokenString), secret)
		if err != nil {
			util.RespondWithError(c, http.StatusUnauthorized, "Invalid token", fmt.Errorf("%v: %w", err, perm_errors.ErrUnauthorized))
			c.Abort()
			return
		}

		c.Set(util.ContextKeyUserID, userID)
		logger.Debug("Authenticated request", zap.Int64("userID", userID))

		c.Next()
	}
}

func parseToken(tokenString string, secret []byte) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}
	return userIDFromClaim(claims[ClaimUserID])
}

// userIDFromClaim accepts the id as a JSON number or a decimal string.
func userIDFromClaim(value interface{}) (int64, error) {
	var id int64
	switch v := value.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("non-integer %s claim", ClaimUserID)
		}
		id = int64(v)
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s claim: %w", ClaimUserID, err)
		}
		id = parsed
	default:
		return 0, fmt.Errorf("missing %s claim", ClaimUserID)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s claim %d", ClaimUserID, id)
	}
	return id, nil
}
