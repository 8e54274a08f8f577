package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tripbid/tripbid-backend/pkg/utils"
)

// AuthMiddleware resolves the caller from the bearer token. Tokens are issued
// by the external auth service; this only verifies them.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(401, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Set("userType", claims.UserType)
		c.Next()
	}
}
