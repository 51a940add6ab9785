package middleware

import (
	"net/http"
	"strings"

	"github.com/brightpools/charity-draw-backend/internal/config"
	"github.com/brightpools/charity-draw-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware guards the admin routes. Every mutating draw and
// settlement operation assumes an authenticated admin actor.
func JWTAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const bearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			return
		}

		claims, err := utils.ValidateJWT(authHeader[len(bearerSchema):], cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("adminID", claims["sub"])
		c.Set("adminEmail", claims["email"])
		c.Set("adminRole", claims["role"])
		c.Next()
	}
}
