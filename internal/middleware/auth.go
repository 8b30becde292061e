package middleware

import (
	"net/http"
	"strings"

	"github.com/01moynul/pricetracker-golang/internal/auth"
	"github.com/gin-gonic/gin"
)

// AdminAuth guards the admin routes with a bearer token. With a nil
// issuer (no ADMIN_JWT_SECRET configured) every request is let through.
func AdminAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if issuer == nil {
			c.Next()
			return
		}

		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token format (must be Bearer)"})
			return
		}

		// 2. --- Validate Token ---
		subject, err := issuer.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
			return
		}

		c.Set("admin", subject)
		c.Next()
	}
}
