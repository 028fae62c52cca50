package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthContext populates the request context with the caller identity
// forwarded by the ingress proxy. When no identity headers are present a
// development fallback is used so local runs work without a proxy.
func AuthContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip auth for health check endpoints
		if strings.HasPrefix(c.Request.URL.Path, "/health") ||
			strings.HasPrefix(c.Request.URL.Path, "/ready") {
			c.Next()
			return
		}

		// Upstream auth middleware may already have populated the
		// identity from verified JWT claims
		if _, exists := c.Get("user_id"); exists {
			c.Next()
			return
		}

		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = "00000000-0000-0000-0000-000000000001" // Valid UUID for dev
		}

		roles := []string{"admin", "employee"}
		if rolesHeader := c.GetHeader("X-User-Roles"); rolesHeader != "" {
			roles = strings.Split(rolesHeader, ",")
			for i := range roles {
				roles[i] = strings.TrimSpace(roles[i])
			}
		}

		c.Set("user_id", userID)
		c.Set("user_roles", roles)

		c.Next()
	}
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, exists := c.Get("user_roles")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_ROLES",
					"message": "User roles not found",
				},
			})
			c.Abort()
			return
		}

		userRoles, ok := roles.([]string)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ROLES",
					"message": "Invalid user roles format",
				},
			})
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range userRoles {
			if role == requiredRole || role == "super_admin" {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_PERMISSIONS",
					"message": "Required role: " + requiredRole,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
