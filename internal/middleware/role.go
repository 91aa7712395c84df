package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slotwise/internal/domain"
	"slotwise/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has one of the given roles
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		current, _ := role.(string)
		for _, r := range roles {
			if current == string(r) {
				c.Next()
				return
			}
		}
		response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	}
}

// StaffOnly lets owners and staff through.
func StaffOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleOwner, domain.RoleStaff)
}

func OwnerOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleOwner)
}
