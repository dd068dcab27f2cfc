package api

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

// RequireAccountRole checks the stored account rather than the token claims,
// so deactivated users and role changes take effect before the token expires.
// It MUST be used after auth.AuthRequired middleware.
func RequireAccountRole(userService user.Service, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		if !u.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is deactivated"})
			return
		}

		if !slices.Contains(roles, u.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: " + roles[0] + " access required"})
			return
		}

		c.Next()
	}
}
