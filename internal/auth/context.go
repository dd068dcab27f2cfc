package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return getString(c, ctxUserID)
}

// GetUserRole returns the role carried by the access token or empty string.
func GetUserRole(c *gin.Context) string {
	return getString(c, ctxUserRole)
}

// Actor is the authenticated caller as services see it.
type Actor struct {
	ID   string
	Role string
}

// GetActor collects the caller identity set by AuthRequired.
func GetActor(c *gin.Context) Actor {
	return Actor{ID: GetUserID(c), Role: GetUserRole(c)}
}

func getString(c *gin.Context, key string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
