package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
	"github.com/noah-isme/teamsp-admin-api/pkg/response"
)

// RequireRole lets through only callers whose role equals role.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.ErrNotLogged)
			c.Abort()
			return
		}
		if claims.Role != role {
			response.Error(c, appErrors.ErrPermissionDeny)
			c.Abort()
			return
		}
		c.Next()
	}
}
