package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/cursohub/cursohub-api/internal/models"
	"github.com/cursohub/cursohub-api/internal/service"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
	"github.com/cursohub/cursohub-api/pkg/response"
)

// ContextRolesKey is the gin context key storing resolved role flags.
const ContextRolesKey = "currentRoles"

// ResolveRoles loads the caller's role flags from the profile store and
// attaches them to the context. Flags come from the database on every
// request, so an admin toggling a role takes effect immediately instead
// of waiting for token expiry. Missing identity or a failed lookup
// resolves to no roles, never to an error response.
func ResolveRoles(authz *service.AuthzService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := ""
		if claimsValue, ok := c.Get(ContextUserKey); ok {
			if claims, ok := claimsValue.(*models.JWTClaims); ok {
				accountID = claims.AccountID
			}
		}
		c.Set(ContextRolesKey, authz.ResolveRoles(c.Request.Context(), accountID))
		c.Next()
	}
}

// RolesFromContext returns the resolved role flags, zero when absent.
func RolesFromContext(c *gin.Context) models.RoleFlags {
	if value, ok := c.Get(ContextRolesKey); ok {
		if flags, ok := value.(models.RoleFlags); ok {
			return flags
		}
	}
	return models.RoleFlags{}
}

// RequireAdmin blocks callers whose resolved flags lack the admin role.
func RequireAdmin() gin.HandlerFunc {
	return requireFlag(func(flags models.RoleFlags) bool { return flags.IsAdmin })
}

// RequireInstructor admits instructors and admins.
func RequireInstructor() gin.HandlerFunc {
	return requireFlag(func(flags models.RoleFlags) bool { return flags.IsInstructor || flags.IsAdmin })
}

func requireFlag(allowed func(models.RoleFlags) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextUserKey); !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !allowed(RolesFromContext(c)) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
