package middleware

import (
	"net/http"
	"strings"

	"quickbook/models"

	"github.com/gin-gonic/gin"
)

const tenantScopeKey = "tenantScope"

// TenantScopeMiddleware reads the workspace and bot from the route and stores
// them for the handlers. Both must be present.
func TenantScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := models.TenantScope{
			WorkspaceID: strings.TrimSpace(c.Param("workspaceId")),
			BotID:       strings.TrimSpace(c.Param("botId")),
		}
		if scope.WorkspaceID == "" || scope.BotID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "message": "workspace and bot are required"})
			return
		}
		c.Set(tenantScopeKey, scope)
		c.Next()
	}
}

// ScopeFromContext returns the scope set by TenantScopeMiddleware, falling
// back to the route params.
func ScopeFromContext(c *gin.Context) models.TenantScope {
	if v, ok := c.Get(tenantScopeKey); ok {
		if scope, ok := v.(models.TenantScope); ok {
			return scope
		}
	}
	return models.TenantScope{WorkspaceID: c.Param("workspaceId"), BotID: c.Param("botId")}
}
