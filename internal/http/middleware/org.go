package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-directory/internal/org"
)

const orgContextKey = "orgContext"

// Org resolves the tenant from the X-Org-ID header and attaches the org
// context to gin. Requests without a resolvable org never reach the
// handlers.
func Org(resolver *org.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := strings.TrimSpace(c.Request.Header.Get("X-Org-ID"))
		if slug == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "code": "ORG_REQUIRED", "error": "X-Org-ID header required."})
			return
		}

		orgCtx, err := resolver.ResolveBySlug(c.Request.Context(), slug)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"ok": false, "code": "ORG_NOT_FOUND", "error": "Unknown org."})
			return
		}

		c.Set(orgContextKey, orgCtx)
		c.Next()
	}
}

// GetOrgContext extracts the org context from gin.
func GetOrgContext(c *gin.Context) (*org.Context, bool) {
	value, ok := c.Get(orgContextKey)
	if !ok {
		return nil, false
	}
	orgCtx, ok := value.(*org.Context)
	return orgCtx, ok
}
