package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-directory/internal/domain"
	"github.com/smallbiznis/valora-directory/internal/jwt"
)

const principalKey = "principal"

// Auth validates the Authorization header and attaches the signed-in
// principal.
type Auth struct {
	Tokens *jwt.Generator
}

// RequireUser ensures the request carries a valid bearer token for the
// resolved org.
func (m *Auth) RequireUser(c *gin.Context) {
	orgCtx, ok := GetOrgContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "code": "ORG_REQUIRED", "error": "Org missing."})
		return
	}

	token, ok := BearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "code": "INVALID_CREDENTIALS", "error": "Bearer token required."})
		return
	}

	principal, err := m.Tokens.ValidateAccessToken(c.Request.Context(), orgCtx.Org.ID, token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "code": "INVALID_CREDENTIALS", "error": "Invalid access token."})
		return
	}

	c.Set(principalKey, principal)
	c.Next()
}

// GetPrincipal exposes the authenticated principal to handlers.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := value.(domain.Principal)
	return principal, ok
}

// BearerToken extracts the raw bearer token from the Authorization
// header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
