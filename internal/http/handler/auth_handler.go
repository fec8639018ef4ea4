package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-directory/internal/http/middleware"
	"github.com/smallbiznis/valora-directory/internal/jwt"
	"github.com/smallbiznis/valora-directory/internal/service"
)

// AuthHandler exposes sign-in, sign-up, and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
	keys *jwt.KeyManager
}

// NewAuthHandler wires an AuthHandler.
func NewAuthHandler(auth *service.AuthService, keys *jwt.KeyManager) *AuthHandler {
	return &AuthHandler{auth: auth, keys: keys}
}

type signInRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r signInRequest) name() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Name
}

type signUpRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn handles POST /signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}

	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, "Malformed sign in payload.")
		return
	}

	user, session, err := h.auth.SignIn(c.Request.Context(), orgCtx.Org, service.SignInInput{
		Name:     req.name(),
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": viewOf(user, orgCtx.Org.Slug), "token": session.Token})
}

// SignUp handles POST /signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}

	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, "Malformed sign up payload.")
		return
	}

	name := req.Username
	if name == "" {
		name = req.Name
	}

	user, session, err := h.auth.SignUp(c.Request.Context(), orgCtx.Org, service.SignUpInput{
		Name:     name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": viewOf(user, orgCtx.Org.Slug), "token": session.Token})
}

// SignInToken handles GET /signin_token, exchanging a valid bearer
// token for a refreshed user record.
func (h *AuthHandler) SignInToken(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}

	token, ok := middleware.BearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "code": codeInvalidCredentials, "error": "Bearer token required."})
		return
	}

	user, session, err := h.auth.SignInToken(c.Request.Context(), orgCtx.Org, token)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": viewOf(user, orgCtx.Org.Slug), "token": session.Token})
}

// Logout handles POST /logout. Sessions are stateless, so this only
// acknowledges the client-side teardown.
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	if err := h.auth.Logout(c.Request.Context(), principal); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// JWKS handles GET /.well-known/jwks.json for the resolved org.
func (h *AuthHandler) JWKS(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}

	set, err := h.keys.JWKS(c.Request.Context(), orgCtx.Org.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}
