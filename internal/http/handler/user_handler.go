package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-directory/internal/http/middleware"
	"github.com/smallbiznis/valora-directory/internal/service"
)

// UserHandler exposes the org-scoped directory endpoints.
type UserHandler struct {
	directory *service.DirectoryService
}

// NewUserHandler wires a UserHandler.
func NewUserHandler(directory *service.DirectoryService) *UserHandler {
	return &UserHandler{directory: directory}
}

type createUserRequest struct {
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Status       string `json:"status"`
	Availability string `json:"availability"`
	Role         string `json:"role"`
}

type updateUserRequest struct {
	Username     *string `json:"username"`
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	Status       *string `json:"status"`
	Availability *string `json:"availability"`
	Role         *string `json:"role"`
}

func (r updateUserRequest) input() service.UpdateInput {
	in := service.UpdateInput{
		Email:        r.Email,
		Password:     r.Password,
		Status:       r.Status,
		Availability: r.Availability,
		Role:         r.Role,
	}
	if r.Username != nil {
		in.Name = r.Username
	} else {
		in.Name = r.Name
	}
	return in
}

// Available handles GET /available, listing users open to be assigned.
func (h *UserHandler) Available(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}

	users, err := h.directory.ListAvailable(c.Request.Context(), orgCtx.Org)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": viewsOf(users, orgCtx.Org.Slug)})
}

// List handles GET /, filtering on allow-listed query parameters.
func (h *UserHandler) List(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}

	query := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	users, err := h.directory.List(c.Request.Context(), orgCtx.Org, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": viewsOf(users, orgCtx.Org.Slug)})
}

// Get handles GET /:id. A user outside the caller's org reads the same
// as a user that does not exist.
func (h *UserHandler) Get(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeInvalidRequest(c, "User id must be numeric.")
		return
	}

	user, err := h.directory.GetByID(c.Request.Context(), orgCtx.Org, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": viewOf(*user, orgCtx.Org.Slug)})
}

// Create handles POST /, registering a user on behalf of the caller.
func (h *UserHandler) Create(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, "Malformed user payload.")
		return
	}

	name := req.Username
	if name == "" {
		name = req.Name
	}

	user, _, err := h.directory.Create(c.Request.Context(), orgCtx.Org, service.SignUpInput{
		Name:         name,
		Email:        req.Email,
		Password:     req.Password,
		Status:       req.Status,
		Availability: req.Availability,
		Role:         req.Role,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": viewOf(user, orgCtx.Org.Slug)})
}

// UpdateByID handles PUT /:id.
func (h *UserHandler) UpdateByID(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeInvalidRequest(c, "User id must be numeric.")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, "Malformed user payload.")
		return
	}

	user, err := h.directory.UpdateByID(c.Request.Context(), orgCtx.Org, userID, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": viewOf(*user, orgCtx.Org.Slug)})
}

// UpdateSelf handles PUT /, updating the authenticated user's own record.
func (h *UserHandler) UpdateSelf(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "code": codeInvalidCredentials, "error": "Bearer token required."})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, "Malformed user payload.")
		return
	}

	user, err := h.directory.UpdateSelf(c.Request.Context(), orgCtx.Org, principal, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": viewOf(*user, orgCtx.Org.Slug)})
}

// Delete handles DELETE /:id. Deleting an absent user still succeeds.
func (h *UserHandler) Delete(c *gin.Context) {
	orgCtx, ok := middleware.GetOrgContext(c)
	if !ok {
		writeError(c, errOrgMissing)
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeInvalidRequest(c, "User id must be numeric.")
		return
	}

	if err := h.directory.DeleteByID(c.Request.Context(), orgCtx.Org, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
