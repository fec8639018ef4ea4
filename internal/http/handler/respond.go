package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-directory/internal/domain"
)

// Response codes surfaced to clients. Internal error details never
// leave the process.
const (
	codeServerError           = "SERVER_ERROR"
	codeUserAlreadyRegistered = "USER_ALREADY_REGISTERED"
	codePasswordNotValidated  = "PASSWORD_NOT_VALIDATED"
	codeEmailNotValidated     = "EMAIL_NOT_VALIDATED"
	codeInvalidCredentials    = "INVALID_CREDENTIALS"
	codeNotFound              = "NOT_FOUND"
	codeInvalidRequest        = "INVALID_REQUEST"
)

// errOrgMissing signals a route was registered without the org
// middleware in front of it.
var errOrgMissing = errors.New("org context missing")

// userView is the wire representation of a user. The password hash is
// deliberately absent.
type userView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Status       string     `json:"status"`
	Availability string     `json:"availability"`
	Role         string     `json:"role"`
	Identity     string     `json:"identity"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func viewOf(user domain.User, orgSlug string) userView {
	return userView{
		ID:           strconv.FormatInt(user.ID, 10),
		Name:         user.Name,
		Email:        user.Email,
		Status:       user.Status,
		Availability: user.Availability,
		Role:         user.Role,
		Identity:     user.Identity(orgSlug),
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func viewsOf(users []domain.User, orgSlug string) []userView {
	out := make([]userView, 0, len(users))
	for _, user := range users {
		out = append(out, viewOf(user, orgSlug))
	}
	return out
}

func writeInvalidRequest(c *gin.Context, description string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": codeInvalidRequest, "error": description})
}

// writeError maps domain errors onto the response envelope. Anything
// unrecognised is logged and reported as a bare SERVER_ERROR.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPasswordNotValidated):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "user": nil, "code": codePasswordNotValidated})
	case errors.Is(err, domain.ErrEmailNotValidated):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "user": nil, "code": codeEmailNotValidated})
	case errors.Is(err, domain.ErrUserAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "code": codeUserAlreadyRegistered})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "code": codeInvalidCredentials, "error": "Invalid credentials."})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "code": codeNotFound})
	default:
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "code": codeServerError})
	}
}
