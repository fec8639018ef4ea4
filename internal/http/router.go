package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/smallbiznis/valora-directory/internal/config"
	"github.com/smallbiznis/valora-directory/internal/http/handler"
	httpmiddleware "github.com/smallbiznis/valora-directory/internal/http/middleware"
	"github.com/smallbiznis/valora-directory/internal/middleware"
	"github.com/smallbiznis/valora-directory/internal/org"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(
	cfg config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	authMiddleware *httpmiddleware.Auth,
	resolver *org.Resolver,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Everything below is tenant scoped.
	api := r.Group("", httpmiddleware.Org(resolver))

	api.POST("/signin", authHandler.SignIn)
	api.POST("/logout", authHandler.Logout)
	api.POST("/signup", authHandler.SignUp)
	api.GET("/signin_token", authHandler.SignInToken)

	api.GET("/.well-known/jwks.json", authHandler.JWKS)

	api.GET("/available", authMiddleware.RequireUser, userHandler.Available)
	api.GET("/:id", authMiddleware.RequireUser, userHandler.Get)
	api.POST("/", authMiddleware.RequireUser, userHandler.Create)
	api.GET("/", authMiddleware.RequireUser, userHandler.List)
	api.PUT("/:id", authMiddleware.RequireUser, userHandler.UpdateByID)
	api.PUT("/", authMiddleware.RequireUser, userHandler.UpdateSelf)
	api.DELETE("/:id", authMiddleware.RequireUser, userHandler.Delete)

	return r
}
