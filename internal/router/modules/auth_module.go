package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/crm-accounts/internal/container"
	handlers "github.com/oksasatya/crm-accounts/internal/interface/http"
	"github.com/oksasatya/crm-accounts/internal/interface/middleware"
)

// AuthModule wires session routes.
// Public: POST /api/login, POST /api/refresh
// Protected: POST /api/logout, GET /api/me, POST /api/change
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, auth gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(m.Auth)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
		// password changes are brute-forceable through old_password
		auth.POST("/change", middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByActor(), nil), m.Handler.ChangePassword)
	}
}
