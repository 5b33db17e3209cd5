package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/crm-accounts/internal/container"
	handlers "github.com/oksasatya/crm-accounts/internal/interface/http"
	"github.com/oksasatya/crm-accounts/internal/interface/middleware"
)

// AccountModule wires account management routes. All of them require a session;
// the application policy decides what each actor may do.
type AccountModule struct {
	Handler *handlers.AccountHandler
	Auth    gin.HandlerFunc
}

func NewAccountModule(h *handlers.AccountHandler, auth gin.HandlerFunc) *AccountModule {
	return &AccountModule{Handler: h, Auth: auth}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(m.Auth)
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByActor(), nil))
	{
		auth.GET("/users", m.Handler.List)
		auth.POST("/users", m.Handler.Create)
		auth.POST("/register", m.Handler.Create)
		auth.GET("/users/search", m.Handler.Search)
		auth.GET("/users/:id", m.Handler.Get)
		auth.PATCH("/users/:id/toggle-active", m.Handler.ToggleActive)
		auth.DELETE("/users/:id", m.Handler.Delete)
		auth.DELETE("/delete/:id", m.Handler.Delete)
		auth.POST("/me/avatar", m.Handler.UploadAvatar)
	}
}
