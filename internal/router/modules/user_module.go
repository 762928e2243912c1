package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	handlers "github.com/oksasatya/go-ddd-marketplace/internal/interface/http"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
)

// UserModule mounts the buyer account routes under /user.
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    *middleware.Auth
}

func NewUserModule(h *handlers.UserHandler, auth *middleware.Auth) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Prefix() string { return "/user" }

func (m *UserModule) Register(g *gin.RouterGroup) {

	g.POST("/create-user", m.Handler.CreateUser)
	g.POST("/activation", m.Handler.Activate)
	g.POST("/login-user", m.Handler.Login)
	g.GET("/logout", m.Handler.Logout)
	g.GET("/user-info/:id", m.Handler.Info)
	g.POST("/forgot-password", m.Handler.ForgotPassword)
	g.POST("/reset-password", m.Handler.ResetPassword)

	auth := g.Group("/")
	auth.Use(m.Auth.RequireUser())
	{
		auth.GET("/getuser", m.Handler.Me)
		auth.PUT("/update-user-info", m.Handler.UpdateInfo)
		auth.PUT("/update-avatar", m.Handler.UpdateAvatar)
		auth.PUT("/update-user-addresses", m.Handler.UpdateAddresses)
		auth.DELETE("/delete-user-address/:id", m.Handler.DeleteAddress)
		auth.PUT("/update-user-password", m.Handler.UpdatePassword)
	}

	admin := g.Group("/")
	admin.Use(m.Auth.RequireUser(), m.Auth.RequireRole(entity.RoleAdmin))
	{
		admin.GET("/admin-all-users", m.Handler.AdminList)
		admin.DELETE("/delete-user/:id", m.Handler.AdminDelete)
	}
}
