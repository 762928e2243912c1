package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	handlers "github.com/oksasatya/go-ddd-marketplace/internal/interface/http"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
)

// ShopModule mounts the seller routes under /shop.
type ShopModule struct {
	Handler *handlers.ShopHandler
	Auth    *middleware.Auth
}

func NewShopModule(h *handlers.ShopHandler, auth *middleware.Auth) *ShopModule {
	return &ShopModule{Handler: h, Auth: auth}
}

func (m *ShopModule) Prefix() string { return "/shop" }

func (m *ShopModule) Register(g *gin.RouterGroup) {

	g.POST("/create-shop", m.Handler.CreateShop)
	g.POST("/activation", m.Handler.Activate)
	g.POST("/login-shop", m.Handler.Login)
	g.GET("/logout", m.Handler.Logout)
	g.GET("/get-shop-info/:id", m.Handler.Info)
	g.POST("/forgot-password", m.Handler.ForgotPassword)
	g.POST("/reset-password", m.Handler.ResetPassword)

	seller := g.Group("/")
	seller.Use(m.Auth.RequireSeller())
	{
		seller.GET("/getSeller", m.Handler.Me)
		seller.PUT("/update-shop-avatar", m.Handler.UpdateAvatar)
		seller.PUT("/update-seller-info", m.Handler.UpdateInfo)
		seller.PUT("/update-payment-methods", m.Handler.UpdatePaymentMethods)
		seller.DELETE("/delete-withdraw-method", m.Handler.DeleteWithdrawMethod)
	}

	admin := g.Group("/")
	admin.Use(m.Auth.RequireUser(), m.Auth.RequireRole(entity.RoleAdmin))
	{
		admin.GET("/admin-all-sellers", m.Handler.AdminList)
		admin.DELETE("/delete-seller/:id", m.Handler.AdminDelete)
	}
}
