package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	handlers "github.com/oksasatya/go-ddd-marketplace/internal/interface/http"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
)

type ProductModule struct {
	Handler *handlers.ProductHandler
	Auth    *middleware.Auth
}

func NewProductModule(h *handlers.ProductHandler, auth *middleware.Auth) *ProductModule {
	return &ProductModule{Handler: h, Auth: auth}
}

func (m *ProductModule) Prefix() string { return "/product" }

func (m *ProductModule) Register(g *gin.RouterGroup) {

	g.GET("/get-all-products", m.Handler.List)
	g.GET("/get-all-products-shop/:id", m.Handler.ListByShop)
	g.GET("/search", m.Handler.Search)

	g.POST("/create-product", m.Auth.RequireSeller(), m.Handler.Create)
	g.DELETE("/delete-shop-product/:id", m.Auth.RequireSeller(), m.Handler.Delete)
	g.PUT("/create-new-review", m.Auth.RequireUser(), m.Handler.Review)
	g.GET("/admin-all-products", m.Auth.RequireUser(), m.Auth.RequireRole(entity.RoleAdmin), m.Handler.List)
}
