package router

import (
	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/internal/container"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/mongodb"
	handlers "github.com/oksasatya/go-ddd-marketplace/internal/interface/http"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-marketplace/internal/router/modules"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	mailtpl "github.com/oksasatya/go-ddd-marketplace/pkg/mailer/templates"
)

// Deps is everything the HTTP modules need. Tests build it from fakes.
type Deps struct {
	Users    repository.UserRepository
	Shops    repository.ShopRepository
	Products repository.ProductRepository

	UserService    *application.UserService
	ShopService    *application.ShopService
	ProductService *application.ProductService

	Auth    *middleware.Auth
	Cookies *helpers.Manager
	Health  modules.Pinger
}

// BuildDeps wires services over the given repositories using the container's
// infrastructure singletons.
func BuildDeps(users repository.UserRepository, shops repository.ShopRepository, products repository.ProductRepository) Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()

	links := application.Links{
		UserActivationURL: cfg.UserActivationURL,
		ShopActivationURL: cfg.ShopActivationURL,
		ResetPasswordURL:  cfg.ResetPasswordURL,
		Branding: mailtpl.Branding{
			CompanyName: cfg.CompanyName,
			AppName:     cfg.AppName,
			LogoURL:     cfg.LogoURL,
			SupportURL:  cfg.SupportURL,
		},
	}

	return Deps{
		Users:          users,
		Shops:          shops,
		Products:       products,
		UserService:    application.NewUserService(users, jwt, container.GetMedia(), container.GetNotifier(), container.GetLedger(), links, logger),
		ShopService:    application.NewShopService(shops, jwt, container.GetMedia(), container.GetNotifier(), container.GetLedger(), links, logger),
		ProductService: application.NewProductService(products, container.GetMedia(), container.GetProductIndex(), logger),
		Auth:           middleware.NewAuth(jwt, users, shops),
		Cookies:        helpers.NewCookie(cfg.CookieDomain, cfg.CookieSameSite),
	}
}

// Mount registers every module built from d.
func Mount(r *Registry, d Deps) {
	r.Add(modules.NewUserModule(handlers.NewUserHandler(d.UserService, d.Cookies), d.Auth))
	r.Add(modules.NewShopModule(handlers.NewShopHandler(d.ShopService, d.Cookies), d.Auth))
	r.Add(modules.NewProductModule(handlers.NewProductHandler(d.ProductService), d.Auth))
	if d.Health != nil {
		r.Add(modules.NewHealthModule(d.Health))
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	db := container.GetMongo()
	d := BuildDeps(
		mongodb.NewUserRepository(db),
		mongodb.NewShopRepository(db),
		mongodb.NewProductRepository(db),
	)
	d.Health = modules.MongoPinger(db.Client())
	Mount(r, d)
}
