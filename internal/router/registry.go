package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// BasePath is the prefix every module is mounted under.
const BasePath = "/api/v2"

// Registry collects modules and API-wide middleware before mounting them.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group(BasePath)}
}

// Use adds middleware applied to every module group.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts each module on its own group. Two modules claiming the
// same prefix is a wiring bug and is reported before any route is added.
func (r *Registry) RegisterAll() error {
	seen := make(map[string]bool, len(r.modules))
	for _, m := range r.modules {
		p := m.Prefix()
		if seen[p] {
			return errors.Errorf("router: prefix %q registered twice", BasePath+p)
		}
		seen[p] = true
	}

	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API.Group(m.Prefix()))
	}
	return nil
}

// Prefixes lists mounted module prefixes in registration order.
func (r *Registry) Prefixes() []string {
	out := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, BasePath+m.Prefix())
	}
	return out
}
