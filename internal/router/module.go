package router

import "github.com/gin-gonic/gin"

// Module is a feature area mounted under BasePath+Prefix(). Register receives
// the group already scoped to that prefix.
type Module interface {
	Prefix() string
	Register(g *gin.RouterGroup)
}
