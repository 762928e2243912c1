package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-marketplace/config"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
)

// NewEngine builds the gin engine with the global middleware chain:
// recovery, request id, scheme detection, CORS and the optional access log.
func NewEngine(cfg *config.Config, logger logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	if !cfg.TrustProxy {
		// c.ClientIP must not believe X-Forwarded-For either
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(logger))
	r.Use(middleware.Scheme(cfg.TrustProxy))

	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) > 0 {
		r.Use(cors.New(corsCfg))
	}
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	return r
}
