package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
)

// Scheme records whether the request arrived over HTTPS (helpers.CtxSecureKey)
// and the client IP ("real_ip"). Forwarded headers are honored only when
// trustProxy is set, i.e. the service runs behind a reverse proxy we control.
func Scheme(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		secure := c.Request.TLS != nil
		if !secure && trustProxy {
			proto := strings.TrimSpace(strings.Split(c.GetHeader("X-Forwarded-Proto"), ",")[0])
			secure = strings.EqualFold(proto, "https")
		}
		c.Set(helpers.CtxSecureKey, secure)
		c.Set("real_ip", clientIP(c, trustProxy))
		c.Next()
	}
}

func clientIP(c *gin.Context, trustProxy bool) string {
	if trustProxy {
		if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
			if ip := net.ParseIP(cf); ip != nil {
				return ip.String()
			}
		}
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return ip.String()
			}
		}
	}
	return c.ClientIP()
}
