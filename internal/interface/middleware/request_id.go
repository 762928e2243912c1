package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware tags each request with an id, reusing an inbound
// X-Request-ID when it is a valid UUID. Errors attached with c.Error are
// logged with that id once the chain returns.
func RequestIDMiddleware(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(HeaderRequestID, id)

		start := time.Now()
		c.Next()

		if logger == nil || len(c.Errors) == 0 {
			return
		}
		entry := logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"route":      c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
		for _, e := range c.Errors {
			entry.WithError(e.Err).Error("request failed")
		}
	}
}
