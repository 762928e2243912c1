package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
)

// Pinger checks a backing store.
type Pinger func(ctx context.Context) error

// MongoPinger pings the primary.
func MongoPinger(client *mongo.Client) Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

type HealthModule struct {
	Ping Pinger
}

func NewHealthModule(ping Pinger) *HealthModule { return &HealthModule{Ping: ping} }

func (m *HealthModule) Prefix() string { return "/health" }

func (m *HealthModule) Register(g *gin.RouterGroup) {
	g.GET("", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := m.Ping(ctx); err != nil {
			_ = c.Error(err)
			response.Error(c, http.StatusServiceUnavailable, "database unavailable", response.ErrorBody{Code: apperror.KindUpstream})
			return
		}
		response.Success(c, http.StatusOK, gin.H{"database": "ok"}, "healthy", nil)
	})
}
