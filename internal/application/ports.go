package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-marketplace/pkg/mailer/templates"
)

// MediaStore uploads and deletes images on the media host.
type MediaStore interface {
	Upload(ctx context.Context, folder string, img *helpers.DataURI) (entity.Image, error)
	Delete(ctx context.Context, publicID string) error
}

// Notifier delivers an email job, inline or through a queue.
type Notifier interface {
	Notify(ctx context.Context, job mailer.EmailJob) error
}

// TokenLedger remembers consumed one-time token ids.
type TokenLedger interface {
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// ProductIndex is the optional full-text index for products.
type ProductIndex interface {
	Index(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// Links are the frontend URLs tokens are appended to, plus email branding.
type Links struct {
	UserActivationURL string
	ShopActivationURL string
	ResetPasswordURL  string
	Branding          mailtpl.Branding
}

// Media folders
const (
	AvatarFolder  = "avatars"
	ProductFolder = "products"
)
