package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
)

// ShopRepository defines the persistence operations for shops.
type ShopRepository interface {
	Create(ctx context.Context, s *entity.Shop) error
	GetByID(ctx context.Context, id primitive.ObjectID, withPassword bool) (*entity.Shop, error)
	GetByEmail(ctx context.Context, email string, withPassword bool) (*entity.Shop, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, s *entity.Shop) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	List(ctx context.Context) ([]entity.Shop, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
