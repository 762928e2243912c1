package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
)

// UserRepository defines the persistence operations for users.
// Reads omit the password hash unless withPassword is set.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id primitive.ObjectID, withPassword bool) (*entity.User, error)
	GetByEmail(ctx context.Context, email string, withPassword bool) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	List(ctx context.Context) ([]entity.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
