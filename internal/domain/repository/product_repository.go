package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
)

// ProductRepository defines the persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error)
	ListByShop(ctx context.Context, shopID primitive.ObjectID) ([]entity.Product, error)
	List(ctx context.Context) ([]entity.Product, error)
	SearchByName(ctx context.Context, q string, limit int) ([]entity.Product, error)
	// UpsertReview replaces the reviewer's entry or appends r and recomputes
	// ratings as one atomic update, returning the updated product.
	UpsertReview(ctx context.Context, productID primitive.ObjectID, r entity.Review) (*entity.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
