package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
)

type ShopRepository struct {
	coll *mongo.Collection
}

func NewShopRepository(db *mongo.Database) *ShopRepository {
	return &ShopRepository{coll: db.Collection(ShopsCollection)}
}

func (r *ShopRepository) Create(ctx context.Context, s *entity.Shop) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return errors.Wrap(err, "insert shop")
	}
	return nil
}

func (r *ShopRepository) GetByID(ctx context.Context, id primitive.ObjectID, withPassword bool) (*entity.Shop, error) {
	return r.findOne(ctx, bson.M{"_id": id}, withPassword)
}

func (r *ShopRepository) GetByEmail(ctx context.Context, email string, withPassword bool) (*entity.Shop, error) {
	return r.findOne(ctx, bson.M{"email": email}, withPassword)
}

func (r *ShopRepository) findOne(ctx context.Context, filter bson.M, withPassword bool) (*entity.Shop, error) {
	opts := options.FindOne()
	if !withPassword {
		opts.SetProjection(withoutPassword)
	}
	var s entity.Shop
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrap(err, "find shop")
	}
	return &s, nil
}

func (r *ShopRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "count shops by email")
	}
	return n > 0, nil
}

// Update overwrites the mutable shop fields; isActivated and the password
// are not touched here.
func (r *ShopRepository) Update(ctx context.Context, s *entity.Shop) error {
	set := bson.M{
		"name":           s.Name,
		"description":    s.Description,
		"address":        s.Address,
		"phoneNumber":    s.PhoneNumber,
		"zipCode":        s.ZipCode,
		"avatar":         s.Avatar,
		"withdrawMethod": s.WithdrawMethod,
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": s.ID}, bson.M{"$set": set})
	if err != nil {
		return errors.Wrap(err, "update shop")
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ShopRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": hash}})
	if err != nil {
		return errors.Wrap(err, "update shop password")
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ShopRepository) List(ctx context.Context) ([]entity.Shop, error) {
	opts := options.Find().SetSort(newestFirst).SetProjection(withoutPassword)
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list shops")
	}
	defer cur.Close(ctx)

	shops := []entity.Shop{}
	if err := cur.All(ctx, &shops); err != nil {
		return nil, errors.Wrap(err, "decode shops")
	}
	return shops, nil
}

func (r *ShopRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete shop")
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ShopRepository = (*ShopRepository)(nil)
