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

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if u.Addresses == nil {
		u.Addresses = []entity.Address{}
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID, withPassword bool) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, withPassword)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string, withPassword bool) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, withPassword)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, withPassword bool) (*entity.User, error) {
	opts := options.FindOne()
	if !withPassword {
		opts.SetProjection(withoutPassword)
	}
	var u entity.User
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "count users by email")
	}
	return n > 0, nil
}

// Update overwrites the mutable profile fields. The password is changed
// only through UpdatePassword.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if u.Addresses == nil {
		u.Addresses = []entity.Address{}
	}
	set := bson.M{
		"name":        u.Name,
		"email":       u.Email,
		"phoneNumber": u.PhoneNumber,
		"addresses":   u.Addresses,
		"role":        u.Role,
		"avatar":      u.Avatar,
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return errors.Wrap(err, "update user")
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": hash}})
	if err != nil {
		return errors.Wrap(err, "update user password")
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	opts := options.Find().SetSort(newestFirst).SetProjection(withoutPassword)
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer cur.Close(ctx)

	users := []entity.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
