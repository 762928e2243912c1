package mongodb

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
)

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductsCollection)}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.Reviews == nil {
		p.Reviews = []entity.Review{}
	}
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return errors.Wrap(err, "insert product")
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	var p entity.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrap(err, "find product")
	}
	return &p, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *ProductRepository) ListByShop(ctx context.Context, shopID primitive.ObjectID) ([]entity.Product, error) {
	return r.find(ctx, bson.M{"shopId": shopID}, options.Find().SetSort(newestFirst))
}

func (r *ProductRepository) List(ctx context.Context) ([]entity.Product, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

// SearchByName matches products whose name contains q, case-insensitively.
func (r *ProductRepository) SearchByName(ctx context.Context, q string, limit int) ([]entity.Product, error) {
	filter := bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}}
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]entity.Product, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	defer cur.Close(ctx)

	products := []entity.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

// UpsertReview runs as an update pipeline so concurrent reviewers of the same
// product never overwrite each other. A replaced entry keeps its createdAt.
func (r *ProductRepository) UpsertReview(ctx context.Context, productID primitive.ObjectID, rev entity.Review) (*entity.Product, error) {
	reviews := bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}}
	reviewerIDs := bson.M{"$map": bson.M{"input": reviews, "as": "r", "in": "$$r.user._id"}}
	replaced := bson.M{"$map": bson.M{
		"input": reviews,
		"as":    "r",
		"in": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$$r.user._id", rev.User.ID}},
			bson.M{"$mergeObjects": bson.A{"$$r", bson.M{
				"user":    bson.M{"$literal": rev.User},
				"rating":  rev.Rating,
				"comment": bson.M{"$literal": rev.Comment},
			}}},
			"$$r",
		}},
	}}
	appended := bson.M{"$concatArrays": bson.A{reviews, bson.A{bson.M{"$literal": rev}}}}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"reviews": bson.M{"$cond": bson.A{
			bson.M{"$in": bson.A{rev.User.ID, reviewerIDs}}, replaced, appended,
		}}}}},
		{{Key: "$set", Value: bson.M{"ratings": bson.M{"$ifNull": bson.A{bson.M{"$avg": "$reviews.rating"}, 0.0}}}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p entity.Product
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": productID}, pipeline, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrap(err, "upsert product review")
	}
	return &p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
