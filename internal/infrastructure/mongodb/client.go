package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	UsersCollection    = "users"
	ShopsCollection    = "shops"
	ProductsCollection = "products"
)

// NewClient connects to MongoDB and verifies the primary is reachable.
func NewClient(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "mongo ping")
	}
	return client, nil
}

// EnsureIndexes creates the unique email indexes and the listing indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	uniqueEmail := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	byCreated := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}

	if _, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{uniqueEmail, byCreated}); err != nil {
		return errors.Wrap(err, "create user indexes")
	}
	if _, err := db.Collection(ShopsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{uniqueEmail, byCreated}); err != nil {
		return errors.Wrap(err, "create shop indexes")
	}
	productIdx := []mongo.IndexModel{
		byCreated,
		{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Collection(ProductsCollection).Indexes().CreateMany(ctx, productIdx); err != nil {
		return errors.Wrap(err, "create product indexes")
	}
	return nil
}

var (
	withoutPassword = bson.M{"password": 0}
	newestFirst     = bson.D{{Key: "createdAt", Value: -1}}
)
