package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-ddd-marketplace/config"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/mongodb"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
)

// seed creates (or promotes) the admin account used for the admin routes.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	client, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDatabase)

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	hash, err := helpers.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	filter := bson.M{"email": cfg.SeedAdminEmail}
	update := bson.M{
		"$set": bson.M{"role": entity.RoleAdmin},
		"$setOnInsert": bson.M{
			"name":      cfg.SeedAdminName,
			"email":     cfg.SeedAdminEmail,
			"password":  hash,
			"addresses": []entity.Address{},
			"avatar":    entity.Image{},
			"createdAt": time.Now(),
		},
	}
	res, err := db.Collection(mongodb.UsersCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if res.UpsertedID != nil {
		fmt.Printf("seeded admin: id=%v email=%s password=%s\n", res.UpsertedID, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
		return
	}
	fmt.Printf("admin role ensured for existing user %s\n", cfg.SeedAdminEmail)
}
