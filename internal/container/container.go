package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/go-ddd-marketplace/config"
	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoDB     *mongo.Database
	redisClient *redis.Client

	jwtManager *helpers.JWTManager

	media        application.MediaStore
	notifier     application.Notifier
	ledger       application.TokenLedger
	productIndex application.ProductIndex
)

func SetConfig(c *config.Config)          { cfg = c }
func GetConfig() *config.Config           { return cfg }
func SetLogger(l *logrus.Logger)          { logger = l }
func GetLogger() *logrus.Logger           { return logger }
func SetMongo(db *mongo.Database)         { mongoDB = db }
func GetMongo() *mongo.Database           { return mongoDB }
func SetRedis(r *redis.Client)            { redisClient = r }
func GetRedis() *redis.Client             { return redisClient }
func SetJWT(m *helpers.JWTManager)        { jwtManager = m }
func GetJWT() *helpers.JWTManager         { return jwtManager }
func SetMedia(m application.MediaStore)   { media = m }
func GetMedia() application.MediaStore    { return media }
func SetNotifier(n application.Notifier)  { notifier = n }
func GetNotifier() application.Notifier   { return notifier }
func SetLedger(l application.TokenLedger) { ledger = l }
func GetLedger() application.TokenLedger  { return ledger }

// SetProductIndex is only called when Elasticsearch is configured; the
// getter then stays a nil interface and search uses Mongo.
func SetProductIndex(i application.ProductIndex) { productIndex = i }
func GetProductIndex() application.ProductIndex  { return productIndex }
