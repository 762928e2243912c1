package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-marketplace/config"
	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/internal/container"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/ledger"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/media"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/mongodb"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-marketplace/internal/router"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/mailer"
	"github.com/oksasatya/go-ddd-marketplace/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// MongoDB
	client, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	// Redis, for single-use reset tokens
	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer func() { _ = rdb.Close() }()

	// Media
	store, err := media.NewGCSStore(ctx, media.Config{
		Bucket:          cfg.GCSBucket,
		CredentialsFile: cfg.GCSCredentialsJSONPath,
		PublicBaseURL:   cfg.MediaPublicBaseURL,
	})
	if err != nil {
		log.Fatalf("failed to init media store: %v", err)
	}
	defer func() { _ = store.Close() }()

	jwtManager := helpers.NewJWTManager(
		cfg.JWTSessionSecret, cfg.JWTActivationSecret, cfg.JWTResetSecret,
		cfg.SessionTTL, cfg.ActivationTTL, cfg.ResetTTL,
	)

	notifier, closeNotifier := buildNotifier(cfg, logger)
	defer closeNotifier()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMongo(db)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)
	container.SetMedia(store)
	container.SetNotifier(notifier)
	container.SetLedger(ledger.NewRedisLedger(rdb))

	// Elasticsearch is optional
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := search.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch: %v", err)
		}
		idx := search.NewProductIndex(es, cfg.ESProductsIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("elasticsearch index not ready; product search falls back to mongo")
		} else {
			container.SetProductIndex(idx)
		}
	}

	r := router.NewEngine(cfg, logger)
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	if err := reg.RegisterAll(); err != nil {
		logger.Fatalf("register routes: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// buildNotifier picks the mail transport from config.
func buildNotifier(cfg *config.Config, logger *logrus.Logger) (application.Notifier, func()) {
	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; emails are logged, not sent")
		return mailer.LogNotifier{Logger: logger}, func() {}
	}
	if cfg.QueueMail() {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("emails are queued for the email worker")
		return mailer.NewQueueNotifier(pub), pub.Close
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}
	return mailer.NewDirectNotifier(mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)), func() {}
}
