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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/brewhollow/shop-backend/internal/cache"
	"github.com/brewhollow/shop-backend/internal/config"
	"github.com/brewhollow/shop-backend/internal/cron"
	"github.com/brewhollow/shop-backend/internal/es"
	"github.com/brewhollow/shop-backend/internal/handlers"
	"github.com/brewhollow/shop-backend/internal/logging"
	"github.com/brewhollow/shop-backend/internal/mailer"
	authmw "github.com/brewhollow/shop-backend/internal/middleware/auth"
	loggingmw "github.com/brewhollow/shop-backend/internal/middleware/logging"
	"github.com/brewhollow/shop-backend/internal/mykafka"
	"github.com/brewhollow/shop-backend/internal/service"
	"github.com/brewhollow/shop-backend/internal/square"
	"github.com/brewhollow/shop-backend/internal/tokenstore"
	httpserver "github.com/brewhollow/shop-backend/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.JWT_SECRET, "JWT_SECRET")
	config.MustNonEmpty(cfg.REFRESH_SECRET, "REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	prod := mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatalf("elasticsearch init: %v", err)
	}

	catalogCache, err := cache.NewCatalogCache(cfg)
	if err != nil {
		log.Fatalf("redis init: %v", err)
	}

	store := tokenstore.New(db)
	squareClient := square.New(cfg.SQUARE_BASE_URL, cfg.SQUARE_ACCESS_TOKEN)

	authSvc := &service.AuthService{
		DB:            db,
		Store:         store,
		Square:        squareClient,
		AccessSecret:  []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}

	feedbackMailer := &mailer.Mailer{
		Host:     cfg.SMTP_HOST,
		Port:     cfg.SMTP_PORT,
		Username: cfg.SMTP_USER,
		Password: cfg.SMTP_PASSWORD,
		From:     cfg.SMTP_USER,
		To:       cfg.FEEDBACK_EMAIL,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Auth:     &handlers.AuthHandler{Svc: authSvc, Producer: prod},
		Feedback: &handlers.FeedbackHandler{DB: db, Producer: prod, Mailer: feedbackMailer},
		Catalog: &handlers.CatalogHandler{
			Square: squareClient,
			Cache:  catalogCache,
			ES:     esClient,
			Index:  "catalog",
		},
		Tokens: &authmw.TokenMiddleware{
			DB:            db,
			Store:         store,
			AccessSecret:  []byte(cfg.JWT_SECRET),
			RefreshSecret: []byte(cfg.REFRESH_SECRET),
		},
	}
	httpserver.Register(e, &deps)

	scheduler := cron.Start(store, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	scheduler.Stop()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := catalogCache.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
