package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/clothing_shop/internal/auth"
	"github.com/Skotchmaster/clothing_shop/internal/cart"
	"github.com/Skotchmaster/clothing_shop/internal/config"
	"github.com/Skotchmaster/clothing_shop/internal/es"
	"github.com/Skotchmaster/clothing_shop/internal/httpserver"
	"github.com/Skotchmaster/clothing_shop/internal/logging"
	"github.com/Skotchmaster/clothing_shop/internal/mykafka"
	"github.com/Skotchmaster/clothing_shop/internal/repo"
	"github.com/Skotchmaster/clothing_shop/internal/search"
	"github.com/Skotchmaster/clothing_shop/internal/service"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.RefreshSecret, "REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.OpenDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS not set, events disabled")
	}

	var index *search.Index
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		index = &search.Index{ES: esClient, Name: cfg.ESIndex}
	} else {
		logger.Warn("ES_URL not set, search disabled")
	}

	gormRepo := &repo.GormRepo{DB: db}
	carts := cart.NewSessionStore()
	tokens := &auth.TokenService{DB: db, JWTSecret: cfg.JWTSecret, RefreshSecret: cfg.RefreshSecret}

	deps := &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{DB: db, Tokens: tokens, Producer: producer},
		ProductHandler: &httpserver.ProductHTTP{
			Svc:      &service.CatalogService{Repo: gormRepo},
			Producer: producer,
			Index:    index,
		},
		CartHandler: &httpserver.CartHTTP{
			Svc:      &service.CartService{Carts: carts, Repo: gormRepo},
			Producer: producer,
		},
		CheckoutHandler: &httpserver.CheckoutHTTP{
			Svc:      &service.CheckoutService{Carts: carts, Repo: gormRepo},
			Producer: producer,
		},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: gormRepo}},
		Tokens:       tokens,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(httpserver.RequestLogger(logger))

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
