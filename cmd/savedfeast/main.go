package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/GhadiSaab/savedfeast-client/internal/api"
	"github.com/GhadiSaab/savedfeast-client/internal/auth"
	"github.com/GhadiSaab/savedfeast-client/internal/cart"
	"github.com/GhadiSaab/savedfeast-client/internal/config"
	"github.com/GhadiSaab/savedfeast-client/internal/countdown"
	"github.com/GhadiSaab/savedfeast-client/internal/events"
	"github.com/GhadiSaab/savedfeast-client/internal/logging"
	"github.com/GhadiSaab/savedfeast-client/internal/meals"
	"github.com/GhadiSaab/savedfeast-client/internal/orders"
	"github.com/GhadiSaab/savedfeast-client/internal/retry"
	"github.com/GhadiSaab/savedfeast-client/internal/securestore"
)

// Smoke binary: signs in with env credentials, walks the main flows once
// and prints what it finds. The real presentation layer lives elsewhere;
// this exists to exercise the client stack end to end against a live API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	ctx := logging.IntoContext(context.Background(), logger)

	store, err := securestore.NewSQLiteStore(cfg.StorePath, cfg.StoreKey)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer store.Close()

	sink := events.ForConfig(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer sink.Close()

	policy := retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}

	client := api.NewClient(cfg.APIBaseURL, store, cfg.RequestTimeout)
	authSvc := &auth.Service{
		API:                client,
		Store:              store,
		Sink:               sink,
		Retry:              policy,
		LogoutTimeout:      cfg.LogoutTimeout,
		CurrentUserTimeout: cfg.CurrentUserTimeout,
	}
	mealSvc := &meals.Service{API: client, Retry: policy}
	orderSvc := &orders.Service{API: client, Sink: sink, Retry: policy}

	user, err := authSvc.CurrentUser(ctx)
	if err != nil {
		logger.Warn("current user lookup failed", "error", err)
	}
	if user == nil {
		email, password := os.Getenv("SAVEDFEAST_EMAIL"), os.Getenv("SAVEDFEAST_PASSWORD")
		if email == "" || password == "" {
			log.Fatal("no session and no SAVEDFEAST_EMAIL/SAVEDFEAST_PASSWORD set")
		}
		user, err = authSvc.Login(ctx, auth.Credentials{Email: email, Password: password})
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}
	logger.Info("signed in", "user_id", user.ID, "email", user.Email)

	page, err := mealSvc.List(ctx, meals.ListParams{Page: 1})
	if err != nil {
		log.Fatalf("meal list failed: %v", err)
	}
	logger.Info("meals available", "count", len(page.Data), "total", page.Total)

	basket := cart.New()
	for _, meal := range page.Data {
		if meal.Quantity > 0 {
			basket.Add(meal)
			break
		}
	}
	logger.Info("cart", "items", basket.ItemCount(), "total", basket.Total())

	history, err := orderSvc.List(ctx, 1)
	if err != nil {
		log.Fatalf("order list failed: %v", err)
	}
	for _, order := range history.Data {
		attrs := []any{"order_id", order.ID, "status", order.Status, "total", order.TotalAmount}
		if target, ok := countdown.TargetFor(&order, nil); ok {
			attrs = append(attrs, "pickup_window_ends_in", countdown.SnapshotAt(target, time.Now()).Display)
		}
		logger.Info("order", attrs...)
	}
}
