package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nodeforge1/nodeforge-website/internal/api/handler"
	"github.com/nodeforge1/nodeforge-website/internal/api/router"
	"github.com/nodeforge1/nodeforge-website/internal/appcontext"
	"github.com/nodeforge1/nodeforge-website/internal/config"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.With().Str("service", "nodeforge").Logger()

	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	handlers := router.Handlers{
		Product:  handler.NewProductHandler(app.ProductService),
		Cart:     handler.NewCartHandler(app.CartService),
		Order:    handler.NewOrderHandler(app.OrderService),
		Checkout: handler.NewCheckoutHandler(app.CheckoutService),
		Webhook:  handler.NewWebhookHandler(app.WebhookService),
		Rate:     handler.NewRateHandler(app.RateService),
		Admin:    handler.NewAdminHandler(app.AuthService),
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler: router.New(handlers, app.AuthService, app.RateBucket, app.AllowedOrigins()),
	}

	// 確認信consumer, 付款完成事件進來就寄信
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	go func() {
		if err := app.EventConsumer.Start(consumerCtx); err != nil {
			log.Info().Err(err).Msg("event consumer stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownCompleted := make(chan struct{}, 1)
	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}

		cancelConsumer()
		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("application shutdown error")
		}

		shutdownCompleted <- struct{}{}
	}()

	log.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	<-shutdownCompleted
	log.Info().Msg("server closed")
}
