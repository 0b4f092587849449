package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/trade-hub/trade-hub/internal/api/http"
	"github.com/trade-hub/trade-hub/internal/application/audit"
	"github.com/trade-hub/trade-hub/internal/application/auth"
	"github.com/trade-hub/trade-hub/internal/application/item"
	"github.com/trade-hub/trade-hub/internal/application/notification"
	"github.com/trade-hub/trade-hub/internal/application/purchase"
	"github.com/trade-hub/trade-hub/internal/application/swap"
	"github.com/trade-hub/trade-hub/internal/application/user"
	"github.com/trade-hub/trade-hub/internal/config"
	"github.com/trade-hub/trade-hub/internal/infrastructure/payment"
	"github.com/trade-hub/trade-hub/internal/infrastructure/postgres"
	"github.com/trade-hub/trade-hub/internal/infrastructure/sse"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	itemRepo := postgres.NewItemRepository(pool)
	swapRepo := postgres.NewSwapRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)

	// infrastructure
	sseHub := sse.NewHub()
	var gateway purchase.PaymentGateway
	if cfg.PaymentGatewayURL != "" {
		gateway = payment.NewHTTPGateway(cfg.PaymentGatewayURL, cfg.PaymentGatewayTimeout)
	} else {
		logger.Warn().Msg("no payment gateway configured, accepting all payments")
		gateway = payment.NewStaticGateway()
	}

	policy, err := item.NewPolicy(cfg.ListingPolicyRules)
	if err != nil {
		log.Fatalf("listing policy error: %v", err)
	}

	// services
	auditSvc := audit.NewService(auditRepo, logger)
	notificationSvc := notification.NewService(notificationRepo, sseHub, logger)
	itemSvc := item.NewService(itemRepo, policy, logger)
	swapSvc := swap.NewService(swapRepo, itemSvc, notificationSvc, auditSvc, logger)
	purchaseSvc := purchase.NewService(purchaseRepo, itemSvc, gateway, notificationSvc, auditSvc, logger)
	userSvc := user.NewService(userRepo, logger)
	authSvc := auth.NewService(userRepo, sessionRepo, cfg.SessionTTL, logger)

	// API server
	apiServer := httpapi.NewServer(itemSvc, swapSvc, purchaseSvc, notificationSvc, auditSvc, authSvc, userSvc, sseHub, cfg.SessionCookieName, cfg.SessionCookieSecure)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// background loops
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := sessionRepo.DeleteExpired(context.Background()); err == nil && n > 0 {
				logger.Debug().Int("count", n).Msg("expired sessions removed")
			}
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
	sseHub.Stop()
}
