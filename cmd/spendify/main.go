package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spendify/internal/amqp"
	"spendify/internal/auth"
	"spendify/internal/cache"
	"spendify/internal/cli"
	apphttp "spendify/internal/http"
	applog "spendify/internal/log"
	"spendify/internal/receipts"
	"spendify/internal/services"
)

func main() {
	logger, cfg := cli.Bootstrap(applog.ComponentApp)

	repo := cli.OpenStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	viewCache := cache.NewLRUCache[services.View](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(viewCache)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(repo, issuer)
	ledger := services.NewLedgerService(repo, viewCache)

	// The export pipeline is optional; without AMQP the worker's backlog
	// sweep still picks mutations up from the export log.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP export pipeline enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, exports rely on the worker's backlog sweep")
	}

	receiptStore, err := receipts.NewStore(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize receipt store", "error", err, "backend", cfg.ReceiptBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:         authService,
		TokenIssuer:  issuer,
		Ledger:       ledger,
		Transactions: services.NewTransactionService(repo, ledger, amqpClient),
		Recurring:    services.NewRecurringService(repo, ledger),
		Receipts:     receiptStore,
		Storage:      repo,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting spendify server", "port", cfg.Port, "receipt_backend", cfg.ReceiptBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
