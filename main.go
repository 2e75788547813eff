package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nikolayk812/cartledger/internal/cart"
	"github.com/nikolayk812/cartledger/internal/checkout"
	"github.com/nikolayk812/cartledger/internal/config"
	"github.com/nikolayk812/cartledger/internal/httpapi"
	"github.com/nikolayk812/cartledger/internal/idempotency"
	"github.com/nikolayk812/cartledger/internal/ledger"
	"github.com/nikolayk812/cartledger/internal/payments"
	"github.com/nikolayk812/cartledger/internal/port"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	ledgerClient, err := ledger.New(cfg.LedgerBaseURL, cfg.AccessToken, logger)
	if err != nil {
		return fmt.Errorf("ledger.New: %w", err)
	}

	locationID := cfg.LocationID
	if locationID == "" {
		locationID, err = resolveLocation(ledgerClient)
		if err != nil {
			return fmt.Errorf("resolveLocation: %w", err)
		}
	}
	logger.Info("governing location resolved", "location_id", locationID)

	keys := idempotency.NewGenerator()

	builder, err := cart.NewBuilder(locationID, keys)
	if err != nil {
		return fmt.Errorf("cart.NewBuilder: %w", err)
	}

	cartSvc, err := cart.NewService(ledgerClient, builder,
		cart.WithLogger(logger),
		cart.WithRetry(cfg.MaxRetries, cfg.RetryInterval),
	)
	if err != nil {
		return fmt.Errorf("cart.NewService: %w", err)
	}

	paymentsClient, err := payments.New(cfg.LedgerBaseURL, cfg.AccessToken)
	if err != nil {
		return fmt.Errorf("payments.New: %w", err)
	}

	checkoutSvc, err := checkout.NewService(ledgerClient, paymentsClient, keys, logger)
	if err != nil {
		return fmt.Errorf("checkout.NewService: %w", err)
	}

	handler, err := httpapi.NewHandler(cartSvc, checkoutSvc, logger)
	if err != nil {
		return fmt.Errorf("httpapi.NewHandler: %w", err)
	}

	logger.Info("listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, httpapi.NewRouter(handler)); err != nil {
		return fmt.Errorf("http.ListenAndServe: %w", err)
	}

	return nil
}

// resolveLocation implements the single-location deployment rule: the first
// entry of the directory governs, decided once at startup.
func resolveLocation(directory port.LocationDirectory) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	locations, err := directory.ListLocations(ctx)
	if err != nil {
		return "", fmt.Errorf("directory.ListLocations: %w", err)
	}

	if len(locations) == 0 {
		return "", errors.New("no locations available")
	}

	return locations[0].ID, nil
}
