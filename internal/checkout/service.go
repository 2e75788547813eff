package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikolayk812/cartledger/internal/domain"
	"github.com/nikolayk812/cartledger/internal/idempotency"
	"github.com/nikolayk812/cartledger/internal/port"
)

// Service settles payment for an order. The amount is always computed from a
// snapshot fetched inside Settle itself, never from one the caller held: a
// cart mutation may have landed between the last cart view and the charge.
type Service struct {
	ledger   port.OrderLedger
	payments port.PaymentProcessor
	keys     idempotency.Generator
	logger   *slog.Logger
}

func NewService(ledger port.OrderLedger, payments port.PaymentProcessor, keys idempotency.Generator, logger *slog.Logger) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("ledger is nil")
	}
	if payments == nil {
		return nil, errors.New("payment processor is nil")
	}
	if keys == nil {
		return nil, errors.New("key generator is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		ledger:   ledger,
		payments: payments,
		keys:     keys,
		logger:   logger,
	}, nil
}

// Settle charges the order's current total against the given payment source.
// A zero total settles through the ledger's zero path; a zero amount must
// never reach payment capture.
func (s *Service) Settle(ctx context.Context, orderID, sourceID string) (domain.Receipt, error) {
	var zero domain.Receipt

	order, err := s.ledger.GetOrder(ctx, orderID)
	if err != nil {
		return zero, fmt.Errorf("ledger.GetOrder: %w", err)
	}

	key, err := s.keys.NewKey()
	if err != nil {
		return zero, fmt.Errorf("keys.NewKey: %w", err)
	}

	if order.Total.IsZero() {
		receipt, err := s.ledger.PayOrderZero(ctx, order.ID, key)
		if err != nil {
			return zero, fmt.Errorf("ledger.PayOrderZero: %w", err)
		}

		s.logger.Info("order settled at zero total", "order_id", order.ID)
		return receipt, nil
	}

	if sourceID == "" {
		return zero, fmt.Errorf("payment source is required: %w", domain.ErrValidation)
	}

	receipt, err := s.payments.CreatePayment(ctx, domain.PaymentRequest{
		SourceID:       sourceID,
		OrderID:        order.ID,
		Amount:         order.Total,
		IdempotencyKey: key,
	})
	if err != nil {
		return zero, fmt.Errorf("payments.CreatePayment: %w", err)
	}

	s.logger.Info("order paid",
		"order_id", order.ID,
		"payment_id", receipt.PaymentID,
		"amount", receipt.Amount.String(),
	)

	return receipt, nil
}
