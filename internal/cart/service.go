package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nikolayk812/cartledger/internal/domain"
	"github.com/nikolayk812/cartledger/internal/port"
)

// Service exposes the cart operations. Each call is one independent
// read-modify-write cycle against the ledger: the current snapshot is always
// refetched first, so no version is ever cached across calls, and correctness
// under concurrent writers comes entirely from the ledger's version check.
// The service itself holds no per-order state and no locks.
type Service struct {
	ledger  port.OrderLedger
	builder *Builder
	logger  *slog.Logger

	maxRetries    uint64
	retryInterval time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetry bounds the transient-failure resubmission budget per patch.
func WithRetry(maxRetries uint64, initialInterval time.Duration) Option {
	return func(s *Service) {
		s.maxRetries = maxRetries
		s.retryInterval = initialInterval
	}
}

func NewService(ledger port.OrderLedger, builder *Builder, opts ...Option) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("ledger is nil")
	}
	if builder == nil {
		return nil, errors.New("builder is nil")
	}

	s := &Service{
		ledger:        ledger,
		builder:       builder,
		logger:        slog.Default(),
		maxRetries:    3,
		retryInterval: 250 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := s.ledger.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("ledger.GetOrder: %w", err)
	}

	return order, nil
}

func (s *Service) AddItem(ctx context.Context, orderID, catalogObjectID string, quantity int64) (domain.Order, error) {
	return s.run(ctx, "addItem", orderID, func(snapshot domain.Order) (domain.MutationRequest, error) {
		return s.builder.AddItem(snapshot, catalogObjectID, quantity)
	})
}

func (s *Service) SetItemQuantity(ctx context.Context, orderID, uid string, quantity int64) (domain.Order, error) {
	return s.run(ctx, "setItemQuantity", orderID, func(snapshot domain.Order) (domain.MutationRequest, error) {
		return s.builder.SetItemQuantity(snapshot, uid, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, orderID, uid string) (domain.Order, error) {
	return s.run(ctx, "removeItem", orderID, func(snapshot domain.Order) (domain.MutationRequest, error) {
		return s.builder.RemoveItem(snapshot, uid)
	})
}

func (s *Service) ClearCart(ctx context.Context, orderID string) (domain.Order, error) {
	return s.run(ctx, "clearCart", orderID, func(snapshot domain.Order) (domain.MutationRequest, error) {
		return s.builder.ClearCart(snapshot)
	})
}

func (s *Service) SetShippingFulfillment(ctx context.Context, orderID string, recipient domain.Recipient) (domain.Order, error) {
	return s.run(ctx, "setShippingFulfillment", orderID, func(snapshot domain.Order) (domain.MutationRequest, error) {
		return s.builder.SetShippingFulfillment(snapshot, recipient)
	})
}

type opState int

const (
	stateFetching opState = iota
	stateBuilding
	statePatching
	stateApplied
	stateConflict
	stateRejected
	stateTransientFailed
)

type buildFunc func(snapshot domain.Order) (domain.MutationRequest, error)

// run drives one mutation through its states:
//
//	Fetching -> Building -> Patching -> {Applied | Conflict | Rejected | TransientFailed}
//
// Conflict is terminal from this core's point of view: resubmitting would
// reapply an intent computed against a superseded snapshot, so the caller
// decides whether to restart the whole cycle from a fresh fetch.
func (s *Service) run(ctx context.Context, op, orderID string, build buildFunc) (domain.Order, error) {
	var (
		snapshot domain.Order
		req      domain.MutationRequest
		patched  domain.Order
		err      error
	)

	for state := stateFetching; ; {
		switch state {
		case stateFetching:
			snapshot, err = s.ledger.GetOrder(ctx, orderID)
			if err != nil {
				return domain.Order{}, fmt.Errorf("%s: ledger.GetOrder: %w", op, err)
			}
			state = stateBuilding

		case stateBuilding:
			req, err = build(snapshot)
			if err != nil {
				state = stateRejected
				continue
			}
			state = statePatching

		case statePatching:
			patched, err = s.patch(ctx, req)
			switch {
			case err == nil:
				state = stateApplied
			case errors.Is(err, domain.ErrVersionConflict):
				state = stateConflict
			case errors.Is(err, domain.ErrTransient):
				state = stateTransientFailed
			default:
				state = stateRejected
			}

		case stateApplied:
			// The returned snapshot is the ledger's current truth, adopted verbatim.
			s.logger.Debug("mutation applied",
				"op", op,
				"order_id", orderID,
				"version", patched.Version,
			)
			return patched, nil

		case stateConflict:
			s.logger.Debug("mutation lost the version race",
				"op", op,
				"order_id", orderID,
				"expected_version", req.ExpectedVersion,
			)
			return domain.Order{}, fmt.Errorf("%s: %w", op, err)

		case stateRejected, stateTransientFailed:
			return domain.Order{}, fmt.Errorf("%s: %w", op, err)
		}
	}
}

// patch submits the request, resubmitting the identical body and key on
// transient failures only, within the bounded retry budget. The ledger is
// contracted to collapse duplicate (key, body) submissions into one effect.
func (s *Service) patch(ctx context.Context, req domain.MutationRequest) (domain.Order, error) {
	operation := func() (domain.Order, error) {
		order, err := s.ledger.UpdateOrder(ctx, req)
		if err != nil {
			if errors.Is(err, domain.ErrTransient) {
				return domain.Order{}, err
			}
			return domain.Order{}, backoff.Permanent(err)
		}
		return order, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryInterval

	return backoff.RetryWithData(operation, backoff.WithContext(backoff.WithMaxRetries(bo, s.maxRetries), ctx))
}
