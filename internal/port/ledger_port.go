package port

import (
	"context"

	"github.com/nikolayk812/cartledger/internal/domain"
)

// OrderLedger is the sole channel to the external order-of-record service.
type OrderLedger interface {
	// GetOrder has no side effects and always reflects the latest committed version.
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)

	// UpdateOrder applies the patch iff the request's expected version matches
	// the ledger's current version, and returns the fully updated snapshot.
	// A rejected patch has no side effect.
	UpdateOrder(ctx context.Context, req domain.MutationRequest) (domain.Order, error)

	// PayOrderZero settles an order whose total is exactly zero, bypassing the
	// charge path.
	PayOrderZero(ctx context.Context, orderID, idempotencyKey string) (domain.Receipt, error)
}

// LocationDirectory is the location-lookup collaborator used once at startup
// to resolve the governing location id.
type LocationDirectory interface {
	ListLocations(ctx context.Context) ([]domain.Location, error)
}
