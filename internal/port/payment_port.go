package port

import (
	"context"

	"github.com/nikolayk812/cartledger/internal/domain"
)

// PaymentProcessor captures a non-zero amount against an order.
type PaymentProcessor interface {
	CreatePayment(ctx context.Context, req domain.PaymentRequest) (domain.Receipt, error)
}
