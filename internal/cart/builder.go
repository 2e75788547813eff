package cart

import (
	"errors"
	"fmt"

	"github.com/nikolayk812/cartledger/internal/domain"
	"github.com/nikolayk812/cartledger/internal/idempotency"
)

// Shipping defaults for the single-carrier storefront this core serves.
const (
	defaultCarrier      = "USPS"
	defaultShippingType = "First Class"
)

// Builder translates one cart intent plus the snapshot it was decided against
// into a sparse mutation request. Pure apart from key minting: no network, no
// state. Every request it produces carries the snapshot's version and a fresh
// single-use idempotency key.
type Builder struct {
	locationID string
	keys       idempotency.Generator
}

// NewBuilder binds the builder to the single governing location id resolved
// at startup; it is never re-derived per call.
func NewBuilder(locationID string, keys idempotency.Generator) (*Builder, error) {
	if locationID == "" {
		return nil, errors.New("locationID is empty")
	}
	if keys == nil {
		return nil, errors.New("key generator is nil")
	}

	return &Builder{locationID: locationID, keys: keys}, nil
}

func (b *Builder) AddItem(snapshot domain.Order, catalogObjectID string, quantity int64) (domain.MutationRequest, error) {
	var zero domain.MutationRequest

	if catalogObjectID == "" {
		return zero, fmt.Errorf("catalog object id is empty: %w", domain.ErrValidation)
	}
	// Unlike a quantity change, an add of zero is meaningless.
	if quantity < 1 {
		return zero, fmt.Errorf("add quantity must be at least 1, got %d: %w", quantity, domain.ErrValidation)
	}

	req, err := b.stamp(snapshot)
	if err != nil {
		return zero, err
	}

	req.LineItems = []domain.LineItemChange{{
		CatalogObjectID: catalogObjectID,
		Quantity:        quantity,
	}}

	return req, nil
}

func (b *Builder) SetItemQuantity(snapshot domain.Order, uid string, quantity int64) (domain.MutationRequest, error) {
	var zero domain.MutationRequest

	if quantity < 0 {
		return zero, fmt.Errorf("quantity must not be negative, got %d: %w", quantity, domain.ErrValidation)
	}
	// Quantity 0 keeps the uid slot; only a field-path clear removes it.
	if _, ok := snapshot.FindLineItem(uid); !ok {
		return zero, fmt.Errorf("line item uid[%s] not in order: %w", uid, domain.ErrValidation)
	}

	req, err := b.stamp(snapshot)
	if err != nil {
		return zero, err
	}

	req.LineItems = []domain.LineItemChange{{
		UID:      uid,
		Quantity: quantity,
	}}

	return req, nil
}

func (b *Builder) RemoveItem(snapshot domain.Order, uid string) (domain.MutationRequest, error) {
	var zero domain.MutationRequest

	if _, ok := snapshot.FindLineItem(uid); !ok {
		return zero, fmt.Errorf("line item uid[%s] not in order: %w", uid, domain.ErrValidation)
	}

	req, err := b.stamp(snapshot)
	if err != nil {
		return zero, err
	}

	req.FieldsToClear = []string{domain.LineItemPath(uid)}

	return req, nil
}

func (b *Builder) ClearCart(snapshot domain.Order) (domain.MutationRequest, error) {
	req, err := b.stamp(snapshot)
	if err != nil {
		return domain.MutationRequest{}, err
	}

	req.FieldsToClear = []string{domain.LineItemsPath}

	return req, nil
}

// SetShippingFulfillment replaces the order's fulfillments with a single
// proposed shipment to the given recipient.
func (b *Builder) SetShippingFulfillment(snapshot domain.Order, recipient domain.Recipient) (domain.MutationRequest, error) {
	var zero domain.MutationRequest

	if err := recipient.Validate(); err != nil {
		return zero, err
	}

	req, err := b.stamp(snapshot)
	if err != nil {
		return zero, err
	}

	req.Fulfillments = []domain.Fulfillment{{
		Type:  domain.FulfillmentTypeShipment,
		State: domain.FulfillmentStateProposed,
		Shipment: &domain.ShipmentDetails{
			Recipient:    recipient,
			Carrier:      defaultCarrier,
			ShippingType: defaultShippingType,
		},
	}}

	return req, nil
}

// stamp starts a request bound to the snapshot's version, with a key minted
// for this request body alone.
func (b *Builder) stamp(snapshot domain.Order) (domain.MutationRequest, error) {
	key, err := b.keys.NewKey()
	if err != nil {
		return domain.MutationRequest{}, fmt.Errorf("keys.NewKey: %w", err)
	}

	return domain.MutationRequest{
		TargetOrderID:   snapshot.ID,
		ExpectedVersion: snapshot.Version,
		LocationID:      b.locationID,
		IdempotencyKey:  key,
	}, nil
}
