package cart_test

import (
	"testing"

	"github.com/nikolayk812/cartledger/internal/cart"
	"github.com/nikolayk812/cartledger/internal/domain"
	"github.com/nikolayk812/cartledger/internal/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(t *testing.T) *cart.Builder {
	t.Helper()

	b, err := cart.NewBuilder("L1", idempotency.NewGenerator())
	require.NoError(t, err)

	return b
}

func snapshotWithItem(uid string) domain.Order {
	return domain.Order{
		ID:         "order-1",
		Version:    7,
		LocationID: "L1",
		LineItems:  []domain.LineItem{{UID: uid, CatalogObjectID: "SKU-A", Quantity: 1}},
	}
}

func TestBuilderValidation(t *testing.T) {
	b := newBuilder(t)
	snapshot := snapshotWithItem("u1")

	tests := []struct {
		name      string
		build     func() (domain.MutationRequest, error)
		wantError string
	}{
		{
			name:      "add: empty catalog object id",
			build:     func() (domain.MutationRequest, error) { return b.AddItem(snapshot, "", 1) },
			wantError: "catalog object id is empty",
		},
		{
			name:      "add: zero quantity",
			build:     func() (domain.MutationRequest, error) { return b.AddItem(snapshot, "SKU-B", 0) },
			wantError: "add quantity must be at least 1",
		},
		{
			name:      "set quantity: negative",
			build:     func() (domain.MutationRequest, error) { return b.SetItemQuantity(snapshot, "u1", -1) },
			wantError: "quantity must not be negative",
		},
		{
			name:      "set quantity: unknown uid",
			build:     func() (domain.MutationRequest, error) { return b.SetItemQuantity(snapshot, "u9", 2) },
			wantError: "line item uid[u9] not in order",
		},
		{
			name:      "remove: unknown uid",
			build:     func() (domain.MutationRequest, error) { return b.RemoveItem(snapshot, "u9") },
			wantError: "line item uid[u9] not in order",
		},
		{
			name: "shipping: recipient without display name",
			build: func() (domain.MutationRequest, error) {
				return b.SetShippingFulfillment(snapshot, domain.Recipient{})
			},
			wantError: "recipient display name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestBuilderStampsSnapshotVersion(t *testing.T) {
	b := newBuilder(t)
	snapshot := snapshotWithItem("u1")

	req, err := b.AddItem(snapshot, "SKU-B", 2)
	require.NoError(t, err)

	assert.Equal(t, snapshot.ID, req.TargetOrderID)
	assert.Equal(t, snapshot.Version, req.ExpectedVersion)
	assert.Equal(t, "L1", req.LocationID)
	require.Len(t, req.LineItems, 1)
	assert.Equal(t, "SKU-B", req.LineItems[0].CatalogObjectID)
	assert.Equal(t, int64(2), req.LineItems[0].Quantity)
	assert.Empty(t, req.FieldsToClear)
}

func TestBuilderFreshKeyPerRequest(t *testing.T) {
	b := newBuilder(t)
	snapshot := snapshotWithItem("u1")

	first, err := b.AddItem(snapshot, "SKU-B", 1)
	require.NoError(t, err)

	// Same intent, same snapshot: still a new request body, so a new key.
	second, err := b.AddItem(snapshot, "SKU-B", 1)
	require.NoError(t, err)

	assert.NotEmpty(t, first.IdempotencyKey)
	assert.NotEqual(t, first.IdempotencyKey, second.IdempotencyKey)
}

func TestBuilderQuantityZeroKeepsUID(t *testing.T) {
	b := newBuilder(t)

	req, err := b.SetItemQuantity(snapshotWithItem("u1"), "u1", 0)
	require.NoError(t, err)

	// Quantity zero is a quantity change, not a clear: the uid slot stays.
	require.Len(t, req.LineItems, 1)
	assert.Equal(t, "u1", req.LineItems[0].UID)
	assert.Equal(t, int64(0), req.LineItems[0].Quantity)
	assert.Empty(t, req.FieldsToClear)
}

func TestBuilderClearPaths(t *testing.T) {
	b := newBuilder(t)
	snapshot := snapshotWithItem("u1")

	removed, err := b.RemoveItem(snapshot, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"line_items[u1]"}, removed.FieldsToClear)
	assert.Empty(t, removed.LineItems)

	cleared, err := b.ClearCart(snapshot)
	require.NoError(t, err)
	assert.Equal(t, []string{"line_items"}, cleared.FieldsToClear)
}

func TestBuilderShippingDefaults(t *testing.T) {
	b := newBuilder(t)

	recipient := domain.Recipient{
		DisplayName: "Jamie Doe",
		Address: domain.Address{
			Line1:      "1 Main St",
			Locality:   "Harbor City",
			PostalCode: "90710",
		},
	}

	req, err := b.SetShippingFulfillment(snapshotWithItem("u1"), recipient)
	require.NoError(t, err)

	require.Len(t, req.Fulfillments, 1)
	f := req.Fulfillments[0]
	assert.Equal(t, domain.FulfillmentTypeShipment, f.Type)
	assert.Equal(t, domain.FulfillmentStateProposed, f.State)
	require.NotNil(t, f.Shipment)
	assert.Equal(t, recipient, f.Shipment.Recipient)
	assert.Equal(t, "USPS", f.Shipment.Carrier)
	assert.Equal(t, "First Class", f.Shipment.ShippingType)
}
