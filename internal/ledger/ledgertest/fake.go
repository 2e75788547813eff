// Package ledgertest provides an in-memory stand-in for the external order
// ledger. It enforces the same contract the real service does: a strictly
// incrementing version checked on every patch, at-most-once application of a
// given (idempotency key, body) pair, and ledger-computed totals.
package ledgertest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartledger/internal/domain"
	"github.com/nikolayk812/cartledger/internal/port"
	"golang.org/x/text/currency"
)

type Ledger struct {
	mu sync.Mutex

	orders    map[string]domain.Order
	prices    map[string]domain.Money
	locations []domain.Location

	applied map[string]appliedMutation

	updateKeys        []string
	transientFailures int
	beforeUpdate      func()
}

type appliedMutation struct {
	body     string
	snapshot domain.Order
}

var (
	_ port.OrderLedger       = (*Ledger)(nil)
	_ port.LocationDirectory = (*Ledger)(nil)
)

func New() *Ledger {
	return &Ledger{
		orders:  map[string]domain.Order{},
		prices:  map[string]domain.Money{},
		applied: map[string]appliedMutation{},
		locations: []domain.Location{
			{ID: uuid.NewString(), Name: "Test Location"},
		},
	}
}

// CreateOrder opens an empty order at version 1, the way the storefront's
// order-creation flow would.
func (l *Ledger) CreateOrder(locationID string) domain.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	o := domain.Order{
		ID:         uuid.NewString(),
		Version:    1,
		LocationID: locationID,
		State:      "OPEN",
		Total:      domain.Money{Currency: currency.USD},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	l.orders[o.ID] = o
	return o
}

// SetPrice registers the unit price the ledger uses when a line item
// referencing this catalog object is added.
func (l *Ledger) SetPrice(catalogObjectID string, price domain.Money) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prices[catalogObjectID] = price
}

// FailUpdates makes the next n UpdateOrder calls fail as transient network
// errors before reaching the ledger.
func (l *Ledger) FailUpdates(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transientFailures = n
}

// OnBeforeUpdate runs fn at the start of every UpdateOrder call, emulating a
// concurrent writer squeezing in between a fetch and a patch.
func (l *Ledger) OnBeforeUpdate(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.beforeUpdate = fn
}

// BumpVersion commits a no-op mutation as if another writer got there first.
func (l *Ledger) BumpVersion(orderID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if o, ok := l.orders[orderID]; ok {
		o.Version++
		o.UpdatedAt = time.Now().UTC()
		l.orders[orderID] = o
	}
}

// UpdateKeys reports the idempotency key of every UpdateOrder attempt seen,
// including ones that failed in transit.
func (l *Ledger) UpdateKeys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.updateKeys)
}

func (l *Ledger) GetOrder(_ context.Context, orderID string) (domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
	}

	return cloneOrder(o), nil
}

func (l *Ledger) UpdateOrder(_ context.Context, req domain.MutationRequest) (domain.Order, error) {
	var zero domain.Order

	l.mu.Lock()
	fn := l.beforeUpdate
	l.mu.Unlock()
	if fn != nil {
		fn()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.updateKeys = append(l.updateKeys, req.IdempotencyKey)

	if l.transientFailures > 0 {
		l.transientFailures--
		return zero, fmt.Errorf("connection reset: %w", domain.ErrTransient)
	}

	if req.IdempotencyKey == "" {
		return zero, fmt.Errorf("idempotency key is required: %w", domain.ErrValidation)
	}

	body := mutationBody(req)
	if prev, ok := l.applied[req.IdempotencyKey]; ok {
		if prev.body != body {
			return zero, fmt.Errorf("idempotency key reused with a different body: %w", domain.ErrValidation)
		}
		// Duplicate submission of an applied mutation: same snapshot, no new effect.
		return cloneOrder(prev.snapshot), nil
	}

	o, ok := l.orders[req.TargetOrderID]
	if !ok {
		return zero, fmt.Errorf("order[%s]: %w", req.TargetOrderID, domain.ErrNotFound)
	}

	if req.LocationID == "" {
		return zero, fmt.Errorf("location id is required: %w", domain.ErrValidation)
	}

	if req.ExpectedVersion != o.Version {
		return zero, fmt.Errorf("expected version %d, current %d: %w",
			req.ExpectedVersion, o.Version, domain.ErrVersionConflict)
	}

	o = cloneOrder(o)

	for _, change := range req.LineItems {
		if change.UID == "" {
			o.LineItems = append(o.LineItems, domain.LineItem{
				UID:             uuid.NewString(),
				CatalogObjectID: change.CatalogObjectID,
				Quantity:        change.Quantity,
				BasePrice:       l.priceOf(change.CatalogObjectID),
			})
			continue
		}

		updated := false
		for i := range o.LineItems {
			if o.LineItems[i].UID == change.UID {
				o.LineItems[i].Quantity = change.Quantity
				updated = true
				break
			}
		}
		if !updated {
			return zero, fmt.Errorf("line item uid[%s] not found: %w", change.UID, domain.ErrValidation)
		}
	}

	if req.Fulfillments != nil {
		fulfillments := make([]domain.Fulfillment, len(req.Fulfillments))
		copy(fulfillments, req.Fulfillments)
		for i := range fulfillments {
			if fulfillments[i].UID == "" {
				fulfillments[i].UID = uuid.NewString()
			}
		}
		o.Fulfillments = fulfillments
	}

	for _, path := range req.FieldsToClear {
		if err := clearField(&o, path); err != nil {
			return zero, err
		}
	}

	recomputeTotal(&o)
	o.Version++
	o.UpdatedAt = time.Now().UTC()

	l.orders[o.ID] = cloneOrder(o)
	l.applied[req.IdempotencyKey] = appliedMutation{body: body, snapshot: cloneOrder(o)}

	return o, nil
}

func (l *Ledger) PayOrderZero(_ context.Context, orderID, idempotencyKey string) (domain.Receipt, error) {
	var zero domain.Receipt

	l.mu.Lock()
	defer l.mu.Unlock()

	if idempotencyKey == "" {
		return zero, fmt.Errorf("idempotency key is required: %w", domain.ErrValidation)
	}

	o, ok := l.orders[orderID]
	if !ok {
		return zero, fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
	}

	if !o.Total.IsZero() {
		return zero, fmt.Errorf("total %d is not zero: %w", o.Total.Amount, domain.ErrValidation)
	}

	o.State = "COMPLETED"
	o.Version++
	o.UpdatedAt = time.Now().UTC()
	l.orders[orderID] = o

	return domain.Receipt{OrderID: o.ID, Amount: o.Total}, nil
}

func (l *Ledger) ListLocations(_ context.Context) ([]domain.Location, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.locations), nil
}

func (l *Ledger) priceOf(catalogObjectID string) domain.Money {
	if price, ok := l.prices[catalogObjectID]; ok {
		return price
	}
	return domain.Money{Currency: currency.USD}
}

func clearField(o *domain.Order, path string) error {
	switch {
	case path == domain.LineItemsPath:
		o.LineItems = nil

	case strings.HasPrefix(path, "line_items[") && strings.HasSuffix(path, "]"):
		uid := path[len("line_items[") : len(path)-1]
		before := len(o.LineItems)
		o.LineItems = slices.DeleteFunc(o.LineItems, func(item domain.LineItem) bool {
			return item.UID == uid
		})
		if len(o.LineItems) == before {
			return fmt.Errorf("field path %q: unknown uid: %w", path, domain.ErrValidation)
		}

	default:
		return fmt.Errorf("unsupported field path %q: %w", path, domain.ErrValidation)
	}

	return nil
}

func recomputeTotal(o *domain.Order) {
	var total int64
	for i := range o.LineItems {
		line := o.LineItems[i].Quantity * o.LineItems[i].BasePrice.Amount
		o.LineItems[i].Total = domain.Money{
			Amount:   line,
			Currency: o.LineItems[i].BasePrice.Currency,
		}
		total += line
	}

	o.Total = domain.Money{Amount: total, Currency: o.Total.Currency}
}

func cloneOrder(o domain.Order) domain.Order {
	o.LineItems = slices.Clone(o.LineItems)

	fulfillments := make([]domain.Fulfillment, len(o.Fulfillments))
	for i, f := range o.Fulfillments {
		if f.Shipment != nil {
			shipment := *f.Shipment
			f.Shipment = &shipment
		}
		fulfillments[i] = f
	}
	if o.Fulfillments == nil {
		fulfillments = nil
	}
	o.Fulfillments = fulfillments

	return o
}

// mutationBody is the request identity used for duplicate detection: the full
// body with the key blanked out.
func mutationBody(req domain.MutationRequest) string {
	req.IdempotencyKey = ""
	return fmt.Sprintf("%+v", req)
}
