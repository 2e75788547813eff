package domain

import "fmt"

// MutationRequest is one proposed sparse update against a single order
// snapshot. The idempotency key belongs to this request instance: resubmitting
// the identical request reuses the key, rebuilding the request after a refetch
// requires minting a fresh one.
type MutationRequest struct {
	TargetOrderID   string
	ExpectedVersion int64
	LocationID      string

	// LineItems carries only the entries being written: an existing uid with
	// its new quantity, or a new item without a uid yet.
	LineItems []LineItemChange

	// Fulfillments, when set, replaces the order's fulfillments wholesale.
	Fulfillments []Fulfillment

	// FieldsToClear removes fields instead of overwriting them, using the
	// collection[identifier] path syntax.
	FieldsToClear []string

	IdempotencyKey string
}

// LineItemChange addresses an existing line item by UID, or proposes a new
// one by CatalogObjectID when UID is empty.
type LineItemChange struct {
	UID             string
	CatalogObjectID string
	Quantity        int64
}

// LineItemsPath clears the whole line items collection.
const LineItemsPath = "line_items"

// LineItemPath addresses one element of the line items collection.
func LineItemPath(uid string) string {
	return fmt.Sprintf("line_items[%s]", uid)
}
