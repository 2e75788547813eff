package domain

import "time"

// Order is a transient, non-authoritative snapshot of the ledger's record.
// The ledger owns identity, version and totals; this core never mutates an
// Order locally, it only proposes patches and adopts the returned snapshot.
type Order struct {
	ID         string
	Version    int64
	LocationID string
	State      string

	// LineItems preserves the ledger's own sequence on read.
	LineItems    []LineItem
	Fulfillments []Fulfillment

	// Total is computed by the ledger from line items and charges; read-only.
	Total Money

	CreatedAt time.Time
	UpdatedAt time.Time
}

type LineItem struct {
	// UID is assigned by the ledger when the item is first added and is the
	// stable identity for later quantity changes or removal.
	UID             string
	CatalogObjectID string
	Name            string

	// Quantity 0 retains the uid slot; removal is a field-path clear.
	Quantity int64

	BasePrice Money
	Total     Money
}

// FindLineItem looks an item up by its ledger-assigned uid.
func (o Order) FindLineItem(uid string) (LineItem, bool) {
	for _, item := range o.LineItems {
		if item.UID == uid {
			return item, true
		}
	}
	return LineItem{}, false
}

type Location struct {
	ID   string
	Name string
}
