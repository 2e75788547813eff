package domain

// PaymentRequest asks the payment processor to capture an amount against an
// order. The amount is always taken from a freshly fetched snapshot and is
// never zero; zero totals settle through the ledger's zero path instead.
type PaymentRequest struct {
	SourceID       string
	OrderID        string
	Amount         Money
	IdempotencyKey string
}

// Receipt is the result of a settlement, either a captured payment or a
// zero-amount settle (in which case PaymentID is empty).
type Receipt struct {
	PaymentID  string
	OrderID    string
	Amount     Money
	ReceiptURL string
}
