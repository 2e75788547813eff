package domain

import "errors"

// Every error the ledger can report maps into exactly one of these kinds.
// Callers branch with errors.Is; wrapping adds call-site context only.
var (
	// ErrNotFound means the order id is unknown to the ledger.
	ErrNotFound = errors.New("order not found")

	// ErrVersionConflict means the expected version was stale; the write was
	// rejected without side effect. Recoverable only by restarting the whole
	// read-modify-write cycle from a fresh fetch.
	ErrVersionConflict = errors.New("stale order version")

	// ErrValidation means malformed or semantically invalid input; never retried.
	ErrValidation = errors.New("invalid input")

	// ErrTransient means a connectivity or timeout failure; safe to retry with
	// the identical request and idempotency key.
	ErrTransient = errors.New("transient network failure")

	// ErrAuth means a credential or authorization failure; never retried and
	// never downgraded to another kind.
	ErrAuth = errors.New("authorization failed")
)
